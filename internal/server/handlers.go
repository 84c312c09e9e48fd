package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"drai-go/internal/dashboard"
	"drai-go/internal/export"
	"drai-go/internal/model"
	"drai-go/internal/pipeline"
	"drai-go/internal/source"
)

// GET /api/records
func (s *Server) listRecords(c *gin.Context) {
	c.JSON(http.StatusOK, s.store.All())
}

// GET /api/records/:week
func (s *Server) getRecord(c *gin.Context) {
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid week"})
		return
	}
	rec, ok := s.store.Week(week)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "week not loaded"})
		return
	}
	c.JSON(http.StatusOK, rec)
}

// DELETE /api/records
func (s *Server) resetRecords(c *gin.Context) {
	s.store.Reset()
	c.Status(http.StatusNoContent)
}

type areaStatus struct {
	Area   string `json:"area"`
	Name   string `json:"nombre"`
	Active int    `json:"activas"`
	Total  int    `json:"subactividades"`
}

// GET /api/current
func (s *Server) current(c *gin.Context) {
	cur, err := s.store.Current()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no records loaded"})
		return
	}

	var prev *model.MetricsRecord
	if p, ok := s.store.Previous(); ok {
		prev = &p
	}

	areas := make([]areaStatus, 0, model.AreaCount)
	for i, a := range cur.Areas() {
		areas = append(areas, areaStatus{
			Area:   "area" + strconv.Itoa(i+1),
			Name:   a.Name,
			Active: dashboard.ActiveSubactivities(*a),
			Total:  len(a.Subactivities),
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"current":  cur,
		"previous": prev,
		"cards":    dashboard.Quick(cur, prev),
		"areas":    areas,
	})
}

// GET /api/trend
func (s *Server) trend(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.Trend(s.store.All()))
}

// GET /api/areas
func (s *Server) areas(c *gin.Context) {
	cur, err := s.store.Current()
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no records loaded"})
		return
	}
	c.JSON(http.StatusOK, dashboard.AreaBars(cur))
}

// GET /api/annual
func (s *Server) annual(c *gin.Context) {
	c.JSON(http.StatusOK, dashboard.Accumulate(s.store.All()))
}

// GET /api/diff?a=N&b=M
func (s *Server) diff(c *gin.Context) {
	a, errA := strconv.Atoi(c.Query("a"))
	b, errB := strconv.Atoi(c.Query("b"))
	if errA != nil || errB != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a and b must be week numbers"})
		return
	}
	ra, okA := s.store.Week(a)
	rb, okB := s.store.Week(b)
	if !okA || !okB {
		c.JSON(http.StatusNotFound, gin.H{"error": "week not loaded"})
		return
	}
	out, err := dashboard.Diff(ra, rb)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"a": a, "b": b, "diff": out})
}

// POST /api/upload
func (s *Server) upload(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid multipart form"})
		return
	}
	files := form.File["file"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded"})
		return
	}

	inputs := make([]source.Input, 0, len(files))
	for _, fh := range files {
		in := source.Input{Name: fh.Filename, Path: fh.Filename}
		f, err := fh.Open()
		if err != nil {
			in.Err = err
			inputs = append(inputs, in)
			continue
		}
		data, err := source.ReadCapped(f, s.maxBytes)
		f.Close()
		if err != nil {
			in.Err = err
		}
		in.Data = data
		inputs = append(inputs, in)
	}

	res, err := s.ingest(c.Request.Context(), inputs)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, res)
}

// GET /api/export/:format
func (s *Server) exportRecords(c *gin.Context) {
	format := c.Param("format")
	records := s.store.All()
	if len(records) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no records loaded"})
		return
	}

	var buf bytes.Buffer
	now := s.now()
	if err := export.Write(&buf, format, records, now); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.Filename(format, now)+`"`)
	c.Data(http.StatusOK, export.ContentType(format), buf.Bytes())
}

// ingest runs one batch and archives what it accepted.
func (s *Server) ingest(ctx context.Context, inputs []source.Input) (pipeline.Result, error) {
	res, err := pipeline.Run(ctx, s.pipe, inputs, s.store)
	if err != nil {
		return res, err
	}
	if s.archive != nil && s.archive.Enabled() && len(res.Records) > 0 {
		if _, err := s.archive.Publish(ctx, res.Records); err != nil {
			s.log.Error("archive failed", zap.String("batch", res.BatchID), zap.Error(err))
		}
	}
	return res, nil
}
