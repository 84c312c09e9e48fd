// Package server exposes the session store over HTTP: JSON views for the
// dashboard, report uploads, downloads in every export format and the
// Prometheus endpoint.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"drai-go/internal/pipeline"
	"drai-go/internal/storage"
	"drai-go/internal/store"
)

// Server is the HTTP front of one session.
type Server struct {
	router   *gin.Engine
	store    *store.Store
	pipe     pipeline.Options
	archive  *storage.Archive
	log      *zap.Logger
	exts     []string
	maxBytes int64
	now      func() time.Time
}

// Config carries what the server needs besides the store.
type Config struct {
	Pipeline   pipeline.Options
	Archive    *storage.Archive // nil: nothing is archived
	Extensions []string         // accepted upload extensions
	MaxBytes   int64            // per uploaded file
	Log        *zap.Logger
}

// New builds the server and its routes.
func New(st *store.Store, cfg Config) *Server {
	if cfg.Log == nil {
		cfg.Log = zap.NewNop()
	}
	if cfg.MaxBytes <= 0 {
		cfg.MaxBytes = 32 << 20
	}
	if cfg.Pipeline.Log == nil {
		cfg.Pipeline.Log = cfg.Log
	}

	s := &Server{
		router:   gin.New(),
		store:    st,
		pipe:     cfg.Pipeline,
		archive:  cfg.Archive,
		log:      cfg.Log,
		exts:     cfg.Extensions,
		maxBytes: cfg.MaxBytes,
		now:      time.Now,
	}
	s.router.Use(gin.Recovery(), s.requestLog())
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.Use(func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	})

	api := s.router.Group("/api")
	{
		api.GET("/records", s.listRecords)
		api.GET("/records/:week", s.getRecord)
		api.DELETE("/records", s.resetRecords)
		api.GET("/current", s.current)
		api.GET("/trend", s.trend)
		api.GET("/areas", s.areas)
		api.GET("/annual", s.annual)
		api.GET("/diff", s.diff)
		api.POST("/upload", s.upload)
		api.GET("/export/:format", s.exportRecords)
	}
	s.router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// Run serves on addr until ctx ends, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		)
	}
}
