// Package export writes the loaded weeks as CSV, a standalone HTML report
// or an XLSX workbook.
package export

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"drai-go/internal/model"
)

var (
	ErrNoRecords     = errors.New("export: no records to export")
	ErrUnknownFormat = errors.New("export: unknown format")
)

// Formats lists the supported format names.
var Formats = []string{"csv", "html", "xlsx"}

// Filename is the download name for a report written at now, e.g.
// Reporte_DRAI_2025-03-07.csv.
func Filename(format string, now time.Time) string {
	return fmt.Sprintf("Reporte_DRAI_%s.%s", now.Format("2006-01-02"), strings.ToLower(format))
}

// ContentType is the MIME type served for format.
func ContentType(format string) string {
	switch strings.ToLower(format) {
	case "csv":
		return "text/csv; charset=utf-8"
	case "html":
		return "text/html; charset=utf-8"
	case "xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/octet-stream"
}

// Write renders records in format to w. records must be in week order.
func Write(w io.Writer, format string, records []model.MetricsRecord, now time.Time) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	switch strings.ToLower(format) {
	case "csv":
		return CSV(w, records)
	case "html":
		return HTML(w, records, now)
	case "xlsx":
		return XLSX(w, records)
	}
	return eris.Wrapf(ErrUnknownFormat, "%q", format)
}

// summaryHeader and summaryRow define the per-week table shared by the CSV
// file, the HTML report and the workbook's first sheet.
var summaryHeader = []string{
	"Semana", "Fecha", "Horas Videoconferencia", "Streamings", "Grabaciones",
	"Usuarios CENDOI", "Proyectos Activos", "Actividades Sistemas", "Equipos Configurados",
}

func summaryRow(r model.MetricsRecord) []any {
	return []any{
		r.Week,
		r.ReportDate,
		r.Videoconferencias,
		r.Streamings,
		r.Grabaciones,
		r.UsuariosCENDOI,
		r.ProyectosActivos,
		systemsActivities(r),
		r.EquiposConfigurados,
	}
}

// systemsActivities counts the user stories completed and started in area 2.
func systemsActivities(r model.MetricsRecord) int {
	return r.Area2.Total("husCompletadas") + r.Area2.Total("husIniciadas")
}
