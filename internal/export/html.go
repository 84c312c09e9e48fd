package export

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"drai-go/internal/dashboard"
	"drai-go/internal/model"
)

var spanish = message.NewPrinter(language.Spanish)

// Number formats n with Spanish digit grouping.
func Number(n int) string { return spanish.Sprintf("%d", n) }

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"num": Number,
}).Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Reporte DRAI</title>
<style>
body { font-family: Arial, sans-serif; margin: 20px; background-color: #f5f5f5; }
h1 { color: #1a5276; text-align: center; border-bottom: 3px solid #1a5276; padding-bottom: 10px; }
h2 { color: #2e7d32; margin-top: 30px; border-left: 4px solid #2e7d32; padding-left: 10px; }
table { width: 100%; border-collapse: collapse; margin: 20px 0; background-color: white; }
th { background-color: #1a5276; color: white; padding: 12px; text-align: left; }
td { padding: 10px 12px; border-bottom: 1px solid #ddd; }
.semana { font-weight: bold; color: #1a5276; }
.cards { display: flex; flex-wrap: wrap; gap: 12px; }
.card { background: white; padding: 12px 16px; border-radius: 5px; min-width: 160px; }
.card b { display: block; font-size: 1.6em; color: #1a5276; }
.section { background-color: #f9f9f9; margin: 20px 0; padding: 15px; border-radius: 5px; }
</style>
</head>
<body>
<h1>REPORTE DRAI - INFORMES SEMANALES</h1>
<p style="text-align: center; color: #666;">Generado el: {{.Generated}}</p>

<h2>Semana actual: {{.Current.Week}} ({{.Current.ReportDate}})</h2>
<div class="cards">
{{- range .Cards}}
<div class="card"><b>{{num .Value}}</b>{{.Label}}</div>
{{- end}}
</div>

<h2>Resumen General</h2>
<table>
<thead><tr>{{range .Header}}<th>{{.}}</th>{{end}}</tr></thead>
<tbody>
{{- range .Rows}}
<tr>{{range $i, $c := .}}{{if eq $i 0}}<td class="semana">{{$c}}</td>{{else}}<td>{{$c}}</td>{{end}}{{end}}</tr>
{{- end}}
</tbody>
</table>
{{range .Records}}
<div class="section">
<h2>Semana {{.Week}} - {{.ReportDate}}</h2>
<h3>Área 1: {{.Area1.Name}}</h3>
<ul>
<li>Actividades Logístico: {{num (.Area1.Value "logistico")}}</li>
<li>Actividades Académico: {{num (.Area1.Value "academico")}}</li>
<li>Actividades Infraestructura: {{num (.Area1.Value "infraestructura")}}</li>
<li>Horas Videoconferencia: {{num .Videoconferencias}}</li>
<li>Streamings: {{num .Streamings}}</li>
<li>Grabaciones: {{num .Grabaciones}}</li>
</ul>
</div>
{{- end}}
</body>
</html>
`))

type reportView struct {
	Generated string
	Current   model.MetricsRecord
	Cards     []dashboard.Card
	Header    []string
	Rows      [][]string
	Records   []model.MetricsRecord
}

// HTML writes a standalone styled report: headline cards of the latest
// week, the summary table and the area 1 detail of every week.
func HTML(w io.Writer, records []model.MetricsRecord, now time.Time) error {
	if len(records) == 0 {
		return ErrNoRecords
	}
	current := records[len(records)-1]
	var previous *model.MetricsRecord
	if len(records) > 1 {
		previous = &records[len(records)-2]
	}

	view := reportView{
		Generated: now.Format("02/01/2006 15:04"),
		Current:   current,
		Cards:     dashboard.Quick(current, previous),
		Header:    summaryHeader,
		Records:   records,
	}
	for _, r := range records {
		row := summaryRow(r)
		cells := make([]string, len(row))
		for i, v := range row {
			if n, ok := v.(int); ok && i > 0 {
				cells[i] = Number(n)
				continue
			}
			cells[i] = fmt.Sprint(v)
		}
		view.Rows = append(view.Rows, cells)
	}

	if err := reportTmpl.Execute(w, view); err != nil {
		return eris.Wrap(err, "render html report")
	}
	return nil
}
