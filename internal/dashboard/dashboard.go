// Package dashboard projects stored records into the series, bars and
// cards the dashboard draws. Nothing here re-reads documents; every value
// comes from a MetricsRecord.
package dashboard

import (
	"fmt"
	"math"

	"drai-go/internal/model"
)

// TrendRow is one week of the multi-week line charts.
type TrendRow struct {
	Week              string `json:"semana"`
	Logistico         int    `json:"logistico"`
	Academico         int    `json:"academico"`
	Infraestructura   int    `json:"infraestructura"`
	Videoconferencias int    `json:"videoconferencias"`
	Usuarios          int    `json:"usuarios"` // CENDOI users / 10, for scale
	Soporte           int    `json:"soporte"`
	Proyectos         int    `json:"proyectos"`
	Reuniones         int    `json:"reuniones"`
	Disenos           int    `json:"diseños"`
	Compras           int    `json:"compras"`
	Contrataciones    int    `json:"contrataciones"`
}

// Trend returns one row per record, in the records' order.
func Trend(records []model.MetricsRecord) []TrendRow {
	rows := make([]TrendRow, 0, len(records))
	for _, r := range records {
		rows = append(rows, TrendRow{
			Week:              fmt.Sprintf("S%d", r.Week),
			Logistico:         r.Area1.Value("logistico"),
			Academico:         r.Area1.Value("academico"),
			Infraestructura:   r.Area1.Value("infraestructura"),
			Videoconferencias: r.Videoconferencias,
			Usuarios:          round(float64(r.UsuariosCENDOI) / 10),
			Soporte:           r.EquiposConfigurados,
			Proyectos:         r.ProyectosActivos,
			Reuniones:         r.ReunionesUGP,
			Disenos:           r.DisenosRealizados,
			Compras:           r.ComprasGestionadas,
			Contrataciones:    r.Contrataciones,
		})
	}
	return rows
}

// AreaBar is one bar of the per-area comparison chart.
type AreaBar struct {
	Area  string `json:"area"`
	Value int    `json:"valor"`
}

// AreaBars returns the nine headline bars of one week.
func AreaBars(r model.MetricsRecord) []AreaBar {
	return []AreaBar{
		{"Videoconf.", r.Videoconferencias},
		{"Sistemas", r.ProyectosActivos},
		{"Soporte", r.EquiposConfigurados},
		{"Regiones", r.Area4.Value("soporteEmailFacultad")},
		{"CENDOI", round(float64(r.UsuariosCENDOI) / 10)},
		{"UGP", r.ReunionesUGP},
		{"Ingeni@", r.TalentoTechMatriculas},
		{"Producción", r.DisenosRealizados},
		{"Admin.", r.ComprasGestionadas + r.Contrataciones},
	}
}

// Card is one headline figure. Delta is set only when a previous week is
// known.
type Card struct {
	Key   string `json:"key"`
	Label string `json:"label"`
	Value int    `json:"valor"`
	Delta *int   `json:"delta,omitempty"`
}

type headline struct {
	key, label string
	get        func(model.MetricsRecord) int
}

var quickCards = []headline{
	{"videoconferencias", "Videoconferencias", func(r model.MetricsRecord) int { return r.Videoconferencias }},
	{"streamings", "Streamings", func(r model.MetricsRecord) int { return r.Streamings }},
	{"usuariosCENDOI", "Usuarios CENDOI", func(r model.MetricsRecord) int { return r.UsuariosCENDOI }},
	{"equiposConfigurados", "Equipos configurados", func(r model.MetricsRecord) int { return r.EquiposConfigurados }},
	{"talentoTechMatriculas", "Matrículas Talento Tech", func(r model.MetricsRecord) int { return r.TalentoTechMatriculas }},
	{"proyectosActivos", "Proyectos activos", func(r model.MetricsRecord) int { return r.ProyectosActivos }},
	{"comprasGestionadas", "Compras gestionadas", func(r model.MetricsRecord) int { return r.ComprasGestionadas }},
	{"contrataciones", "Contrataciones", func(r model.MetricsRecord) int { return r.Contrataciones }},
}

// Quick returns the eight summary cards of current. previous may be nil.
func Quick(current model.MetricsRecord, previous *model.MetricsRecord) []Card {
	cards := make([]Card, 0, len(quickCards))
	for _, h := range quickCards {
		c := Card{Key: h.key, Label: h.label, Value: h.get(current)}
		if previous != nil {
			d := c.Value - h.get(*previous)
			c.Delta = &d
		}
		cards = append(cards, c)
	}
	return cards
}

// AnnualRow is the accumulated view of one headline figure.
type AnnualRow struct {
	Key     string `json:"key"`
	Label   string `json:"label"`
	Total   int    `json:"total"`
	Average int    `json:"promedio"`
}

// Annual is the accumulated view over every loaded week.
type Annual struct {
	Weeks int         `json:"semanas"`
	Rows  []AnnualRow `json:"filas"`
}

var annualRows = append(append([]headline{}, quickCards...),
	headline{"reunionesUGP", "Reuniones UGP", func(r model.MetricsRecord) int { return r.ReunionesUGP }},
	headline{"disenosRealizados", "Diseños realizados", func(r model.MetricsRecord) int { return r.DisenosRealizados }},
	headline{"pqrsAtendidas", "PQRS atendidas", func(r model.MetricsRecord) int { return r.PQRSAtendidas }},
)

// Accumulate sums every headline figure over records and averages it per
// week, rounded. No records gives zero totals and averages.
func Accumulate(records []model.MetricsRecord) Annual {
	a := Annual{Weeks: len(records), Rows: make([]AnnualRow, 0, len(annualRows))}
	for _, h := range annualRows {
		row := AnnualRow{Key: h.key, Label: h.label}
		for _, r := range records {
			row.Total += h.get(r)
		}
		if len(records) > 0 {
			row.Average = round(float64(row.Total) / float64(len(records)))
		}
		a.Rows = append(a.Rows, row)
	}
	return a
}

// ActiveSubactivities counts the subactivities of area that show activity:
// flags that are set and numbers above zero.
func ActiveSubactivities(area model.AreaRecord) int {
	n := 0
	for _, p := range area.Subactivities {
		if p.Value.Engaged() {
			n++
		}
	}
	return n
}

// round halves away from zero; every input here is non-negative.
func round(x float64) int { return int(math.Round(x)) }
