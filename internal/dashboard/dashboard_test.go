package dashboard

import (
	"encoding/json"
	"strings"
	"testing"

	"drai-go/internal/model"
)

func sample(week int) model.MetricsRecord {
	var r model.MetricsRecord
	r.Week = week
	r.ReportDate = "semana de prueba"
	r.Area1.Name = "Apoyo Logístico y Videoconferencia"
	r.Area1.Subactivities.Set("logistico", model.Numeric("Logístico", 5))
	r.Area1.Subactivities.Set("academico", model.Numeric("Académico", 2))
	r.Area1.Subactivities.Set("infraestructura", model.Numeric("Infraestructura", 0))
	r.Area2.Name = "Gestión de Sistemas de Información"
	r.Area2.Subactivities.Set("jupiter", model.Flag("Júpiter", true))
	r.Area2.Subactivities.Set("sigac", model.Flag("SIGAC+", false))
	r.Area4.Subactivities.Set("soporteEmailFacultad", model.Numeric("Soporte email-Facultad", 17))
	r.Videoconferencias = 60
	r.Streamings = 4
	r.UsuariosCENDOI = 455
	r.EquiposConfigurados = 9
	r.ProyectosActivos = 1
	r.ReunionesUGP = 2
	r.TalentoTechMatriculas = 850
	r.DisenosRealizados = 6
	r.ComprasGestionadas = 3
	r.Contrataciones = 4
	return r
}

func TestTrend(t *testing.T) {
	rows := Trend([]model.MetricsRecord{sample(3), sample(4)})
	if len(rows) != 2 {
		t.Fatalf("got %d rows", len(rows))
	}
	r := rows[0]
	if r.Week != "S3" || rows[1].Week != "S4" {
		t.Fatalf("labels %q %q", r.Week, rows[1].Week)
	}
	if r.Logistico != 5 || r.Academico != 2 || r.Infraestructura != 0 {
		t.Fatalf("area 1 series %+v", r)
	}
	// 455 / 10 rounds half up
	if r.Usuarios != 46 {
		t.Fatalf("usuarios = %d, want 46", r.Usuarios)
	}
	if r.Soporte != 9 || r.Proyectos != 1 || r.Reuniones != 2 || r.Disenos != 6 || r.Compras != 3 || r.Contrataciones != 4 {
		t.Fatalf("row %+v", r)
	}
	if len(Trend(nil)) != 0 {
		t.Fatal("no records, no rows")
	}
}

func TestAreaBars(t *testing.T) {
	bars := AreaBars(sample(1))
	if len(bars) != model.AreaCount {
		t.Fatalf("got %d bars", len(bars))
	}
	want := map[string]int{
		"Videoconf.": 60, "Sistemas": 1, "Soporte": 9, "Regiones": 17, "CENDOI": 46,
		"UGP": 2, "Ingeni@": 850, "Producción": 6, "Admin.": 7,
	}
	for _, b := range bars {
		if want[b.Area] != b.Value {
			t.Errorf("%s = %d, want %d", b.Area, b.Value, want[b.Area])
		}
	}
}

func TestQuick(t *testing.T) {
	cur := sample(2)
	cards := Quick(cur, nil)
	if len(cards) != 8 {
		t.Fatalf("got %d cards", len(cards))
	}
	for _, c := range cards {
		if c.Delta != nil {
			t.Fatalf("%s has a delta without a previous week", c.Key)
		}
	}

	prev := sample(1)
	prev.Videoconferencias = 50
	cards = Quick(cur, &prev)
	if cards[0].Key != "videoconferencias" || cards[0].Delta == nil || *cards[0].Delta != 10 {
		t.Fatalf("first card %+v", cards[0])
	}
	if *cards[1].Delta != 0 {
		t.Fatalf("streamings delta %d", *cards[1].Delta)
	}
}

func TestAccumulate(t *testing.T) {
	a, b, c := sample(1), sample(2), sample(3)
	b.Videoconferencias = 30
	c.Videoconferencias = 11

	got := Accumulate([]model.MetricsRecord{a, b, c})
	if got.Weeks != 3 {
		t.Fatalf("weeks %d", got.Weeks)
	}
	row := got.Rows[0]
	if row.Key != "videoconferencias" || row.Total != 101 || row.Average != 34 {
		t.Fatalf("row %+v", row)
	}

	empty := Accumulate(nil)
	if empty.Weeks != 0 || empty.Rows[0].Total != 0 || empty.Rows[0].Average != 0 {
		t.Fatalf("empty %+v", empty)
	}
}

func TestActiveSubactivities(t *testing.T) {
	r := sample(1)
	if got := ActiveSubactivities(r.Area1); got != 2 {
		t.Fatalf("area1 active = %d, want 2", got)
	}
	if got := ActiveSubactivities(r.Area2); got != 1 {
		t.Fatalf("area2 active = %d, want 1", got)
	}
	if got := ActiveSubactivities(model.AreaRecord{}); got != 0 {
		t.Fatalf("empty area active = %d", got)
	}
}

func TestDiff(t *testing.T) {
	a, b := sample(1), sample(2)
	b.Area1.Subactivities.Set("logistico", model.Numeric("Logístico", 8))
	b.Area2.Subactivities.Set("sigac", model.Flag("SIGAC+", true))

	out, err := Diff(a, b)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{
		"--- semana-1", "+++ semana-2",
		"-  Logístico: 5", "+  Logístico: 8",
		"-  SIGAC+: no", "+  SIGAC+: sí",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("diff lacks %q:\n%s", want, out)
		}
	}

	same, err := Diff(a, a)
	if err != nil || same != "" {
		t.Fatalf("identical records gave %q, %v", same, err)
	}
}

func TestSummary(t *testing.T) {
	s := Summary(sample(4))
	for _, want := range []string{"Semana 4 (semana de prueba)", "1. Apoyo Logístico y Videoconferencia", "  Júpiter: sí"} {
		if !strings.Contains(s, want) {
			t.Errorf("summary lacks %q", want)
		}
	}
}

func TestTrendJSONKeys(t *testing.T) {
	b, err := json.Marshal(Trend([]model.MetricsRecord{sample(1)}))
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{`"semana":"S1"`, `"diseños":6`, `"usuarios":46`} {
		if !strings.Contains(string(b), key) {
			t.Errorf("trend json %s lacks %s", b, key)
		}
	}
}
