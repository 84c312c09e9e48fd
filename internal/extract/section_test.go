package extract

import (
	"testing"
)

func TestLocate(t *testing.T) {
	doc := "Intro. Logístico - uno - dos Académico - tres Infraestructura - cuatro"

	tests := []struct {
		name   string
		start  string
		ends   []string
		want   string
		wantOK bool
	}{
		{"bounded", "Logístico", []string{"Académico"}, "Logístico - uno - dos ", true},
		{"nearest end wins", "Logístico", []string{"Infraestructura", "Académico"}, "Logístico - uno - dos ", true},
		{"case insensitive", "logístico", []string{"ACADÉMICO"}, "Logístico - uno - dos ", true},
		{"no end runs to the end", "Infraestructura", nil, "Infraestructura - cuatro", true},
		{"end not found runs to the end", "Académico", []string{"CENDOI"}, "Académico - tres Infraestructura - cuatro", true},
		{"end before start is ignored", "Académico", []string{"Intro"}, "Académico - tres Infraestructura - cuatro", true},
		{"missing start", "Producción", []string{"Académico"}, "", false},
		{"empty start", "", nil, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, ok := Locate(doc, tt.start, tt.ends...)
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if f.Text != tt.want {
				t.Fatalf("text = %q, want %q", f.Text, tt.want)
			}
			if ok && doc[f.Start:f.End] != f.Text {
				t.Fatalf("span [%d:%d] does not match text", f.Start, f.End)
			}
		})
	}
}

func TestSectionSpecTriesAliases(t *testing.T) {
	spec := SectionSpec{
		Start: []string{"Infraestructura", "Inf raestructura"},
		End:   []string{"Videoconferencia"},
	}
	f, ok := spec.Locate("<h3>Inf raestructura</h3><ul><li>x</li></ul><h3>Videoconferencia</h3>")
	if !ok {
		t.Fatal("alias not tried")
	}
	if f.Text != "Inf raestructura</h3><ul><li>x</li></ul><h3>" {
		t.Fatalf("text = %q", f.Text)
	}

	if _, ok := (SectionSpec{}).Locate("anything"); ok {
		t.Fatal("empty spec must not match")
	}
}

func TestCountItems(t *testing.T) {
	tests := []struct {
		name string
		frag string
		ok   bool
		want int
	}{
		{"structural", "Logístico</h3><ul><li>a</li><li>b</li><li>c</li><li>d</li><li>e</li></ul><h3>", true, 5},
		{"structural ignores dashes", "<ul><li>a - b</li></ul>", true, 1},
		{"dash bullets", "Logístico\n- uno\n- dos\n- tres\n", true, 3},
		{"dash bullets in paragraphs", "<p>- uno</p><p>- dos</p>", true, 2},
		{"not located", "<ul><li>a</li></ul>", false, 0},
		{"empty", "", true, 0},
		{"nothing to count", "Logístico sin novedad", true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CountItems(Fragment{Text: tt.frag}, tt.ok)
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}
}
