package extract

import (
	"regexp"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestExtractNumberFallbackOrder(t *testing.T) {
	chain := []Pattern{
		MustPattern(`(?i)asistencia a\s*(\d+)\s*videoconferencias`, 0),
		MustPattern(`(?i)videoconferencias\s*:\s*(\d+)`, 0),
	}

	tests := []struct {
		name string
		text string
		want int
	}{
		{"first pattern", "Se da soporte y asistencia a 60 videoconferencias", 60},
		{"second pattern", "Videoconferencias: 14", 14},
		{"first wins over second", "asistencia a 3 videoconferencias. Videoconferencias: 14", 3},
		{"zero capture falls through", "asistencia a 0 videoconferencias. Videoconferencias: 9", 9},
		{"only zero", "asistencia a 0 videoconferencias", 0},
		{"nothing", "sin datos esta semana", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractNumber(chain, tt.text); got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
		})
	}

	if ExtractNumber(nil, "asistencia a 60 videoconferencias") != 0 {
		t.Fatal("empty chain must give 0")
	}
}

func TestExtractNumberGroups(t *testing.T) {
	row := `(\d{1,3})\s+(\d{1,3})\s+(\d{1,3})`
	text := "Préstamos\t12\t7\t3"
	for group, want := range map[int]int{1: 12, 2: 7, 3: 3} {
		if got := ExtractNumber([]Pattern{MustPattern(row, group)}, text); got != want {
			t.Errorf("group %d: got %d, want %d", group, got, want)
		}
	}

	if _, err := NewPattern(`(\d+)`, 2); err == nil {
		t.Fatal("expected error for a group the pattern lacks")
	}
	if _, err := NewPattern(`(\d+`, 1); err == nil {
		t.Fatal("expected error for an invalid expression")
	}
}

func TestExtractNumberInSections(t *testing.T) {
	p := MustPattern(`(?i)libros?[:\s]+(\d+)`, 1)
	p.Section = "cendoi"
	fallback := MustPattern(`(?i)total\s+(\d+)`, 1)

	sections := map[string]string{"cendoi": "Gestión Documental CENDOI libros: 40"}
	scope := func(name string) (string, bool) {
		s, ok := sections[name]
		return s, ok
	}

	text := "libros: 99 fuera de sección. total 5"
	if got := ExtractNumberIn([]Pattern{p, fallback}, text, scope); got != 40 {
		t.Fatalf("scoped pattern: got %d, want 40", got)
	}

	delete(sections, "cendoi")
	if got := ExtractNumberIn([]Pattern{p, fallback}, text, scope); got != 5 {
		t.Fatalf("missing section should fall through: got %d, want 5", got)
	}
}

func TestCountMatches(t *testing.T) {
	re := regexp.MustCompile(`[Ss]olicitud de [Cc]ompra`)
	text := "Solicitud de compra A. solicitud de Compra B. compra C"
	if got := CountMatches(re, text); got != 2 {
		t.Fatalf("got %d, want 2", got)
	}
	if CountMatches(nil, text) != 0 {
		t.Fatal("nil regexp must count 0")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name     string
		value    int
		min, max int
		want     int
		warned   bool
	}{
		{"inside", 450, 0, 1000, 450, false},
		{"lower bound", 100, 100, 2000, 100, false},
		{"upper bound", 2000, 100, 2000, 2000, false},
		{"above", 2026, 100, 2000, 0, true},
		{"below", 12, 100, 2000, 0, true},
		{"zero outside band is silent", 0, 100, 2000, 0, false},
		{"negative", -3, 0, 10, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.DebugLevel)
			got := Validate(tt.value, tt.min, tt.max, "talentoTechMatriculas", 7, zap.New(core))
			if got != tt.want {
				t.Fatalf("got %d, want %d", got, tt.want)
			}
			warned := logs.FilterLevelExact(zapcore.WarnLevel).Len() == 1
			if warned != tt.warned {
				t.Fatalf("warned = %v, want %v", warned, tt.warned)
			}
			if tt.warned {
				fields := logs.All()[0].ContextMap()
				if fields["metric"] != "talentoTechMatriculas" || fields["week"] != int64(7) || fields["value"] != int64(tt.value) {
					t.Fatalf("unexpected fields %v", fields)
				}
			}
		})
	}

	if Validate(5000, 0, 10, "x", 1, nil) != 0 {
		t.Fatal("nil logger must still validate")
	}
}
