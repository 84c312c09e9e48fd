package dashboard

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/rotisserie/eris"

	"drai-go/internal/model"
)

// Summary renders a record as plain text, one value per line, in area and
// subactivity order. Diff compares two of these.
func Summary(r model.MetricsRecord) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Semana %d (%s)\n", r.Week, r.ReportDate)
	for i, a := range r.Areas() {
		fmt.Fprintf(&b, "%d. %s\n", i+1, a.Name)
		for _, p := range a.Subactivities {
			s := p.Value
			if s.Boolean {
				fmt.Fprintf(&b, "  %s: %s\n", s.Name, yesNo(s.Active))
				continue
			}
			fmt.Fprintf(&b, "  %s: %d\n", s.Name, s.Value)
			for _, d := range s.Details {
				fmt.Fprintf(&b, "    %s: %d\n", d.Key, d.Value)
			}
		}
		for _, t := range a.Totals {
			fmt.Fprintf(&b, "  total %s: %d\n", t.Key, t.Value)
		}
	}
	return b.String()
}

func yesNo(v bool) string {
	if v {
		return "sí"
	}
	return "no"
}

// Diff returns a unified diff from week a to week b. Identical records give
// an empty string.
func Diff(a, b model.MetricsRecord) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(Summary(a)),
		B:        difflib.SplitLines(Summary(b)),
		FromFile: fmt.Sprintf("semana-%d", a.Week),
		ToFile:   fmt.Sprintf("semana-%d", b.Week),
		Context:  1,
	}
	out, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", eris.Wrapf(err, "diff weeks %d and %d", a.Week, b.Week)
	}
	return out, nil
}
