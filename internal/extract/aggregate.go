package extract

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"drai-go/internal/metrics"
	"drai-go/internal/model"
	"drai-go/internal/parser"
)

// Aggregator builds metrics records from documents with one generic routine
// driven by a Table.
type Aggregator struct {
	Table *Table
	Log   *zap.Logger
	// DefaultYear completes date headings that omit the year.
	DefaultYear int
}

// NewAggregator returns an aggregator over table; a nil table means the
// embedded default and a nil logger discards diagnostics.
func NewAggregator(table *Table, log *zap.Logger) *Aggregator {
	if table == nil {
		table = DefaultTable()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Aggregator{Table: table, Log: log, DefaultYear: 2025}
}

// Build produces the record for one report. It never fails; whatever
// cannot be found reads as zero or false.
func (a *Aggregator) Build(week int, doc *parser.Document) model.MetricsRecord {
	rec := model.MetricsRecord{
		Week:       week,
		ReportDate: ReportDate(a.Table.Date, doc.Text, week, a.DefaultYear),
	}

	values := make([]map[string]int, len(a.Table.Areas))
	areas := rec.Areas()
	for i := range a.Table.Areas {
		if i >= len(areas) {
			break
		}
		ar, vals := a.buildArea(i, week, doc)
		*areas[i] = ar
		values[i] = vals
	}

	for _, l := range a.Table.Legacy {
		if f := rec.Legacy.Field(l.Field); f != nil && l.Area < len(values) {
			*f = values[l.Area][l.Metric]
		}
	}
	return rec
}

// BuildArea produces area n (1-based) on its own.
func (a *Aggregator) BuildArea(n, week int, doc *parser.Document) model.AreaRecord {
	if n < 1 || n > len(a.Table.Areas) {
		return model.AreaRecord{}
	}
	ar, _ := a.buildArea(n-1, week, doc)
	return ar
}

func (a *Aggregator) buildArea(idx, week int, doc *parser.Document) (model.AreaRecord, map[string]int) {
	area := a.Table.Areas[idx]
	vals := make(map[string]int, len(area.Metrics))

	// text-view sections are located lazily and at most once
	located := make(map[string]Fragment)
	missing := make(map[string]bool)
	scope := func(name string) (string, bool) {
		if f, ok := located[name]; ok {
			return f.Text, true
		}
		if missing[name] {
			return "", false
		}
		f, ok := area.Sections[name].Locate(doc.Text)
		if !ok {
			missing[name] = true
			a.sectionMissing(area.Key, name, week)
			return "", false
		}
		located[name] = f
		return f.Text, true
	}

	for _, m := range area.Metrics {
		vals[m.Key] = a.evaluate(area, m, week, doc, vals, scope)
	}

	rec := model.AreaRecord{
		Name:          area.Name,
		Subactivities: model.OrderedMap[model.Subactivity]{},
		Totals:        model.OrderedMap[int]{},
	}
	for _, s := range area.Subactivities {
		if s.Active != "" {
			rec.Subactivities.Set(s.Key, model.Flag(s.Name, vals[s.Active] == 1))
			continue
		}
		sub := model.Numeric(s.Name, vals[s.Value])
		sub.Description = s.Description
		for _, d := range s.Details {
			sub.Details.Set(d, vals[d])
		}
		rec.Subactivities.Set(s.Key, sub)
	}
	for _, key := range area.Totals {
		rec.Totals.Set(key, vals[key])
	}

	a.Log.Info("area extracted",
		zap.Int("week", week),
		zap.String("area", area.Key),
		zap.String("name", area.Name),
		zap.String("values", summary(area, vals)),
	)
	return rec, vals
}

func (a *Aggregator) evaluate(area Area, m Metric, week int, doc *parser.Document, vals map[string]int, scope Scope) int {
	switch m.Kind {
	case KindItems:
		f, ok := area.Sections[m.Section].Locate(doc.Markup)
		if !ok {
			a.sectionMissing(area.Key, m.Section, week)
			return 0
		}
		n := CountItems(f, ok)
		a.Log.Debug("section items",
			zap.Int("week", week),
			zap.String("section", m.Section),
			zap.Int("items", n),
		)
		return n

	case KindNumber:
		v := ExtractNumberIn(m.Patterns, doc.Text, scope)
		if v == 0 && m.Presence != nil && m.Presence.MatchString(doc.Text) {
			v = 1
		}
		if m.Bounds != nil {
			v = Validate(v, m.Bounds.Min, m.Bounds.Max, m.Key, week, a.Log)
		}
		return v

	case KindCount:
		return CountMatches(m.Re, doc.Text)

	case KindFlag:
		if flagged(m, doc.Text) {
			return 1
		}
		return 0

	case KindSum, KindActive:
		total := 0
		for _, r := range m.Refs {
			total += vals[r]
		}
		return total
	}
	return 0
}

// flagged is the presence classifier: the phrase appears, and no "nothing
// to report" phrase follows it within the window.
func flagged(m Metric, text string) bool {
	if m.Always {
		return true
	}
	if m.Re == nil {
		return false
	}
	loc := m.Re.FindStringIndex(text)
	if loc == nil {
		return false
	}
	if m.Unless == nil {
		return true
	}
	end := loc[0] + m.Window
	if end > len(text) {
		end = len(text)
	}
	return !m.Unless.MatchString(text[loc[0]:end])
}

func (a *Aggregator) sectionMissing(area, section string, week int) {
	a.Log.Warn("section not found",
		zap.Int("week", week),
		zap.String("area", area),
		zap.String("section", section),
	)
	metrics.SectionsMissing.WithLabelValues(section).Inc()
}

func summary(area Area, vals map[string]int) string {
	parts := make([]string, 0, len(area.Metrics))
	for _, m := range area.Metrics {
		parts = append(parts, fmt.Sprintf("%s=%d", m.Key, vals[m.Key]))
	}
	return strings.Join(parts, " ")
}
