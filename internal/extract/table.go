package extract

import (
	_ "embed"
	"os"
	"regexp"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"drai-go/internal/model"
)

//go:embed areas.yaml
var defaultTable []byte

// defaultWindow bounds the unless search after a flag phrase.
const defaultWindow = 200

// ---------------------------------------------------------------------------
// YAML shape
// ---------------------------------------------------------------------------

type tableFile struct {
	Date   string            `yaml:"date"`
	Areas  []areaFile        `yaml:"areas"`
	Legacy map[string]string `yaml:"legacy"`
}

type areaFile struct {
	Key           string                 `yaml:"key"`
	Name          string                 `yaml:"name"`
	Sections      map[string]SectionSpec `yaml:"sections"`
	Metrics       []metricFile           `yaml:"metrics"`
	Subactivities []subFile              `yaml:"subactivities"`
	Totals        []string               `yaml:"totals"`
}

type metricFile struct {
	Key      string        `yaml:"key"`
	Items    string        `yaml:"items"`
	Patterns []patternFile `yaml:"patterns"`
	Presence string        `yaml:"presence"`
	Bounds   []int         `yaml:"bounds"`
	Count    string        `yaml:"count"`
	Flag     string        `yaml:"flag"`
	Unless   string        `yaml:"unless"`
	Window   int           `yaml:"window"`
	Always   bool          `yaml:"always"`
	Sum      []string      `yaml:"sum"`
	Active   []string      `yaml:"active"`
}

type patternFile struct {
	Re      string `yaml:"re"`
	Group   int    `yaml:"group"`
	Section string `yaml:"section"`
}

type subFile struct {
	Key         string   `yaml:"key"`
	Name        string   `yaml:"name"`
	Value       string   `yaml:"value"`
	Description string   `yaml:"description"`
	Details     []string `yaml:"details"`
	Active      string   `yaml:"active"`
}

// ---------------------------------------------------------------------------
// compiled shape
// ---------------------------------------------------------------------------

// Kind selects how a metric is computed.
type Kind int

const (
	KindItems Kind = iota
	KindNumber
	KindCount
	KindFlag
	KindSum
	KindActive
)

// Bounds is the plausible weekly band of a validated metric.
type Bounds struct {
	Min, Max int
}

// Metric is one compiled row of an area's extraction table.
type Metric struct {
	Key  string
	Kind Kind

	Section  string         // KindItems
	Patterns []Pattern      // KindNumber
	Presence *regexp.Regexp // KindNumber: value 1 when nothing captured but the phrase appears
	Bounds   *Bounds        // KindNumber

	Re     *regexp.Regexp // KindCount, KindFlag
	Unless *regexp.Regexp // KindFlag
	Window int            // KindFlag
	Always bool           // KindFlag

	Refs []string // KindSum, KindActive
}

// SubactivitySpec maps computed metrics onto one output subactivity.
type SubactivitySpec struct {
	Key         string
	Name        string
	Value       string
	Description string
	Details     []string
	Active      string
}

// Area is the compiled declarative configuration of one operational area.
type Area struct {
	Key           string
	Name          string
	Sections      map[string]SectionSpec
	Metrics       []Metric
	Subactivities []SubactivitySpec
	Totals        []string
}

// LegacyRef mirrors one area metric into a top-level record field.
type LegacyRef struct {
	Field  string
	Area   int // 0-based
	Metric string
}

// Table is the full extraction configuration for a report.
type Table struct {
	Date   *regexp.Regexp
	Areas  []Area
	Legacy []LegacyRef
}

// DefaultTable returns the embedded table. It panics if the embedded YAML
// is invalid, which only a broken build can cause.
func DefaultTable() *Table {
	t, err := ParseTable(defaultTable)
	if err != nil {
		panic(err)
	}
	return t
}

// LoadTable reads a table from path, or returns the embedded one when path
// is empty.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return ParseTable(defaultTable)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "read areas table %s", path)
	}
	return ParseTable(data)
}

// ParseTable decodes and compiles a YAML extraction table.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, eris.Wrap(err, "decode areas table")
	}
	if len(f.Areas) != model.AreaCount {
		return nil, eris.Errorf("areas table: want %d areas, got %d", model.AreaCount, len(f.Areas))
	}

	t := &Table{}
	if f.Date != "" {
		re, err := regexp.Compile(f.Date)
		if err != nil {
			return nil, eris.Wrap(err, "areas table: date pattern")
		}
		t.Date = re
	}

	for _, af := range f.Areas {
		a, err := compileArea(af)
		if err != nil {
			return nil, err
		}
		t.Areas = append(t.Areas, a)
	}

	fields := make([]string, 0, len(f.Legacy))
	for field := range f.Legacy {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	var probe model.Legacy
	for _, field := range fields {
		if probe.Field(field) == nil {
			return nil, eris.Errorf("legacy: unknown field %q", field)
		}
		ref, err := t.resolve(f.Legacy[field])
		if err != nil {
			return nil, eris.Wrapf(err, "legacy %s", field)
		}
		ref.Field = field
		t.Legacy = append(t.Legacy, ref)
	}
	return t, nil
}

func (t *Table) resolve(ref string) (LegacyRef, error) {
	areaKey, metric, ok := strings.Cut(ref, ".")
	if !ok {
		return LegacyRef{}, eris.Errorf("reference %q is not area.metric", ref)
	}
	for i, a := range t.Areas {
		if a.Key != areaKey {
			continue
		}
		for _, m := range a.Metrics {
			if m.Key == metric {
				return LegacyRef{Area: i, Metric: metric}, nil
			}
		}
		return LegacyRef{}, eris.Errorf("area %s has no metric %q", areaKey, metric)
	}
	return LegacyRef{}, eris.Errorf("unknown area %q", areaKey)
}

func compileArea(af areaFile) (Area, error) {
	a := Area{
		Key:      af.Key,
		Name:     af.Name,
		Sections: af.Sections,
		Totals:   af.Totals,
	}
	if a.Sections == nil {
		a.Sections = map[string]SectionSpec{}
	}

	kinds := make(map[string]Kind)
	for _, mf := range af.Metrics {
		if _, dup := kinds[mf.Key]; dup || mf.Key == "" {
			return Area{}, eris.Errorf("%s: duplicate or empty metric key %q", af.Key, mf.Key)
		}
		m, err := compileMetric(af.Key, mf, a.Sections, kinds)
		if err != nil {
			return Area{}, err
		}
		kinds[m.Key] = m.Kind
		a.Metrics = append(a.Metrics, m)
	}

	numeric := func(key string) bool {
		k, ok := kinds[key]
		return ok && k != KindFlag
	}
	seen := make(map[string]struct{})
	for _, sf := range af.Subactivities {
		if _, dup := seen[sf.Key]; dup || sf.Key == "" {
			return Area{}, eris.Errorf("%s: duplicate or empty subactivity key %q", af.Key, sf.Key)
		}
		seen[sf.Key] = struct{}{}

		if sf.Active != "" {
			if k, ok := kinds[sf.Active]; !ok || k != KindFlag {
				return Area{}, eris.Errorf("%s.%s: active must reference a flag, got %q", af.Key, sf.Key, sf.Active)
			}
		}
		if sf.Value != "" && !numeric(sf.Value) {
			return Area{}, eris.Errorf("%s.%s: value must reference a numeric metric, got %q", af.Key, sf.Key, sf.Value)
		}
		for _, d := range sf.Details {
			if !numeric(d) {
				return Area{}, eris.Errorf("%s.%s: detail %q is not a numeric metric", af.Key, sf.Key, d)
			}
		}
		a.Subactivities = append(a.Subactivities, SubactivitySpec(sf))
	}

	for _, key := range af.Totals {
		if !numeric(key) {
			return Area{}, eris.Errorf("%s: total %q is not a numeric metric", af.Key, key)
		}
	}
	return a, nil
}

func compileMetric(area string, mf metricFile, sections map[string]SectionSpec, defined map[string]Kind) (Metric, error) {
	m := Metric{Key: mf.Key}
	where := area + "." + mf.Key

	set := 0
	for _, on := range []bool{
		mf.Items != "", len(mf.Patterns) > 0, mf.Count != "",
		mf.Flag != "" || mf.Always, len(mf.Sum) > 0, len(mf.Active) > 0,
	} {
		if on {
			set++
		}
	}
	if set != 1 {
		return Metric{}, eris.Errorf("%s: exactly one metric kind required, got %d", where, set)
	}

	var err error
	switch {
	case mf.Items != "":
		if _, ok := sections[mf.Items]; !ok {
			return Metric{}, eris.Errorf("%s: unknown section %q", where, mf.Items)
		}
		m.Kind, m.Section = KindItems, mf.Items

	case len(mf.Patterns) > 0:
		m.Kind = KindNumber
		for i, pf := range mf.Patterns {
			if pf.Section != "" {
				if _, ok := sections[pf.Section]; !ok {
					return Metric{}, eris.Errorf("%s: pattern %d: unknown section %q", where, i, pf.Section)
				}
			}
			p, err := NewPattern(pf.Re, pf.Group)
			if err != nil {
				return Metric{}, eris.Wrapf(err, "%s: pattern %d", where, i)
			}
			p.Section = pf.Section
			m.Patterns = append(m.Patterns, p)
		}
		if mf.Presence != "" {
			if m.Presence, err = regexp.Compile(mf.Presence); err != nil {
				return Metric{}, eris.Wrapf(err, "%s: presence", where)
			}
		}
		if mf.Bounds != nil {
			if len(mf.Bounds) != 2 || mf.Bounds[0] > mf.Bounds[1] {
				return Metric{}, eris.Errorf("%s: bounds must be [min, max], got %v", where, mf.Bounds)
			}
			m.Bounds = &Bounds{Min: mf.Bounds[0], Max: mf.Bounds[1]}
		}

	case mf.Count != "":
		m.Kind = KindCount
		if m.Re, err = regexp.Compile(mf.Count); err != nil {
			return Metric{}, eris.Wrapf(err, "%s: count", where)
		}

	case mf.Flag != "" || mf.Always:
		m.Kind, m.Always = KindFlag, mf.Always
		if mf.Flag != "" {
			if m.Re, err = regexp.Compile(mf.Flag); err != nil {
				return Metric{}, eris.Wrapf(err, "%s: flag", where)
			}
		}
		if mf.Unless != "" {
			if m.Unless, err = regexp.Compile(mf.Unless); err != nil {
				return Metric{}, eris.Wrapf(err, "%s: unless", where)
			}
			m.Window = mf.Window
			if m.Window <= 0 {
				m.Window = defaultWindow
			}
		}

	case len(mf.Sum) > 0:
		m.Kind, m.Refs = KindSum, mf.Sum
		for _, r := range mf.Sum {
			if k, ok := defined[r]; !ok || k == KindFlag {
				return Metric{}, eris.Errorf("%s: sum needs an earlier numeric metric, got %q", where, r)
			}
		}

	case len(mf.Active) > 0:
		m.Kind, m.Refs = KindActive, mf.Active
		for _, r := range mf.Active {
			if k, ok := defined[r]; !ok || k != KindFlag {
				return Metric{}, eris.Errorf("%s: active needs an earlier flag, got %q", where, r)
			}
		}
	}
	return m, nil
}
