// Package extract turns a converted weekly report into a MetricsRecord.
//
// The engine is heuristic: sections are located by searching for known
// headings, list items are counted inside a section, and numbers are read
// next to known label phrases through ordered fallback chains. Every
// lookup tolerates absence; a missing section or phrase reads as zero.
package extract

import (
	"regexp"
	"sync"
)

// Fragment is the exact span of a document that belongs to one section.
type Fragment struct {
	Text       string
	Start, End int
}

// SectionSpec names a section by its heading aliases and the headings that
// may follow it.
type SectionSpec struct {
	Start []string `yaml:"start"`
	End   []string `yaml:"end"`
}

// Locate tries each start alias in order and returns the first section
// found.
func (s SectionSpec) Locate(doc string) (Fragment, bool) {
	for _, h := range s.Start {
		if f, ok := Locate(doc, h, s.End...); ok {
			return f, true
		}
	}
	return Fragment{}, false
}

var foldCache sync.Map // heading -> *regexp.Regexp

func folded(heading string) *regexp.Regexp {
	if re, ok := foldCache.Load(heading); ok {
		return re.(*regexp.Regexp)
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(heading))
	foldCache.Store(heading, re)
	return re
}

// Locate finds the section that starts at the first case-insensitive
// occurrence of start. The section ends at the nearest occurrence of any
// end heading after the start heading, or at the end of doc when no end
// heading is given or none is found. The returned text keeps the heading
// and any markup. ok is false when start does not occur.
func Locate(doc, start string, ends ...string) (Fragment, bool) {
	if start == "" {
		return Fragment{}, false
	}
	loc := folded(start).FindStringIndex(doc)
	if loc == nil {
		return Fragment{}, false
	}

	from, end := loc[1], len(doc)
	for _, h := range ends {
		if h == "" {
			continue
		}
		if next := folded(h).FindStringIndex(doc[from:]); next != nil && from+next[0] < end {
			end = from + next[0]
		}
	}
	return Fragment{Text: doc[loc[0]:end], Start: loc[0], End: end}, true
}
