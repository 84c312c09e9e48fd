package extract

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// Pattern is one step of a number fallback chain: a label phrase with the
// number captured by Group. Section optionally limits the search to one
// located section of the report.
type Pattern struct {
	Re      *regexp.Regexp
	Group   int
	Section string
}

// NewPattern compiles expr. Group 0 means the first capture group.
func NewPattern(expr string, group int) (Pattern, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return Pattern{}, err
	}
	if group <= 0 {
		group = 1
	}
	if group > re.NumSubexp() {
		return Pattern{}, eris.Errorf("pattern %q has no group %d", expr, group)
	}
	return Pattern{Re: re, Group: group}, nil
}

// MustPattern is NewPattern for literals known to be valid.
func MustPattern(expr string, group int) Pattern {
	p, err := NewPattern(expr, group)
	if err != nil {
		panic(err)
	}
	return p
}

// Scope returns the text of a named section, ok=false when it is missing.
type Scope func(section string) (string, bool)

// ExtractNumber returns the first positive number produced by patterns, in
// order, or 0 when none yields one. A capture of zero or non-numeric text
// counts as no match. Section scoping is ignored.
func ExtractNumber(patterns []Pattern, text string) int {
	return ExtractNumberIn(patterns, text, nil)
}

// ExtractNumberIn is ExtractNumber with section-scoped patterns resolved
// through scope. A pattern whose section is missing does not match.
func ExtractNumberIn(patterns []Pattern, text string, scope Scope) int {
	for _, p := range patterns {
		target := text
		if p.Section != "" && scope != nil {
			s, ok := scope(p.Section)
			if !ok {
				continue
			}
			target = s
		}
		if v, ok := p.first(target); ok {
			return v
		}
	}
	return 0
}

func (p Pattern) first(text string) (int, bool) {
	if p.Re == nil {
		return 0, false
	}
	m := p.Re.FindStringSubmatch(text)
	group := p.Group
	if group <= 0 {
		group = 1
	}
	if m == nil || group >= len(m) {
		return 0, false
	}
	v, err := strconv.Atoi(strings.TrimSpace(m[group]))
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

// CountMatches counts non-overlapping matches of re in text.
func CountMatches(re *regexp.Regexp, text string) int {
	if re == nil {
		return 0
	}
	return len(re.FindAllStringIndex(text, -1))
}
