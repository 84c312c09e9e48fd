package extract

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strconv"
)

var firstDigits = regexp.MustCompile(`\d+`)

// WeekFromFilename returns the first run of digits in the base name of
// name, or next when there is none. The batch passes 0 so the store can
// number such reports when it merges them.
func WeekFromFilename(name string, next int) int {
	d := firstDigits.FindString(filepath.Base(name))
	if d == "" {
		return next
	}
	n, err := strconv.Atoi(d)
	if err != nil {
		return next
	}
	return n
}

// WeekLabel is the date label of a report whose heading gives no dates.
func WeekLabel(week int) string { return fmt.Sprintf("Semana %d", week) }

// ReportDate builds the date label from the report heading, e.g.
// "Informe Semana 12 del 3 al 7 de marzo 2025" -> "3-7 marzo 2025". The
// pattern must capture day, day, month and an optional year; defaultYear
// fills a missing year. Without a match the label is WeekLabel(week), or
// empty while the week is still unknown (week <= 0).
func ReportDate(re *regexp.Regexp, text string, week, defaultYear int) string {
	fallback := ""
	if week > 0 {
		fallback = WeekLabel(week)
	}
	if re == nil {
		return fallback
	}
	m := re.FindStringSubmatch(text)
	if m == nil || len(m) < 4 {
		return fallback
	}
	year := strconv.Itoa(defaultYear)
	if len(m) > 4 && m[4] != "" {
		year = m[4]
	}
	return fmt.Sprintf("%s-%s %s %s", m[1], m[2], m[3], year)
}
