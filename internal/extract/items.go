package extract

import (
	"regexp"
	"strings"

	"drai-go/internal/parser"
)

// a dash, whitespace, then something that is not whitespace
var dashBullet = regexp.MustCompile(`-\s+\S`)

// CountItems counts the enumerable items of a located section. Real list
// markup is counted structurally; only a fragment without any list markup
// falls back to counting dash bullets in its text.
func CountItems(f Fragment, ok bool) int {
	if !ok || strings.TrimSpace(f.Text) == "" {
		return 0
	}
	if n, hasList := parser.ListItems(f.Text); hasList {
		return n
	}
	return CountBullets(parser.TextContent(f.Text))
}

// CountBullets is the textual mode of CountItems. Stray dashes in prose
// count too.
func CountBullets(text string) int {
	return len(dashBullet.FindAllStringIndex(text, -1))
}
