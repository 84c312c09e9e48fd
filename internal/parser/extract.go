// internal/parser/extract.go
package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Document carries both views of one converted report: the markup for
// structural counting and the flattened text for pattern matching.
type Document struct {
	Markup string
	Text   string
}

// NewDocument derives the text view from markup.
func NewDocument(markup string) *Document {
	return &Document{Markup: markup, Text: TextContent(markup)}
}

// ListItems counts <li> elements in a markup fragment. The second result
// reports whether the fragment holds any list markup at all; a fragment
// that fails to parse counts as no list.
func ListItems(fragment string) (int, bool) {
	if strings.TrimSpace(fragment) == "" {
		return 0, false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return 0, false
	}
	n := doc.Find("li").Length()
	return n, n > 0 || doc.Find("ul, ol").Length() > 0
}
