package parser

import (
	"strings"

	"golang.org/x/net/html"
)

// block elements whose end starts a new line in the text view
var lineBreaking = map[string]struct{}{
	"p": {}, "li": {}, "br": {}, "div": {}, "tr": {}, "table": {},
	"h1": {}, "h2": {}, "h3": {}, "h4": {}, "h5": {}, "h6": {},
	"ul": {}, "ol": {}, "pre": {}, "blockquote": {},
}

// TextContent flattens markup into the plain-text view used for phrase and
// number matching. Block boundaries become newlines and table cells are
// tab separated so adjacent values never fuse into one number.
func TextContent(markup string) string {
	z := html.NewTokenizer(strings.NewReader(markup))
	var sb strings.Builder
	skip := 0

	for {
		tt := z.Next()
		if tt == html.ErrorToken {
			break
		}
		t := z.Token()

		switch t.Type {
		case html.StartTagToken:
			switch t.Data {
			case "script", "style":
				skip++
			case "br":
				sb.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			if t.Data == "br" {
				sb.WriteByte('\n')
			}
		case html.EndTagToken:
			switch t.Data {
			case "script", "style":
				if skip > 0 {
					skip--
				}
			case "td", "th":
				sb.WriteByte('\t')
			default:
				if _, ok := lineBreaking[t.Data]; ok {
					sb.WriteByte('\n')
				}
			}
		case html.TextToken:
			if skip == 0 {
				sb.WriteString(t.Data)
			}
		}
	}
	return sb.String()
}
