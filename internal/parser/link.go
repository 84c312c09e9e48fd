// internal/parser/link.go
package parser

import (
	"net/url"
	"path"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// schemes we refuse to follow
var badScheme = map[string]struct{}{
	"mailto":     {},
	"javascript": {},
	"tel":        {},
	"data":       {},
}

// ResolveLink converts a raw <a href="…"> into an absolute URL string.
// It returns "" if the link should be ignored.
func ResolveLink(base, raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" || strings.HasPrefix(raw, "#") {
		return ""
	}

	bu, err := url.Parse(base)
	if err != nil {
		return ""
	}

	ref, err := url.Parse(raw)
	if err != nil {
		return ""
	}

	// Disallow unsupported or dangerous schemes.
	if ref.Scheme != "" {
		if _, bad := badScheme[strings.ToLower(ref.Scheme)]; bad {
			return ""
		}
		if ref.Scheme != "http" && ref.Scheme != "https" {
			return ""
		}
	}

	abs := bu.ResolveReference(ref)
	abs.Fragment = "" // drop #section

	if abs.Path == "" {
		abs.Path = "/"
	}
	return abs.String()
}

// Links returns the absolute targets of every <a href> in an index page
// whose path ends in one of exts (lowercase, with dot). Order follows the
// page; duplicates are dropped.
func Links(base, markup string, exts ...string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	links := make([]string, 0)
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		abs := ResolveLink(base, href)
		if abs == "" {
			return
		}
		if len(exts) > 0 && !hasExt(abs, exts) {
			return
		}
		if _, dup := seen[abs]; dup {
			return
		}
		seen[abs] = struct{}{}
		links = append(links, abs)
	})
	return links
}

func hasExt(rawURL string, exts []string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	ext := strings.ToLower(path.Ext(u.Path))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
