// Package convert is the document conversion boundary: it turns an
// uploaded report into hypertext markup for the extraction engine.
package convert

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

var (
	// ErrUnsupported means no converter is registered for the file type.
	ErrUnsupported = errors.New("convert: unsupported document type")
	// ErrNoDocumentXML means a .docx archive has no main document part.
	ErrNoDocumentXML = errors.New("convert: word/document.xml not found")
)

// Converter turns one document payload into markup.
type Converter interface {
	Convert(ctx context.Context, name string, data []byte) (string, error)
}

// Registry dispatches on the lowercase file extension.
type Registry struct {
	byExt map[string]Converter
}

// NewRegistry returns a registry for .docx, .html, .htm and .txt.
func NewRegistry() *Registry {
	r := &Registry{byExt: make(map[string]Converter)}
	r.Register(".docx", Docx{})
	r.Register(".html", Passthrough{})
	r.Register(".htm", Passthrough{})
	r.Register(".txt", Passthrough{})
	return r
}

// Register installs c for ext (with the leading dot).
func (r *Registry) Register(ext string, c Converter) {
	r.byExt[strings.ToLower(ext)] = c
}

// Supports reports whether name has a registered extension.
func (r *Registry) Supports(name string) bool {
	_, ok := r.byExt[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Extensions lists the registered extensions, sorted.
func (r *Registry) Extensions() []string {
	exts := make([]string, 0, len(r.byExt))
	for e := range r.byExt {
		exts = append(exts, e)
	}
	sort.Strings(exts)
	return exts
}

// Convert implements Converter.
func (r *Registry) Convert(ctx context.Context, name string, data []byte) (string, error) {
	c, ok := r.byExt[strings.ToLower(filepath.Ext(name))]
	if !ok {
		return "", eris.Wrapf(ErrUnsupported, "%s", name)
	}
	return c.Convert(ctx, name, data)
}

// Passthrough accepts markup as is and wraps plain text in <pre>.
type Passthrough struct{}

// Convert implements Converter.
func (Passthrough) Convert(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(name), ".txt") {
		return "<pre>" + html.EscapeString(string(data)) + "</pre>", nil
	}
	return string(data), nil
}
