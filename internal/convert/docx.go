package convert

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/net/html"
)

// Docx converts WordprocessingML to simple markup: headings from paragraph
// styles, numbered or bulleted paragraphs as <li> inside <ul>, tables as
// <table>, everything else as <p>.
type Docx struct{}

// Convert implements Converter.
func (Docx) Convert(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", eris.Wrapf(err, "open docx %s", name)
	}

	var docFile *zip.File
	for _, f := range zr.File {
		if f.Name == "word/document.xml" {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return "", eris.Wrapf(ErrNoDocumentXML, "%s", name)
	}

	rc, err := docFile.Open()
	if err != nil {
		return "", eris.Wrapf(err, "open document.xml in %s", name)
	}
	defer rc.Close()

	out, err := docxToHTML(rc)
	if err != nil {
		return "", eris.Wrapf(err, "parse document.xml in %s", name)
	}
	return out, nil
}

type paragraph struct {
	text  strings.Builder
	style string
	list  bool
}

func docxToHTML(r io.Reader) (string, error) {
	dec := xml.NewDecoder(r)
	var (
		out     strings.Builder
		paras   []*paragraph // open paragraphs; text boxes nest one inside another
		inText  bool
		inList  bool
		tblDeep int
	)
	closeList := func() {
		if inList {
			out.WriteString("</ul>")
			inList = false
		}
	}

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}

		var para *paragraph
		if n := len(paras); n > 0 {
			para = paras[n-1]
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				paras = append(paras, &paragraph{})
			case "pStyle":
				if para != nil {
					para.style = attr(t, "val")
				}
			case "numPr":
				if para != nil {
					para.list = true
				}
			case "t":
				inText = true
			case "tab":
				if para != nil {
					para.text.WriteByte('\t')
				}
			case "br":
				if para != nil {
					para.text.WriteByte(' ')
				}
			case "tbl":
				closeList()
				tblDeep++
				out.WriteString("<table>")
			case "tr":
				out.WriteString("<tr>")
			case "tc":
				out.WriteString("<td>")
			}

		case xml.CharData:
			if inText && para != nil {
				para.text.Write(t)
			}

		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if para != nil {
					writeParagraph(&out, para, tblDeep > 0, &inList)
					paras = paras[:len(paras)-1]
				}
			case "tc":
				closeList()
				out.WriteString("</td>")
			case "tr":
				out.WriteString("</tr>")
			case "tbl":
				out.WriteString("</table>")
				if tblDeep > 0 {
					tblDeep--
				}
			}
		}
	}
	closeList()
	return out.String(), nil
}

func writeParagraph(out *strings.Builder, p *paragraph, inTable bool, inList *bool) {
	text := strings.TrimSpace(p.text.String())
	if text == "" {
		return
	}
	esc := html.EscapeString(text)

	if p.list || isListStyle(p.style) {
		if !*inList {
			out.WriteString("<ul>")
			*inList = true
		}
		out.WriteString("<li>" + esc + "</li>")
		return
	}
	if *inList {
		out.WriteString("</ul>")
		*inList = false
	}

	if level := headingLevel(p.style); level > 0 && !inTable {
		tag := "h" + string(rune('0'+level))
		out.WriteString("<" + tag + ">" + esc + "</" + tag + ">")
		return
	}
	out.WriteString("<p>" + esc + "</p>")
}

func attr(e xml.StartElement, local string) string {
	for _, a := range e.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func isListStyle(style string) bool {
	s := strings.ToLower(style)
	return strings.HasPrefix(s, "listbullet") || strings.HasPrefix(s, "listnumber") ||
		strings.HasPrefix(s, "vietadelista") || strings.HasPrefix(s, "listaconvietas")
}

// headingLevel maps a paragraph style id to a heading level, 0 for body
// text. "Heading2", "Ttulo2" (Spanish Word) and "Title" are recognized.
func headingLevel(style string) int {
	lower := strings.ToLower(style)

	if lower == "title" || lower == "ttulo" {
		return 1
	}
	if lower == "subtitle" || lower == "subttulo" {
		return 2
	}

	for _, prefix := range []string{"heading", "ttulo", "titulo", "título"} {
		if strings.HasPrefix(lower, prefix) {
			rest := lower[len(prefix):]
			if len(rest) == 1 && rest[0] >= '1' && rest[0] <= '6' {
				return int(rest[0] - '0')
			}
		}
	}
	return 0
}
