package parser

import (
	"reflect"
	"strings"
	"testing"
)

func TestTextContent(t *testing.T) {
	tests := []struct {
		name   string
		markup string
		want   string
	}{
		{"paragraphs", "<p>uno</p><p>dos</p>", "uno\ndos\n"},
		{"list", "<ul><li>a</li><li>b</li></ul>", "a\nb\n\n"},
		{"table cells", "<table><tr><td>12</td><td>7</td></tr></table>", "12\t7\t\n\n"},
		{"script skipped", "<p>x<script>var n = 5;</script>y</p>", "xy\n"},
		{"entities", "<p>Ingeni&#64; &amp; CENDOI</p>", "Ingeni@ & CENDOI\n"},
		{"line break", "uno<br>dos<br/>tres", "uno\ndos\ntres"},
		{"plain text", "sin marcado", "sin marcado"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TextContent(tt.markup); got != tt.want {
				t.Fatalf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestListItems(t *testing.T) {
	tests := []struct {
		name     string
		fragment string
		n        int
		hasList  bool
	}{
		{"items", "Logístico</h3><ul><li>a</li><li>b</li><li>c</li></ul><h3>", 3, true},
		{"empty list", "<ul></ul>", 0, true},
		{"no list", "<p>- uno</p><p>- dos</p>", 0, false},
		{"blank", "   ", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, hasList := ListItems(tt.fragment)
			if n != tt.n || hasList != tt.hasList {
				t.Fatalf("got (%d, %v), want (%d, %v)", n, hasList, tt.n, tt.hasList)
			}
		})
	}
}

func TestNewDocument(t *testing.T) {
	doc := NewDocument("<h2>Informe</h2><p>Semana 3</p>")
	if !strings.Contains(doc.Markup, "<h2>") {
		t.Fatal("markup not kept")
	}
	if doc.Text != "Informe\nSemana 3\n" {
		t.Fatalf("text view %q", doc.Text)
	}
}

func TestResolveLink(t *testing.T) {
	base := "https://drai.example.edu/informes/index.html"
	tests := []struct {
		raw, want string
	}{
		{"semana-12.docx", "https://drai.example.edu/informes/semana-12.docx"},
		{"/otros/s1.html#top", "https://drai.example.edu/otros/s1.html"},
		{"#ancla", ""},
		{"mailto:drai@example.edu", ""},
		{"ftp://example.edu/x.docx", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ResolveLink(base, tt.raw); got != tt.want {
			t.Errorf("ResolveLink(%q) = %q, want %q", tt.raw, got, tt.want)
		}
	}
}

func TestLinksFiltersByExtension(t *testing.T) {
	page := `<html><body>
<a href="Informe_Semana_10.docx">10</a>
<a href="Informe_Semana_11.DOCX">11</a>
<a href="Informe_Semana_10.docx">again</a>
<a href="notas.pdf">pdf</a>
<a href="mailto:x@y.z">mail</a>
<a href="s12.html">12</a>
</body></html>`

	got := Links("https://drai.example.edu/informes/", page, ".docx", ".html")
	want := []string{
		"https://drai.example.edu/informes/Informe_Semana_10.docx",
		"https://drai.example.edu/informes/Informe_Semana_11.DOCX",
		"https://drai.example.edu/informes/s12.html",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}
