package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

var exts = []string{".docx", ".html"}

func names(ins []Input) []string {
	out := make([]string, len(ins))
	for i, in := range ins {
		out[i] = in.Name
	}
	return out
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestCollectLocal(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "semana-2.html"), "<p>dos</p>")
	writeFile(t, filepath.Join(dir, "semana-1.docx"), "uno")
	writeFile(t, filepath.Join(dir, "notas.pdf"), "pdf")
	if err := os.Mkdir(filepath.Join(dir, "viejos.docx"), 0o755); err != nil {
		t.Fatal(err)
	}

	args := []string{dir, filepath.Join(dir, "semana-1.docx"), filepath.Join(dir, "falta.docx")}
	got, err := Collect(context.Background(), args, NewFetcher(nil, 0), exts)
	if err != nil {
		t.Fatal(err)
	}
	if want := []string{"semana-1.docx", "semana-2.html", "falta.docx"}; !reflect.DeepEqual(names(got), want) {
		t.Fatalf("got %v, want %v", names(got), want)
	}

	f := NewFetcher(nil, 0)
	data, err := f.Read(context.Background(), got[1])
	if err != nil || string(data) != "<p>dos</p>" {
		t.Fatalf("read %q %v", data, err)
	}
	if _, err := f.Read(context.Background(), got[2]); err == nil {
		t.Fatal("missing file should fail on read")
	}
}

func TestCollectCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := Collect(ctx, []string{"a.docx"}, NewFetcher(nil, 0), exts); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v", err)
	}
}

func TestCollectRemote(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/informes/", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<ul>
<li><a href="Semana%2012.docx">12</a></li>
<li><a href="/archivo/semana-13.html">13</a></li>
<li><a href="acta.pdf">acta</a></li>
<li><a href="Semana%2012.docx">otra vez</a></li>
</ul>`))
	})
	mux.HandleFunc("/archivo/semana-13.html", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>trece</p>"))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	f := NewFetcher(nil, 0)
	args := []string{srv.URL + "/informes/", srv.URL + "/archivo/semana-13.html", srv.URL + "/caido/"}
	got, err := Collect(context.Background(), args, f, exts)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("got %v", names(got))
	}
	if got[0].Name != "Semana 12.docx" || got[1].Name != "semana-13.html" {
		t.Fatalf("names %v", names(got))
	}
	if !got[0].Remote() || got[1].Path != srv.URL+"/archivo/semana-13.html" {
		t.Fatalf("inputs %+v", got[:2])
	}
	// the index page that 404s becomes a failed input
	if got[2].Err == nil {
		t.Fatal("unreachable index should carry its error")
	}

	data, err := f.Read(context.Background(), got[1])
	if err != nil || string(data) != "<p>trece</p>" {
		t.Fatalf("read %q %v", data, err)
	}
}

func TestReadPreloaded(t *testing.T) {
	f := NewFetcher(nil, 4)
	data, err := f.Read(context.Background(), Input{Name: "x.html", Data: []byte("subido")})
	if err != nil || string(data) != "subido" {
		t.Fatalf("preloaded %q %v", data, err)
	}
	boom := errors.New("boom")
	if _, err := f.Read(context.Background(), Input{Name: "x.html", Err: boom}); !errors.Is(err, boom) {
		t.Fatalf("err = %v", err)
	}

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "largo.txt"), "0123456789")
	writeFile(t, filepath.Join(dir, "justo.txt"), "0123")
	if _, err := f.Read(context.Background(), Input{Name: "largo.txt", Path: filepath.Join(dir, "largo.txt")}); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("oversized file err = %v, want ErrTooLarge", err)
	}
	data, err = f.Read(context.Background(), Input{Name: "justo.txt", Path: filepath.Join(dir, "justo.txt")})
	if err != nil || string(data) != "0123" {
		t.Fatalf("file at the limit: %q %v", data, err)
	}
}

func TestGetTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<p>informe demasiado largo</p>"))
	}))
	defer srv.Close()

	if _, err := NewFetcher(nil, 8).Get(context.Background(), srv.URL+"/s1.html"); !errors.Is(err, ErrTooLarge) {
		t.Fatalf("err = %v, want ErrTooLarge", err)
	}
}

func TestReadCapped(t *testing.T) {
	tests := []struct {
		in      string
		max     int64
		wantErr bool
	}{
		{"", 4, false},
		{"abcd", 4, false},
		{"abcde", 4, true},
	}
	for _, tt := range tests {
		b, err := ReadCapped(strings.NewReader(tt.in), tt.max)
		if (err != nil) != tt.wantErr {
			t.Errorf("ReadCapped(%q, %d) err = %v", tt.in, tt.max, err)
			continue
		}
		if err == nil && string(b) != tt.in {
			t.Errorf("ReadCapped(%q, %d) = %q", tt.in, tt.max, b)
		}
	}
}
