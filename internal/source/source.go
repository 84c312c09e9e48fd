// Package source expands command-line and upload arguments into report
// inputs: local files, directories, report URLs and index pages linking to
// reports.
package source

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/rotisserie/eris"

	"drai-go/internal/frontier"
	"drai-go/internal/hostman"
	"drai-go/internal/metrics"
	"drai-go/internal/parser"
)

// Input is one report to process. Name is the file name used for the
// week number and the converter choice. Err, when set, marks an input that
// already failed while being collected; the batch reports it and moves on.
type Input struct {
	Name string
	Path string // local path or URL
	Data []byte // preloaded payload, e.g. an upload
	Err  error
}

// Remote reports whether Path is an http(s) URL.
func (in Input) Remote() bool { return isURL(in.Path) }

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// ErrTooLarge marks an input longer than the configured byte limit.
var ErrTooLarge = errors.New("source: input exceeds size limit")

// ReadCapped reads all of r, failing with ErrTooLarge instead of
// truncating when r holds more than max bytes.
func ReadCapped(r io.Reader, max int64) ([]byte, error) {
	b, err := io.ReadAll(io.LimitReader(r, max+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > max {
		return nil, eris.Wrapf(ErrTooLarge, "more than %d bytes", max)
	}
	return b, nil
}

// Fetcher reads inputs from disk or over HTTP. Remote reads go through the
// host manager and are capped at MaxBytes, like local ones.
type Fetcher struct {
	Client   *http.Client
	Hosts    *hostman.Manager
	MaxBytes int64
}

// NewFetcher returns a fetcher with a 30-second HTTP timeout.
func NewFetcher(hosts *hostman.Manager, maxBytes int64) *Fetcher {
	if maxBytes <= 0 {
		maxBytes = 32 << 20
	}
	return &Fetcher{
		Client:   &http.Client{Timeout: 30 * time.Second},
		Hosts:    hosts,
		MaxBytes: maxBytes,
	}
}

// Read returns the payload of in.
func (f *Fetcher) Read(ctx context.Context, in Input) ([]byte, error) {
	if in.Err != nil {
		return nil, in.Err
	}
	if in.Data != nil {
		return in.Data, nil
	}
	if in.Remote() {
		return f.Get(ctx, in.Path)
	}

	file, err := os.Open(in.Path)
	if err != nil {
		return nil, eris.Wrapf(err, "open %s", in.Path)
	}
	defer file.Close()
	b, err := ReadCapped(file, f.MaxBytes)
	if err != nil {
		return nil, eris.Wrapf(err, "read %s", in.Path)
	}
	metrics.BytesRead.Add(float64(len(b)))
	return b, nil
}

// Get downloads rawURL politely.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, eris.Wrapf(err, "parse url %s", rawURL)
	}
	ua := "drai-go"
	if f.Hosts != nil {
		if err := f.Hosts.Acquire(ctx, u); err != nil {
			return nil, eris.Wrapf(err, "fetch %s", rawURL)
		}
		ua = f.Hosts.UserAgent()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, eris.Wrapf(err, "request %s", rawURL)
	}
	req.Header.Set("User-Agent", ua)

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, eris.Wrapf(err, "fetch %s", rawURL)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return nil, eris.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}

	b, err := ReadCapped(resp.Body, f.MaxBytes)
	if err != nil {
		return nil, eris.Wrapf(err, "read body %s", rawURL)
	}
	metrics.BytesRead.Add(float64(len(b)))
	return b, nil
}

// Collect expands args in order. Directories contribute their supported
// files (sorted, not recursive); a URL with a supported extension is one
// report; any other URL is read as an index page whose report links are
// followed. Repeated paths or URLs are taken once. exts are the supported
// extensions, lowercase with the dot.
func Collect(ctx context.Context, args []string, f *Fetcher, exts []string) ([]Input, error) {
	seen := frontier.NewVisited()
	inputs := make([]Input, 0, len(args))
	add := func(in Input) {
		if seen.Add(in.Path) {
			inputs = append(inputs, in)
		}
	}

	for _, arg := range args {
		if err := ctx.Err(); err != nil {
			return inputs, err
		}

		if isURL(arg) {
			if supported(urlName(arg), exts) {
				add(Input{Name: urlName(arg), Path: arg})
				continue
			}
			page, err := f.Get(ctx, arg)
			if err != nil {
				add(Input{Name: arg, Path: arg, Err: err})
				continue
			}
			for _, link := range parser.Links(arg, string(page), exts...) {
				add(Input{Name: urlName(link), Path: link})
			}
			continue
		}

		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			entries, err := os.ReadDir(arg)
			if err != nil {
				add(Input{Name: arg, Path: arg, Err: eris.Wrapf(err, "read dir %s", arg)})
				continue
			}
			for _, e := range entries {
				if e.IsDir() || !supported(e.Name(), exts) {
					continue
				}
				add(Input{Name: e.Name(), Path: filepath.Join(arg, e.Name())})
			}
			continue
		}
		// plain files, including missing ones, fail later and individually
		add(Input{Name: filepath.Base(arg), Path: arg})
	}
	return inputs, nil
}

func urlName(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	name := path.Base(u.Path)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

func supported(name string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, e := range exts {
		if ext == e {
			return true
		}
	}
	return false
}
