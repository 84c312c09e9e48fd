// Package frontier tracks which report inputs a batch has already taken.
package frontier

import (
	"hash/fnv"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
)

// Visited is a concurrency-safe set of inputs. Entries are normalized with
// Key, so two spellings of one file or one URL are taken once.
type Visited struct {
	mu  sync.Mutex
	set map[uint64]struct{}
}

func NewVisited() *Visited {
	return &Visited{set: make(map[uint64]struct{})}
}

// Key normalizes an input location: http(s) URLs lose their fragment and
// get a lowercase scheme and host; anything else is an absolute, cleaned
// file path.
func Key(loc string) string {
	if u, err := url.Parse(loc); err == nil {
		scheme := strings.ToLower(u.Scheme)
		if scheme == "http" || scheme == "https" {
			u.Scheme = scheme
			u.Host = strings.ToLower(u.Host)
			u.Fragment = ""
			if u.Path == "" {
				u.Path = "/"
			}
			return u.String()
		}
	}
	if abs, err := filepath.Abs(loc); err == nil {
		return abs
	}
	return filepath.Clean(loc)
}

func hash(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}

// Add records loc and reports whether it was new.
func (v *Visited) Add(loc string) bool {
	k := hash(Key(loc))
	v.mu.Lock()
	defer v.mu.Unlock()
	if _, ok := v.set[k]; ok {
		return false
	}
	v.set[k] = struct{}{}
	return true
}

func (v *Visited) Has(loc string) bool {
	k := hash(Key(loc))
	v.mu.Lock()
	defer v.mu.Unlock()
	_, ok := v.set[k]
	return ok
}

func (v *Visited) Size() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.set)
}
