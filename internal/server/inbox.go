package server

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/fsnotify.v1"

	"drai-go/internal/source"
)

// settle is how long a file must stay quiet before it is ingested, so a
// report still being copied is not read half-written.
const settle = 500 * time.Millisecond

// WatchInbox ingests every supported file created or rewritten in dir, one
// batch per file. It returns once the watcher is running; the watch ends
// with ctx.
func (s *Server) WatchInbox(ctx context.Context, dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return eris.Wrap(err, "create inbox watcher")
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return eris.Wrapf(err, "watch inbox %s", dir)
	}
	s.log.Info("watching inbox", zap.String("dir", dir))

	go s.watchLoop(ctx, watcher)
	return nil
}

func (s *Server) watchLoop(ctx context.Context, watcher *fsnotify.Watcher) {
	defer watcher.Close()

	var mu sync.Mutex
	pending := make(map[string]*time.Timer)
	schedule := func(path string) {
		mu.Lock()
		defer mu.Unlock()
		if t, ok := pending[path]; ok {
			t.Reset(settle)
			return
		}
		pending[path] = time.AfterFunc(settle, func() {
			mu.Lock()
			delete(pending, path)
			mu.Unlock()
			s.ingestFile(ctx, path)
		})
	}

	for {
		select {
		case <-ctx.Done():
			mu.Lock()
			for _, t := range pending {
				t.Stop()
			}
			mu.Unlock()
			return

		case event, ok := <-watcher.Events:
			if !ok {
				return
			}
			if !s.accepts(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				schedule(event.Name)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return
			}
			s.log.Warn("inbox watcher error", zap.Error(err))
		}
	}
}

func (s *Server) ingestFile(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	in := source.Input{Name: filepath.Base(path), Path: path}
	res, err := s.ingest(ctx, []source.Input{in})
	if err != nil {
		s.log.Warn("inbox ingest interrupted", zap.String("file", in.Name), zap.Error(err))
		return
	}
	s.log.Info("inbox file ingested",
		zap.String("file", in.Name),
		zap.Int("accepted", res.Accepted),
		zap.Int("failed", len(res.Failures)),
	)
}

// accepts reports whether name has one of the upload extensions; hidden
// and temporary office files are skipped.
func (s *Server) accepts(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	for _, e := range s.exts {
		if ext == e {
			return true
		}
	}
	return false
}
