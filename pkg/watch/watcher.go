// Package watch monitors the snapshot archive directory and evicts
// cached snapshots when their files change. Intended for long-lived
// embedders of the engine; the one-shot CLI relies on mtime checks
// alone.
package watch

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/farolhq/farol/internal/cache"
	"github.com/fsnotify/fsnotify"
)

// Watcher monitors snapshot files for changes.
type Watcher struct {
	fsWatcher *fsnotify.Watcher
	cache     *cache.Cache
	debounce  time.Duration
	dir       string
	callback  func(path string)
	mu        sync.Mutex
	pending   map[string]time.Time
}

// New creates a watcher over the archive directory.
func New(dir string, c *cache.Cache, debounce time.Duration) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}

	return &Watcher{
		fsWatcher: fsWatcher,
		cache:     c,
		debounce:  debounce,
		dir:       dir,
		pending:   make(map[string]time.Time),
	}, nil
}

// SetCallback sets an optional function called after an eviction.
func (w *Watcher) SetCallback(cb func(path string)) {
	w.callback = cb
}

// Start begins watching. Blocks until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.fsWatcher.Add(w.dir); err != nil {
		return err
	}

	ticker := time.NewTicker(w.debounce)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return w.fsWatcher.Close()

		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return nil
			}
			if !isSnapshotFile(event.Name) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			w.mu.Lock()
			w.pending[event.Name] = time.Now()
			w.mu.Unlock()

		case <-ticker.C:
			w.flush()

		case _, ok := <-w.fsWatcher.Errors:
			if !ok {
				return nil
			}
		}
	}
}

// flush evicts entries whose last event is older than the debounce
// window.
func (w *Watcher) flush() {
	cutoff := time.Now().Add(-w.debounce)

	w.mu.Lock()
	var ready []string
	for path, last := range w.pending {
		if last.Before(cutoff) {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	for _, path := range ready {
		w.cache.Evict(path)
		if w.callback != nil {
			w.callback(path)
		}
	}
}

// isSnapshotFile reports whether the path matches the snapshot naming
// convention.
func isSnapshotFile(path string) bool {
	name := filepath.Base(path)
	return strings.HasPrefix(name, "dadosr") && strings.HasSuffix(name, ".csv")
}
