// Package cache provides the read-through snapshot cache: parsed
// snapshots keyed by file path and invalidated when the file's mtime or
// size changes.
package cache

import (
	"os"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/farolhq/farol/pkg/models"
)

// entry is one cached snapshot with the file identity it was built from.
type entry struct {
	snapshot *models.Snapshot
	modTime  time.Time
	size     int64
}

// Cache caches canonical snapshots per source file. Safe for concurrent
// use; this is the only shared mutable state in the engine.
type Cache struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	enabled bool

	hits   uint64
	misses uint64
}

// New creates a snapshot cache.
func New(enabled bool) *Cache {
	return &Cache{
		entries: make(map[uint64]entry),
		enabled: enabled,
	}
}

// LoadFunc parses the snapshot file on a cache miss.
type LoadFunc func(path string) (*models.Snapshot, error)

// GetOrLoad returns the cached snapshot for path when the file is
// unchanged, otherwise calls load and caches the result.
func (c *Cache) GetOrLoad(path string, load LoadFunc) (*models.Snapshot, error) {
	if !c.enabled {
		return load(path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	key := xxhash.Sum64String(path)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.snapshot, nil
	}

	snap, err := load(path)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.misses++
	c.entries[key] = entry{snapshot: snap, modTime: info.ModTime(), size: info.Size()}
	c.mu.Unlock()

	return snap, nil
}

// Evict removes the entry for path, if any.
func (c *Cache) Evict(path string) {
	c.mu.Lock()
	delete(c.entries, xxhash.Sum64String(path))
	c.mu.Unlock()
}

// Clear drops every entry.
func (c *Cache) Clear() {
	c.mu.Lock()
	c.entries = make(map[uint64]entry)
	c.mu.Unlock()
}

// Stats returns hit and miss counters.
func (c *Cache) Stats() (hits, misses uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
