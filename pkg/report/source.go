package report

import (
	"context"
	"os"

	"github.com/farolhq/farol/internal/cache"
	"github.com/farolhq/farol/pkg/archive"
	"github.com/farolhq/farol/pkg/canonical"
	"github.com/farolhq/farol/pkg/loader"
	"github.com/farolhq/farol/pkg/models"
)

// Source resolves month tags to canonical snapshots through the archive
// directory, with read-through caching. It implements
// history.SnapshotSource.
type Source struct {
	dir    *archive.Dir
	loader *loader.Loader
	canon  *canonical.Canonicalizer
	cache  *cache.Cache
}

// NewSource wires the snapshot pipeline over an archive directory.
func NewSource(dir *archive.Dir, l *loader.Loader, c *cache.Cache) *Source {
	return &Source{
		dir:    dir,
		loader: l,
		canon:  canonical.New(),
		cache:  c,
	}
}

// Resolve loads and canonicalizes the snapshot for the tag.
func (s *Source) Resolve(ctx context.Context, tag models.MonthTag) (*models.Snapshot, error) {
	path, err := s.dir.Path(tag)
	if err != nil {
		return nil, err
	}
	return s.cache.GetOrLoad(path, func(path string) (*models.Snapshot, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		raw, err := s.loader.Load(data, tag)
		if err != nil {
			return nil, err
		}
		return s.canon.Canonicalize(raw)
	})
}

// Current resolves the archive's anchor month.
func (s *Source) Current(ctx context.Context) (*models.Snapshot, error) {
	return s.Resolve(ctx, s.dir.Current())
}
