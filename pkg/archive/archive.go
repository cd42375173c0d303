// Package archive resolves monthly snapshot files on disk.
//
// The ticketing export follows a fixed naming convention: dadosr.csv is
// the current month, dadosr_apt_{mmm}.csv an archived month, and
// dadosr_parc_{mmm}.csv a partial in-progress month, with mmm the
// lowercase Portuguese month abbreviation. File names carry no year; the
// archive is a rolling window anchored at the current month, so an
// abbreviation at or before the current month belongs to the current
// year and anything later to the previous year.
package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/farolhq/farol/pkg/models"
)

// File name patterns.
const (
	CurrentFile   = "dadosr.csv"
	ArchivePrefix = "dadosr_apt_"
	PartialPrefix = "dadosr_parc_"
)

// Dir is one snapshot archive directory.
type Dir struct {
	path    string
	current models.MonthTag
}

// Option is a functional option for configuring Dir.
type Option func(*Dir)

// WithToday anchors the rolling window at the given date's month.
func WithToday(today time.Time) Option {
	return func(d *Dir) {
		d.current = models.TagFor(today)
	}
}

// New opens an archive directory.
func New(path string, opts ...Option) *Dir {
	d := &Dir{
		path:    path,
		current: models.TagFor(time.Now()),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Current returns the anchor month.
func (d *Dir) Current() models.MonthTag { return d.current }

// Path resolves a month tag to a snapshot file. The current month maps
// to dadosr.csv; archived months prefer the partial export over the
// archived one when both exist. Months outside the rolling window or
// without a file yield an error wrapping os.ErrNotExist.
func (d *Dir) Path(tag models.MonthTag) (string, error) {
	if tag == d.current {
		p := filepath.Join(d.path, CurrentFile)
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("current snapshot %s: %w", CurrentFile, os.ErrNotExist)
	}

	if d.tagYear(tag.Month) != tag.Year {
		return "", fmt.Errorf("month %s outside the rolling archive window: %w", tag, os.ErrNotExist)
	}

	for _, prefix := range []string{PartialPrefix, ArchivePrefix} {
		p := filepath.Join(d.path, prefix+tag.Abbrev()+".csv")
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}
	return "", fmt.Errorf("no snapshot for %s: %w", tag, os.ErrNotExist)
}

// Months lists the month tags with a resolvable snapshot, ascending.
func (d *Dir) Months() ([]models.MonthTag, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive dir: %w", err)
	}

	seen := map[models.MonthTag]bool{}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		tag, ok := d.tagFor(e.Name())
		if ok {
			seen[tag] = true
		}
	}

	tags := make([]models.MonthTag, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Slice(tags, func(i, j int) bool { return tags[i].Before(tags[j]) })
	return tags, nil
}

// tagFor maps a file name onto its month tag.
func (d *Dir) tagFor(name string) (models.MonthTag, bool) {
	if name == CurrentFile {
		return d.current, true
	}

	var abbrev string
	switch {
	case strings.HasPrefix(name, ArchivePrefix):
		abbrev = strings.TrimSuffix(strings.TrimPrefix(name, ArchivePrefix), ".csv")
	case strings.HasPrefix(name, PartialPrefix):
		abbrev = strings.TrimSuffix(strings.TrimPrefix(name, PartialPrefix), ".csv")
	default:
		return models.MonthTag{}, false
	}

	month, ok := models.ParseMonthAbbrev(abbrev)
	if !ok {
		return models.MonthTag{}, false
	}
	return models.MonthTag{Year: d.tagYear(month), Month: month}, true
}

// tagYear infers the year of an archived month inside the rolling
// window.
func (d *Dir) tagYear(month time.Month) int {
	if month <= d.current.Month {
		return d.current.Year
	}
	return d.current.Year - 1
}
