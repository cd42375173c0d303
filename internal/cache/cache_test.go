package cache

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/farolhq/farol/pkg/models"
)

func writeSnapshotFile(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "dadosr.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func countingLoader(calls *int) LoadFunc {
	return func(path string) (*models.Snapshot, error) {
		*calls++
		return &models.Snapshot{Records: []models.ProjectRecord{{Number: *calls}}}, nil
	}
}

func TestGetOrLoadCachesByIdentity(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir(), "a;b\n1;2\n")
	c := New(true)

	var calls int
	snap1, err := c.GetOrLoad(path, countingLoader(&calls))
	if err != nil {
		t.Fatal(err)
	}
	snap2, err := c.GetOrLoad(path, countingLoader(&calls))
	if err != nil {
		t.Fatal(err)
	}

	if calls != 1 {
		t.Errorf("loader ran %d times, want 1", calls)
	}
	if snap1 != snap2 {
		t.Error("unchanged file should return the cached snapshot")
	}

	hits, misses := c.Stats()
	if hits != 1 || misses != 1 {
		t.Errorf("Stats() = %d hits, %d misses", hits, misses)
	}
}

func TestGetOrLoadInvalidatesOnChange(t *testing.T) {
	dir := t.TempDir()
	path := writeSnapshotFile(t, dir, "a;b\n1;2\n")
	c := New(true)

	var calls int
	if _, err := c.GetOrLoad(path, countingLoader(&calls)); err != nil {
		t.Fatal(err)
	}

	// Rewrite with different content and a bumped mtime.
	if err := os.WriteFile(path, []byte("a;b\n1;2\n3;4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if _, err := c.GetOrLoad(path, countingLoader(&calls)); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("loader ran %d times, changed file must reload", calls)
	}
}

func TestGetOrLoadDisabled(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir(), "a;b\n1;2\n")
	c := New(false)

	var calls int
	for i := 0; i < 3; i++ {
		if _, err := c.GetOrLoad(path, countingLoader(&calls)); err != nil {
			t.Fatal(err)
		}
	}
	if calls != 3 {
		t.Errorf("disabled cache must always load, got %d calls", calls)
	}
}

func TestGetOrLoadMissingFile(t *testing.T) {
	c := New(true)
	_, err := c.GetOrLoad(filepath.Join(t.TempDir(), "absent.csv"), countingLoader(new(int)))
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v", err)
	}
}

func TestGetOrLoadLoadError(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir(), "a;b\n")
	c := New(true)

	boom := errors.New("boom")
	_, err := c.GetOrLoad(path, func(string) (*models.Snapshot, error) { return nil, boom })
	if !errors.Is(err, boom) {
		t.Errorf("load error = %v", err)
	}

	// Failed loads are not cached.
	var calls int
	if _, err := c.GetOrLoad(path, countingLoader(&calls)); err != nil {
		t.Fatal(err)
	}
	if calls != 1 {
		t.Error("the next load should run after a failure")
	}
}

func TestEvict(t *testing.T) {
	path := writeSnapshotFile(t, t.TempDir(), "a;b\n1;2\n")
	c := New(true)

	var calls int
	if _, err := c.GetOrLoad(path, countingLoader(&calls)); err != nil {
		t.Fatal(err)
	}
	c.Evict(path)
	if _, err := c.GetOrLoad(path, countingLoader(&calls)); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("evicted entry must reload, got %d calls", calls)
	}
}

func TestClear(t *testing.T) {
	dir := t.TempDir()
	p1 := writeSnapshotFile(t, dir, "a;b\n1;2\n")
	c := New(true)

	var calls int
	if _, err := c.GetOrLoad(p1, countingLoader(&calls)); err != nil {
		t.Fatal(err)
	}
	c.Clear()
	if _, err := c.GetOrLoad(p1, countingLoader(&calls)); err != nil {
		t.Fatal(err)
	}
	if calls != 2 {
		t.Errorf("cleared cache must reload, got %d calls", calls)
	}
}
