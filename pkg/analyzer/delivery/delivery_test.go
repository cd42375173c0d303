package delivery

import (
	"testing"
	"time"

	"github.com/farolhq/farol/pkg/config"
	"github.com/farolhq/farol/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAnalyzeSuccessRate(t *testing.T) {
	var records []models.ProjectRecord

	// Ten projects due inside the fiscal window. The first six closed in
	// the window; four of those closed in the same month as their due
	// date.
	for i := 0; i < 10; i++ {
		r := models.ProjectRecord{
			Number:    100 + i,
			DueDate:   date(2025, time.May, 10),
			StartDate: date(2025, time.February, 1),
		}
		switch {
		case i < 4:
			r.Status = models.StatusClosed
			r.EndDate = date(2025, time.May, 5+i)
		case i < 6:
			r.Status = models.StatusResolved
			r.EndDate = date(2025, time.June, 20)
		default:
			r.Status = models.StatusInService
		}
		records = append(records, r)
	}

	analysis := New().Analyze(&models.Snapshot{Records: records})

	if analysis.Predicted != 10 {
		t.Errorf("Predicted = %d, want 10", analysis.Predicted)
	}
	if analysis.Completed != 6 {
		t.Errorf("Completed = %d, want 6", analysis.Completed)
	}
	if analysis.OnMonth != 4 {
		t.Errorf("OnMonth = %d, want 4", analysis.OnMonth)
	}
	if analysis.SuccessRate != 40 {
		t.Errorf("SuccessRate = %d, want 40", analysis.SuccessRate)
	}
}

func TestAnalyzeWindowBounds(t *testing.T) {
	snap := &models.Snapshot{Records: []models.ProjectRecord{
		{Number: 1, DueDate: date(2025, time.April, 1)},
		{Number: 2, DueDate: date(2025, time.June, 30)},
		{Number: 3, DueDate: date(2025, time.March, 31)},
		{Number: 4, DueDate: date(2025, time.July, 1)},
	}}

	analysis := New().Analyze(snap)
	if analysis.Predicted != 2 {
		t.Errorf("Predicted = %d, both window edges are inclusive", analysis.Predicted)
	}
}

func TestAnalyzeLifetimeFilters(t *testing.T) {
	snap := &models.Snapshot{Records: []models.ProjectRecord{
		// Met the due date, 30 days: counts.
		{Number: 1, Status: models.StatusClosed,
			StartDate: date(2025, time.April, 1), EndDate: date(2025, time.May, 1), DueDate: date(2025, time.May, 10)},
		// Finished after the due date: excluded from the average.
		{Number: 2, Status: models.StatusClosed,
			StartDate: date(2025, time.April, 1), EndDate: date(2025, time.May, 21), DueDate: date(2025, time.May, 10)},
		// Implausible duration: excluded.
		{Number: 3, Status: models.StatusClosed,
			StartDate: date(2023, time.January, 1), EndDate: date(2025, time.May, 2), DueDate: date(2025, time.June, 1)},
	}}

	analysis := New().Analyze(snap)

	if analysis.Completed != 3 {
		t.Errorf("Completed = %d, want 3", analysis.Completed)
	}
	if analysis.AverageLifetime != 30.0 {
		t.Errorf("AverageLifetime = %v, only the on-time plausible delivery counts", analysis.AverageLifetime)
	}
}

func TestWithFiscalConfig(t *testing.T) {
	a := New(WithFiscalConfig(config.FiscalConfig{
		QuarterStart: "2025-07-01",
		QuarterEnd:   "2025-09-30",
	}))
	if !a.windowStart.Equal(date(2025, time.July, 1)) || !a.windowEnd.Equal(date(2025, time.September, 30)) {
		t.Errorf("window = %v..%v", a.windowStart, a.windowEnd)
	}

	// Invalid bounds keep the defaults.
	a = New(WithFiscalConfig(config.FiscalConfig{QuarterStart: "bogus", QuarterEnd: ""}))
	if !a.windowStart.Equal(date(2025, time.April, 1)) {
		t.Errorf("invalid config should keep the default window, got %v", a.windowStart)
	}
}

func TestLifetime(t *testing.T) {
	current := &models.Snapshot{Records: []models.ProjectRecord{
		{Number: 1, StartDate: date(2025, time.April, 1), EndDate: date(2025, time.April, 21)},
		{Number: 2, StartDate: date(2025, time.January, 1), EndDate: date(2025, time.April, 11)},
		{Number: 3, StartDate: date(2025, time.April, 1)}, // still open
	}}
	prior := &models.Snapshot{Records: []models.ProjectRecord{
		// Same project with stale hours; the newer snapshot wins.
		{Number: 1, StartDate: date(2025, time.April, 1), EndDate: date(2025, time.June, 1)},
		{Number: 4, StartDate: date(2025, time.February, 1), EndDate: date(2025, time.February, 11)},
	}}

	analysis := Lifetime(current, prior)

	if len(analysis.Projects) != 3 {
		t.Fatalf("got %d projects, want 3", len(analysis.Projects))
	}
	// 20, 100, and 10 days; mean 43.3.
	if analysis.MeanDays != 43.3 {
		t.Errorf("MeanDays = %v, want 43.3", analysis.MeanDays)
	}

	counts := map[string]int{}
	for _, b := range analysis.Buckets {
		counts[b.Label] = b.Count
	}
	if counts["0-30"] != 2 {
		t.Errorf("bucket 0-30 = %d, want 2", counts["0-30"])
	}
	if counts["91-180"] != 1 {
		t.Errorf("bucket 91-180 = %d, want 1", counts["91-180"])
	}

	// Sorted longest first.
	if analysis.Projects[0].Days != 100.0 {
		t.Errorf("Projects[0].Days = %v, want the longest", analysis.Projects[0].Days)
	}
}

func TestLifetimeBucketString(t *testing.T) {
	b := LifetimeBucket{Min: 31, Max: 60}
	if got := b.String(); got != "31-60 days" {
		t.Errorf("String() = %q", got)
	}
	b = LifetimeBucket{Min: 366, Max: -1}
	if got := b.String(); got != "366+ days" {
		t.Errorf("String() = %q", got)
	}
}
