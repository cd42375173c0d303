// Package delivery measures delivery performance over the fiscal
// quarter and project lifetime statistics for the dashboard.
package delivery

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/farolhq/farol/pkg/config"
	"github.com/farolhq/farol/pkg/models"
	"github.com/farolhq/farol/pkg/stats"
)

// MaxLifetimeDays caps plausible project durations; anything longer is a
// data artifact and is dropped from averages.
const MaxLifetimeDays = 365

// Analyzer computes fiscal-window delivery performance.
type Analyzer struct {
	windowStart time.Time
	windowEnd   time.Time
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithWindow overrides the fiscal window.
func WithWindow(start, end time.Time) Option {
	return func(a *Analyzer) {
		a.windowStart = start
		a.windowEnd = end
	}
}

// WithFiscalConfig takes the window from configuration; invalid bounds
// keep the defaults.
func WithFiscalConfig(fc config.FiscalConfig) Option {
	return func(a *Analyzer) {
		if start, err := time.Parse("2006-01-02", fc.QuarterStart); err == nil {
			a.windowStart = start
		}
		if end, err := time.Parse("2006-01-02", fc.QuarterEnd); err == nil {
			a.windowEnd = end
		}
	}
}

// New creates a delivery analyzer with the documented fiscal Q4 window.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		windowStart: time.Date(2025, time.April, 1, 0, 0, 0, 0, time.UTC),
		windowEnd:   time.Date(2025, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analysis is the fiscal-window performance result.
type Analysis struct {
	WindowStart     time.Time              `json:"window_start"`
	WindowEnd       time.Time              `json:"window_end"`
	Predicted       int                    `json:"predicted"`
	Completed       int                    `json:"completed"`
	OnMonth         int                    `json:"on_month"`
	SuccessRate     int                    `json:"success_rate"`
	AverageLifetime float64                `json:"average_lifetime_days"`
	PredictedList   []models.ProjectRecord `json:"predicted_records"`
	CompletedList   []models.ProjectRecord `json:"completed_records"`
}

// Analyze computes predicted versus completed deliveries inside the
// fiscal window and the success rate of on-month closures.
func (a *Analyzer) Analyze(snap *models.Snapshot) *Analysis {
	analysis := &Analysis{WindowStart: a.windowStart, WindowEnd: a.windowEnd}

	var lifetimes []float64
	for i := range snap.Records {
		r := &snap.Records[i]

		if r.HasDueDate() && a.inWindow(r.DueDate) {
			analysis.PredictedList = append(analysis.PredictedList, *r)
		}

		if !r.Status.IsDelivered() || !r.HasEndDate() || !a.inWindow(r.EndDate) {
			continue
		}
		analysis.CompletedList = append(analysis.CompletedList, *r)

		if r.HasDueDate() &&
			r.EndDate.Year() == r.DueDate.Year() && r.EndDate.Month() == r.DueDate.Month() {
			analysis.OnMonth++
		}

		// Lifetime averages only count deliveries that met their due
		// date, inside the plausible duration range.
		if r.HasStartDate() && r.HasDueDate() && !r.EndDate.After(r.DueDate) {
			days := r.EndDate.Sub(r.StartDate).Hours() / 24
			if days >= 0 && days <= MaxLifetimeDays {
				lifetimes = append(lifetimes, days)
			}
		}
	}

	analysis.Predicted = len(analysis.PredictedList)
	analysis.Completed = len(analysis.CompletedList)
	if analysis.Predicted > 0 {
		analysis.SuccessRate = int(math.Round(float64(analysis.OnMonth) / float64(analysis.Predicted) * 100))
	}
	analysis.AverageLifetime = stats.Round1(stats.Mean(lifetimes))

	return analysis
}

func (a *Analyzer) inWindow(d time.Time) bool {
	day := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(a.windowStart) && !day.After(a.windowEnd)
}

// LifetimeBucket is one histogram bar of the lifetime distribution.
type LifetimeBucket struct {
	Label string `json:"label"`
	Min   int    `json:"min_days"`
	Max   int    `json:"max_days"` // -1 for the open-ended bucket
	Count int    `json:"count"`
}

// LifetimeRow is one finished project in the lifetime view.
type LifetimeRow struct {
	Number      int     `json:"number"`
	ProjectName string  `json:"project_name"`
	Squad       string  `json:"squad"`
	Days        float64 `json:"days"`
}

// LifetimeAnalysis is the dashboard lifetime view computed over the
// current snapshot plus up to two prior months.
type LifetimeAnalysis struct {
	Projects []LifetimeRow    `json:"projects"`
	MeanDays float64          `json:"mean_days"`
	StdDev   float64          `json:"stddev_days"`
	Buckets  []LifetimeBucket `json:"buckets"`
}

// Lifetime computes the average project lifetime and its distribution.
// Snapshots are passed newest first; when a project appears in several
// months the newest record wins.
func Lifetime(snaps ...*models.Snapshot) *LifetimeAnalysis {
	seen := map[int]bool{}
	analysis := &LifetimeAnalysis{
		Buckets: []LifetimeBucket{
			{Label: "0-30", Min: 0, Max: 30},
			{Label: "31-60", Min: 31, Max: 60},
			{Label: "61-90", Min: 61, Max: 90},
			{Label: "91-180", Min: 91, Max: 180},
			{Label: "181-365", Min: 181, Max: 365},
			{Label: "365+", Min: 366, Max: -1},
		},
	}

	var days []float64
	for _, snap := range snaps {
		if snap == nil {
			continue
		}
		for i := range snap.Records {
			r := &snap.Records[i]
			if seen[r.Number] || !r.HasStartDate() || !r.HasEndDate() {
				continue
			}
			seen[r.Number] = true

			d := r.EndDate.Sub(r.StartDate).Hours() / 24
			if d < 0 {
				continue
			}
			days = append(days, d)
			analysis.Projects = append(analysis.Projects, LifetimeRow{
				Number:      r.Number,
				ProjectName: r.ProjectName,
				Squad:       r.Squad,
				Days:        stats.Round1(d),
			})

			whole := int(d)
			for b := range analysis.Buckets {
				bucket := &analysis.Buckets[b]
				if whole >= bucket.Min && (bucket.Max < 0 || whole <= bucket.Max) {
					bucket.Count++
					break
				}
			}
		}
	}

	sort.Slice(analysis.Projects, func(i, j int) bool {
		return analysis.Projects[i].Days > analysis.Projects[j].Days
	})
	analysis.MeanDays = stats.Round1(stats.Mean(days))
	analysis.StdDev = stats.Round1(stats.StdDev(days))
	return analysis
}

// String renders a bucket range for tabular output.
func (b LifetimeBucket) String() string {
	if b.Max < 0 {
		return fmt.Sprintf("%d+ days", b.Min)
	}
	return fmt.Sprintf("%d-%d days", b.Min, b.Max)
}
