// Package history builds the historical period report: consecutive
// monthly snapshots combined into per-month KPIs and a period
// aggregation, with incremental-hours reconciliation between months.
package history

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/farolhq/farol/pkg/config"
	"github.com/farolhq/farol/pkg/models"
	"github.com/farolhq/farol/pkg/stats"
	"github.com/sourcegraph/conc/pool"
)

// SnapshotSource resolves a month tag to its canonical snapshot.
// Implementations are expected to be safe for concurrent use; months of
// a period load in parallel.
type SnapshotSource interface {
	Resolve(ctx context.Context, tag models.MonthTag) (*models.Snapshot, error)
}

// ProgressFunc is called once per month as snapshots finish loading.
type ProgressFunc func()

// Analyzer assembles period reports.
type Analyzer struct {
	source     SnapshotSource
	cfg        *config.Config
	onProgress ProgressFunc
	maxWorkers int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithConfig sets the outlier and validated-override configuration.
func WithConfig(cfg *config.Config) Option {
	return func(a *Analyzer) {
		a.cfg = cfg
	}
}

// WithProgress sets a per-month progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(a *Analyzer) {
		a.onProgress = fn
	}
}

// WithMaxWorkers caps the parallel snapshot loads.
func WithMaxWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.maxWorkers = n
		}
	}
}

// New creates a period analyzer over the given snapshot source.
func New(source SnapshotSource, opts ...Option) *Analyzer {
	a := &Analyzer{
		source:     source,
		cfg:        config.DefaultConfig(),
		maxWorkers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// PeriodReport combines the months from start through end into one
// report. Months whose snapshot cannot be resolved are skipped with a
// note; the report is built from whatever months load.
func (a *Analyzer) PeriodReport(ctx context.Context, start, end models.MonthTag) (*PeriodReport, error) {
	months := start.Range(end)
	if len(months) == 0 {
		return nil, fmt.Errorf("invalid period %s..%s", start, end)
	}

	report := &PeriodReport{
		Period: PeriodInfo{
			StartMonth: start,
			EndMonth:   end,
			Label:      periodLabel(start, end),
		},
	}

	// The month before the period serves as the incremental baseline
	// for the first month; loaded alongside the period months.
	loadTags := append([]models.MonthTag{start.Prev()}, months...)
	snaps := a.loadAll(ctx, loadTags)

	baseline := snaps[start.Prev()]
	if baseline == nil {
		report.Notes = append(report.Notes,
			fmt.Sprintf("no snapshot for %s; first month counts total worked hours", start.Prev()))
	}

	prior := baseline
	for _, tag := range months {
		snap := snaps[tag]
		if snap == nil {
			report.Notes = append(report.Notes, fmt.Sprintf("missing snapshot for %s; month skipped", tag))
			continue
		}

		detail := a.consolidateMonth(snap, prior)
		report.Months = append(report.Months, detail)
		prior = snap
	}

	a.aggregate(report)
	return report, nil
}

// loadAll resolves the given tags in parallel and returns the resolved
// snapshots keyed by tag. Unresolvable months map to nil.
func (a *Analyzer) loadAll(ctx context.Context, tags []models.MonthTag) map[models.MonthTag]*models.Snapshot {
	type loaded struct {
		tag  models.MonthTag
		snap *models.Snapshot
	}

	results := make([]loaded, len(tags))
	p := pool.New().WithMaxGoroutines(a.maxWorkers)
	for i, tag := range tags {
		p.Go(func() {
			snap, err := a.source.Resolve(ctx, tag)
			if err != nil || snap.Empty() {
				snap = nil
			}
			results[i] = loaded{tag: tag, snap: snap}
			if a.onProgress != nil {
				a.onProgress()
			}
		})
	}
	p.Wait()

	out := make(map[models.MonthTag]*models.Snapshot, len(results))
	for _, l := range results {
		out[l.tag] = l.snap
	}
	return out
}

// consolidateMonth computes the KPI set of one month against its prior
// snapshot.
func (a *Analyzer) consolidateMonth(snap, prior *models.Snapshot) MonthDetail {
	detail := MonthDetail{
		Tag:                 snap.Tag,
		Label:               snap.Tag.Abbrev(),
		SquadDistribution:   map[string]int{},
		BillingDistribution: map[models.BillingType]int{},
	}

	detail.Increments = Increments(prior, snap, a.cfg.OutlierSet(snap.Tag.String()))
	detail.IncrementalHours = stats.Round1(TotalIncrement(detail.Increments))

	var lifetimes []float64
	for i := range snap.Records {
		r := &snap.Records[i]

		if snap.Tag.Contains(r.EndDate) && r.Status.IsDelivered() {
			detail.Computed.Closed++
			if r.HasDueDate() {
				detail.WithDeadline++
				if onTime(r) {
					detail.Computed.OnTime++
				} else {
					detail.Computed.OffTime++
				}
			} else {
				detail.Computed.OffTime++
			}
			if r.HasStartDate() {
				if days := r.EndDate.Sub(r.StartDate).Hours() / 24; days >= 0 && days <= 365 {
					lifetimes = append(lifetimes, days)
				}
			}
		}

		if snap.Tag.Contains(r.StartDate) {
			detail.Computed.New++
			if bucket := SquadBucket(r.Squad); bucket != "" {
				detail.SquadDistribution[bucket]++
			}

			if !strings.EqualFold(r.Client, ExcludedBillingClient) {
				bt := r.BillingType
				if bt == models.BillingEngajamento {
					// Engagements invoice at term for reporting purposes.
					bt = models.BillingTermino
				}
				detail.BillingDistribution[bt]++
			}
		}
	}
	detail.Computed.AvgLifetimeDays = stats.Round1(stats.Mean(lifetimes))

	detail.Figures = detail.Computed
	if a.cfg.Validated.Enabled {
		if v, ok := a.cfg.Validated.Months[detail.Label]; ok {
			detail.Figures = Figures{
				Closed:          v.Closed,
				New:             v.New,
				OnTime:          v.OnTime,
				OffTime:         v.OffTime,
				AvgLifetimeDays: v.AvgLifetimeDays,
			}
			detail.Overridden = true
		}
	}

	if detail.Closed > 0 {
		detail.OnTimeRate = stats.Round1(float64(detail.OnTime) / float64(detail.Closed) * 100)
	}

	return detail
}

// aggregate sums the monthly details into the overall period KPIs and
// runs the squad-distribution reconciliation when the bucketed counts
// drift from the new-project total.
func (a *Analyzer) aggregate(report *PeriodReport) {
	overall := &report.Overall
	overall.BillingDistribution = map[models.BillingType]int{}
	overall.SquadDistribution = map[string]int{}

	var lifetimeSum float64
	var lifetimeMonths int
	for i := range report.Months {
		m := &report.Months[i]
		overall.Closed += m.Closed
		overall.New += m.New
		overall.OnTime += m.OnTime
		overall.WithDeadline += m.WithDeadline
		overall.WorkedHours += m.IncrementalHours
		if m.AvgLifetimeDays > 0 {
			lifetimeSum += m.AvgLifetimeDays
			lifetimeMonths++
		}
		for squad, n := range m.SquadDistribution {
			overall.SquadDistribution[squad] += n
		}
		for bt, n := range m.BillingDistribution {
			overall.BillingDistribution[bt] += n
		}
	}

	overall.WorkedHours = stats.Round1(overall.WorkedHours)
	if overall.Closed > 0 {
		overall.OnTimeRate = stats.Round1(float64(overall.OnTime) / float64(overall.Closed) * 100)
	}
	if overall.New > 0 {
		overall.Efficiency = stats.Round1(float64(overall.Closed) / float64(overall.New) * 100)
	}
	if lifetimeMonths > 0 {
		overall.AvgLifetime = stats.Round1(lifetimeSum / float64(lifetimeMonths))
	}

	a.reconcileSquads(report)
}

// reconcileSquads re-derives the period squad distribution directly from
// the per-month computed new counts when the bucketed sum disagrees with
// the total by more than the tolerance. Unbucketed squads surface under
// OTHER so the distribution re-adds to the total.
func (a *Analyzer) reconcileSquads(report *PeriodReport) {
	var bucketed int
	for _, n := range report.Overall.SquadDistribution {
		bucketed += n
	}

	var computedNew int
	for i := range report.Months {
		computedNew += report.Months[i].Computed.New
	}

	diff := computedNew - bucketed
	if diff < 0 {
		diff = -diff
	}
	if diff <= ReconcileTolerance {
		return
	}

	report.Overall.SquadDistribution[BucketOther] += computedNew - bucketed
	report.Notes = append(report.Notes, fmt.Sprintf(
		"squad distribution reconciled: %d new project(s) outside the canonical buckets", computedNew-bucketed))
}

// SquadBucket maps a raw squad onto the three canonical distribution
// buckets by case-insensitive substring match. Returns "" for no match.
func SquadBucket(squad string) string {
	s := strings.ToLower(squad)
	switch {
	case strings.Contains(s, "azure"):
		return BucketAzure
	case strings.Contains(s, "m365"), strings.Contains(s, "365"):
		return BucketM365
	case strings.Contains(s, "data"), strings.Contains(s, "power"):
		return BucketDataPower
	}
	return ""
}

func onTime(r *models.ProjectRecord) bool {
	return r.EndDate.Year() == r.DueDate.Year() && r.EndDate.Month() == r.DueDate.Month()
}

func periodLabel(start, end models.MonthTag) string {
	if start == end {
		return fmt.Sprintf("%s/%d", start.Abbrev(), start.Year)
	}
	return fmt.Sprintf("%s/%d a %s/%d", start.Abbrev(), start.Year, end.Abbrev(), end.Year)
}
