// Package report assembles the dashboard report structures from the KPI
// engines.
package report

import (
	"context"
	"time"

	"github.com/farolhq/farol/pkg/analyzer/active"
	"github.com/farolhq/farol/pkg/analyzer/critical"
	"github.com/farolhq/farol/pkg/analyzer/delivery"
	"github.com/farolhq/farol/pkg/analyzer/occupancy"
	"github.com/farolhq/farol/pkg/annotations"
	"github.com/farolhq/farol/pkg/config"
	"github.com/farolhq/farol/pkg/models"
	"github.com/farolhq/farol/pkg/stats"
)

// KPIs is the headline number strip of the snapshot report.
type KPIs struct {
	Active       int     `json:"active"`
	Critical     int     `json:"critical"`
	Closed       int     `json:"closed"`
	AvgHours     float64 `json:"avg_hours"`
	DeliveryRate int     `json:"delivery_rate"`
	AvgLifetime  float64 `json:"avg_lifetime"`
}

// SnapshotReport is the full single-snapshot dashboard payload.
type SnapshotReport struct {
	Tag             models.MonthTag               `json:"tag"`
	KPIs            KPIs                          `json:"kpis"`
	Active          []annotations.AnnotatedRecord `json:"active"`
	Critical        []critical.Record             `json:"critical"`
	Closed          []models.ProjectRecord        `json:"closed"`
	DeliveryPerf    []models.ProjectRecord        `json:"delivery_perf"`
	Risk            []models.ProjectRecord        `json:"risk"`
	ByStatus        map[models.Status]int         `json:"by_status"`
	Specialists     map[string]int                `json:"specialists"`
	AccountManagers map[string]int                `json:"account_managers"`
	SquadOccupancy  []occupancy.SquadOccupancy    `json:"squad_occupancy"`
	Warnings        []string                      `json:"warnings,omitempty"`
}

// Builder assembles snapshot reports.
type Builder struct {
	cfg    *config.Config
	today  time.Time
	joiner *annotations.Joiner
}

// Option is a functional option for configuring Builder.
type Option func(*Builder)

// WithToday injects the reference date.
func WithToday(today time.Time) Option {
	return func(b *Builder) {
		b.today = today
	}
}

// WithConfig sets the capacity and fiscal configuration.
func WithConfig(cfg *config.Config) Option {
	return func(b *Builder) {
		b.cfg = cfg
	}
}

// WithAnnotations sets the annotation store join.
func WithAnnotations(store annotations.Store) Option {
	return func(b *Builder) {
		b.joiner = annotations.NewJoiner(store)
	}
}

// NewBuilder creates a report builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		cfg:    config.DefaultConfig(),
		today:  time.Now(),
		joiner: annotations.NewJoiner(nil),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build runs the single-snapshot KPI catalogue over the snapshot,
// optionally joined with two prior snapshots for the lifetime view
// (pass nil when unavailable).
func (b *Builder) Build(ctx context.Context, snap *models.Snapshot, prior ...*models.Snapshot) *SnapshotReport {
	act := active.New().Analyze(snap)
	crit := critical.New(critical.WithToday(b.today)).Analyze(snap)
	occ := occupancy.New(occupancy.WithCapacity(b.cfg.Capacity)).Analyze(snap)
	perf := delivery.New(delivery.WithFiscalConfig(b.cfg.Fiscal)).Analyze(snap)

	lifetimeSnaps := append([]*models.Snapshot{snap}, prior...)
	lifetime := delivery.Lifetime(lifetimeSnaps...)

	annotated, warns := b.joiner.Join(ctx, act.Records)

	rep := &SnapshotReport{
		Tag:             snap.Tag,
		Active:          annotated,
		Critical:        crit.Records,
		Closed:          b.closedRecords(snap),
		DeliveryPerf:    perf.CompletedList,
		Risk:            b.riskRecords(act.Records),
		ByStatus:        act.ByStatus,
		Specialists:     act.BySpecialist,
		AccountManagers: act.ByAccountManager,
		SquadOccupancy:  occ.Squads,
		Warnings:        append(append([]string(nil), snap.Warnings...), warns...),
	}

	rep.KPIs = KPIs{
		Active:       act.Total,
		Critical:     crit.Total,
		Closed:       len(rep.Closed),
		AvgHours:     b.avgWorkedHours(act.Records),
		DeliveryRate: perf.SuccessRate,
		AvgLifetime:  lifetime.MeanDays,
	}
	return rep
}

// closedRecords collects the snapshot's closed-set records.
func (b *Builder) closedRecords(snap *models.Snapshot) []models.ProjectRecord {
	var out []models.ProjectRecord
	for _, r := range snap.Records {
		if r.Status.IsClosed() {
			out = append(out, r)
		}
	}
	return out
}

// riskRecords lists active projects whose due date falls inside the
// near window: not yet critical, but on the watch list.
func (b *Builder) riskRecords(records []models.ProjectRecord) []models.ProjectRecord {
	day := time.Date(b.today.Year(), b.today.Month(), b.today.Day(), 0, 0, 0, 0, b.today.Location())
	horizon := day.Add(annotations.NearWindow)

	var out []models.ProjectRecord
	for _, r := range records {
		if !r.HasDueDate() {
			continue
		}
		due := time.Date(r.DueDate.Year(), r.DueDate.Month(), r.DueDate.Day(), 0, 0, 0, 0, day.Location())
		if !due.Before(day) && !due.After(horizon) {
			out = append(out, r)
		}
	}
	return out
}

func (b *Builder) avgWorkedHours(records []models.ProjectRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	var sum float64
	for _, r := range records {
		sum += r.WorkedHours
	}
	return stats.Round1(sum / float64(len(records)))
}
