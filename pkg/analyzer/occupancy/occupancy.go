// Package occupancy computes squad capacity utilization and burn rates.
//
// Capacity is booked against adjusted remaining hours: projects that ran
// over budget are carried at a fixed fraction of their original estimate
// instead of a negative balance, so a squad's committed hours never
// shrink because a project overran.
package occupancy

import (
	"sort"

	"github.com/farolhq/farol/pkg/config"
	"github.com/farolhq/farol/pkg/models"
	"github.com/farolhq/farol/pkg/stats"
)

// Analyzer computes squad occupancy and burn rates.
type Analyzer struct {
	capacity config.CapacityConfig
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithCapacity overrides the capacity constants.
func WithCapacity(c config.CapacityConfig) Option {
	return func(a *Analyzer) {
		a.capacity = c
	}
}

// New creates an occupancy analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{capacity: config.DefaultConfig().Capacity}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SquadOccupancy is the capacity picture of one squad.
type SquadOccupancy struct {
	Squad            string  `json:"squad"`
	ProjectCount     int     `json:"project_count"`
	AdjustedHours    float64 `json:"adjusted_remaining_hours"`
	Capacity         float64 `json:"capacity"`
	OccupationPct    float64 `json:"occupation_pct"`
	AvailableHours   float64 `json:"available_hours"`
	HasNegativeHours bool    `json:"has_negative_hours"`
}

// Analysis is the occupancy result across squads.
type Analysis struct {
	Squads []SquadOccupancy `json:"squads"`
}

// Squad returns the occupancy entry for the named squad, or nil.
func (a *Analysis) Squad(name string) *SquadOccupancy {
	for i := range a.Squads {
		if a.Squads[i].Squad == name {
			return &a.Squads[i]
		}
	}
	return nil
}

// Analyze groups the snapshot's active records by squad and computes
// committed hours against capacity. Records of the excluded specialist
// are left out entirely.
func (a *Analyzer) Analyze(snap *models.Snapshot) *Analysis {
	type group struct {
		sum      float64
		count    int
		negative bool
	}
	groups := map[string]*group{}

	for i := range snap.Records {
		r := &snap.Records[i]
		if !r.IsActive() || r.HasExcludedSpecialist() {
			continue
		}

		g := groups[r.Squad]
		if g == nil {
			g = &group{}
			groups[r.Squad] = g
		}
		g.sum += a.AdjustedRemaining(r)
		g.count++
		if r.RemainingHours < 0 {
			g.negative = true
		}
	}

	analysis := &Analysis{Squads: make([]SquadOccupancy, 0, len(groups))}
	for squad, g := range groups {
		capacity := a.CapacityFor(squad)
		analysis.Squads = append(analysis.Squads, SquadOccupancy{
			Squad:            squad,
			ProjectCount:     g.count,
			AdjustedHours:    stats.Round1(g.sum),
			Capacity:         capacity,
			OccupationPct:    stats.Round1(g.sum / capacity * 100),
			AvailableHours:   stats.Round1(capacity - g.sum),
			HasNegativeHours: g.negative,
		})
	}

	sort.Slice(analysis.Squads, func(i, j int) bool {
		return analysis.Squads[i].Squad < analysis.Squads[j].Squad
	})
	return analysis
}

// AdjustedRemaining books over-budget projects at the over-budget
// fraction of their original estimate instead of a negative balance.
func (a *Analyzer) AdjustedRemaining(r *models.ProjectRecord) float64 {
	if r.RemainingHours >= 0 {
		return r.RemainingHours
	}
	return a.capacity.OverBudgetFactor * r.EstimatedHours
}

// CapacityFor returns the monthly capacity of the squad; the planning
// pseudo-squad runs at one person.
func (a *Analyzer) CapacityFor(squad string) float64 {
	if squad == models.PlanningPMO {
		return a.capacity.PlanningPMOHours
	}
	return a.capacity.SquadCapacity()
}

// BurnRate is a capacity commitment percentage.
type BurnRate struct {
	Squad         string  `json:"squad,omitempty"` // empty for global
	Rate          float64 `json:"rate"`
	AdjustedHours float64 `json:"adjusted_remaining_hours"`
	SquadCount    int     `json:"squad_count,omitempty"`
}

// SquadBurnRate computes the burn rate of one squad against the full
// squad capacity.
func (a *Analyzer) SquadBurnRate(snap *models.Snapshot, squad string) *BurnRate {
	var sum float64
	for i := range snap.Records {
		r := &snap.Records[i]
		if !r.IsActive() || r.HasExcludedSpecialist() || r.Squad != squad {
			continue
		}
		sum += a.AdjustedRemaining(r)
	}
	return &BurnRate{
		Squad:         squad,
		AdjustedHours: stats.Round1(sum),
		Rate:          stats.Round1(sum / a.capacity.SquadCapacity() * 100),
	}
}

// GlobalBurnRate computes the burn rate across all delivery squads.
// The planning pseudo-squad and the excluded specialist stay out; the
// denominator is the number of distinct active squads times the squad
// capacity.
func (a *Analyzer) GlobalBurnRate(snap *models.Snapshot) *BurnRate {
	var sum float64
	squads := map[string]bool{}

	for i := range snap.Records {
		r := &snap.Records[i]
		if !r.IsActive() || r.HasExcludedSpecialist() || r.Squad == models.PlanningPMO {
			continue
		}
		squads[r.Squad] = true
		sum += a.AdjustedRemaining(r)
	}

	br := &BurnRate{
		AdjustedHours: stats.Round1(sum),
		SquadCount:    len(squads),
	}
	if len(squads) > 0 {
		br.Rate = stats.Round1(sum / (float64(len(squads)) * a.capacity.SquadCapacity()) * 100)
	}
	return br
}
