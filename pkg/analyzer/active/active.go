// Package active computes the active-projects view of a snapshot:
// open records, the in-service subset, and the grouping breakdowns used
// by the dashboard.
package active

import (
	"github.com/farolhq/farol/pkg/models"
	"github.com/samber/lo"
)

// Filter restricts an analysis to one squad and/or billing code.
// Zero values mean "no restriction".
type Filter struct {
	Squad       string
	BillingType models.BillingType
}

// Match reports whether the record passes the filter.
func (f Filter) Match(r *models.ProjectRecord) bool {
	if f.Squad != "" && r.Squad != f.Squad {
		return false
	}
	if f.BillingType != "" && r.BillingType != f.BillingType {
		return false
	}
	return true
}

// Analyzer computes active-project KPIs.
type Analyzer struct {
	filter Filter
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithFilter restricts the analysis.
func WithFilter(f Filter) Option {
	return func(a *Analyzer) {
		a.filter = f
	}
}

// New creates an active-projects analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analysis is the active-projects result.
type Analysis struct {
	Total            int                    `json:"total"`
	InService        int                    `json:"in_service"`
	Records          []models.ProjectRecord `json:"records"`
	InServiceList    []models.ProjectRecord `json:"in_service_records"`
	ByStatus         map[models.Status]int  `json:"by_status"`
	BySpecialist     map[string]int         `json:"specialists"`
	ByAccountManager map[string]int         `json:"account_managers"`
}

// Analyze returns the active records of the snapshot plus breakdowns.
func (a *Analyzer) Analyze(snap *models.Snapshot) *Analysis {
	records := lo.Filter(snap.Records, func(r models.ProjectRecord, _ int) bool {
		return r.IsActive() && a.filter.Match(&r)
	})

	inService := lo.Filter(records, func(r models.ProjectRecord, _ int) bool {
		return r.Status == models.StatusInService || r.Status == models.StatusNew
	})

	return &Analysis{
		Total:         len(records),
		InService:     len(inService),
		Records:       records,
		InServiceList: inService,
		ByStatus: lo.CountValuesBy(records, func(r models.ProjectRecord) models.Status {
			return r.Status
		}),
		BySpecialist: lo.CountValuesBy(records, func(r models.ProjectRecord) string {
			return r.Specialist
		}),
		ByAccountManager: lo.CountValuesBy(records, func(r models.ProjectRecord) string {
			return r.AccountManager
		}),
	}
}
