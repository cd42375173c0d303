package history

import (
	"github.com/farolhq/farol/pkg/models"
)

// Squad bucket names used by the per-month distribution of new projects.
const (
	BucketAzure     = "AZURE"
	BucketM365      = "M365"
	BucketDataPower = "DATA_POWER"
	BucketOther     = "OTHER"
)

// ExcludedBillingClient never counts in the monthly billing distribution
// (internal projects billed to the house account).
const ExcludedBillingClient = "SOU.cloud"

// ReconcileTolerance is the allowed gap between the bucketed squad
// distribution and the new-project total before a reconciliation re-scan
// runs.
const ReconcileTolerance = 5

// Figures are the per-month KPI numbers, either computed or validated.
type Figures struct {
	Closed          int     `json:"closed"`
	New             int     `json:"new"`
	OnTime          int     `json:"on_time"`
	OffTime         int     `json:"off_time"`
	AvgLifetimeDays float64 `json:"avg_lifetime_days"`
}

// MonthDetail is the consolidated KPI set of a single month inside a
// period report.
type MonthDetail struct {
	Tag   models.MonthTag `json:"tag"`
	Label string          `json:"label"` // pt-BR month abbreviation

	Figures // effective values (validated when the override layer applies)

	// Computed always carries the values derived from the snapshots,
	// regardless of the override layer.
	Computed   Figures `json:"computed"`
	Overridden bool    `json:"overridden"`

	WithDeadline     int     `json:"with_deadline"`
	IncrementalHours float64 `json:"incremental_hours"`
	OnTimeRate       float64 `json:"on_time_rate"`

	SquadDistribution   map[string]int             `json:"squad_distribution"`
	BillingDistribution map[models.BillingType]int `json:"billing_distribution"`

	// Increments is the per-project incremental hour map backing
	// IncrementalHours. Not serialized; kept for reconciliation.
	Increments map[int]float64 `json:"-"`

	Notes []string `json:"notes,omitempty"`
}

// PeriodInfo labels the requested period.
type PeriodInfo struct {
	StartMonth models.MonthTag `json:"start_month"`
	EndMonth   models.MonthTag `json:"end_month"`
	Label      string          `json:"label"`
}

// OverallKPIs aggregates the period.
type OverallKPIs struct {
	Closed       int     `json:"closed"`
	New          int     `json:"new"`
	OnTime       int     `json:"on_time"`
	WithDeadline int     `json:"with_deadline"`
	WorkedHours  float64 `json:"worked_hours"`
	OnTimeRate   float64 `json:"on_time_rate"`
	Efficiency   float64 `json:"efficiency"`
	AvgLifetime  float64 `json:"avg_lifetime"`

	BillingDistribution map[models.BillingType]int `json:"billing_distribution"`
	SquadDistribution   map[string]int             `json:"squad_distribution"`
}

// PeriodReport is the historical report over consecutive months.
type PeriodReport struct {
	Period  PeriodInfo    `json:"period"`
	Overall OverallKPIs   `json:"kpis_overall"`
	Months  []MonthDetail `json:"monthly_details"`
	Notes   []string      `json:"notes,omitempty"`
}
