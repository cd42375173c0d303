// Package billing computes the projects eligible for invoicing in a
// given calendar month.
//
// Eligibility depends on the billing code: codes billed at project start
// look at the start date, end-billed codes at the due or end date
// depending on closure, and engagements bill 30 days after their due
// date.
package billing

import (
	"time"

	"github.com/farolhq/farol/pkg/models"
)

// EngagementLag is the invoicing delay applied to ENGAJAMENTO projects.
const EngagementLag = 30 * 24 * time.Hour

// DateLayout is the rendering format for billing dates.
const DateLayout = "02/01/2006"

// Analyzer computes billing-due projects.
type Analyzer struct {
	month models.MonthTag
	today time.Time
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMonth sets the billing window; when absent the window is derived
// from the injected today.
func WithMonth(m models.MonthTag) Option {
	return func(a *Analyzer) {
		a.month = m
	}
}

// WithToday injects the reference date.
func WithToday(today time.Time) Option {
	return func(a *Analyzer) {
		a.today = today
	}
}

// New creates a billing-due analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{today: time.Now()}
	for _, opt := range opts {
		opt(a)
	}
	if a.month.IsZero() {
		a.month = models.TagFor(a.today)
	}
	return a
}

// Record is one billing-due project with its governing date.
type Record struct {
	models.ProjectRecord
	BillingDate    time.Time `json:"billing_date"`
	BillingDateStr string    `json:"billing_date_str"`
}

// Analysis is the billing-due result for one month.
type Analysis struct {
	Month   models.MonthTag `json:"month"`
	Total   int             `json:"total"`
	Records []Record        `json:"records"`
}

// Analyze scans the snapshot for projects billable in the configured
// month. Records of the excluded specialist never bill here.
func (a *Analyzer) Analyze(snap *models.Snapshot) *Analysis {
	analysis := &Analysis{Month: a.month}

	for i := range snap.Records {
		r := &snap.Records[i]
		if r.HasExcludedSpecialist() {
			continue
		}

		date, due := a.billingDate(r)
		if !due {
			continue
		}

		analysis.Records = append(analysis.Records, Record{
			ProjectRecord:  *r,
			BillingDate:    date,
			BillingDateStr: date.Format(DateLayout),
		})
	}

	analysis.Total = len(analysis.Records)
	return analysis
}

// billingDate returns the governing date when the record bills in the
// configured month.
func (a *Analyzer) billingDate(r *models.ProjectRecord) (time.Time, bool) {
	switch r.BillingType {
	case models.BillingPrime, models.BillingPlus, models.BillingInicio:
		if a.month.Contains(r.StartDate) {
			return r.StartDate, true
		}

	case models.BillingTermino:
		if r.Status.IsDelivered() {
			if a.month.Contains(r.EndDate) {
				return r.EndDate, true
			}
		} else if a.month.Contains(r.DueDate) {
			return r.DueDate, true
		}

	case models.BillingEngajamento:
		if r.HasDueDate() {
			shifted := r.DueDate.Add(EngagementLag)
			if a.month.Contains(shifted) {
				return shifted, true
			}
		}
	}

	// FEOP, EAN, UNMAPPED, and the legacy FTOP artifact never bill.
	return time.Time{}, false
}
