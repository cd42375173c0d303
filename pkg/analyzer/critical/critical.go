// Package critical flags active projects that need attention: blocked
// status, negative remaining hours, or a due date already behind us.
package critical

import (
	"strings"
	"time"

	"github.com/farolhq/farol/pkg/analyzer/active"
	"github.com/farolhq/farol/pkg/models"
)

// Reason labels, concatenated with "; " in trigger order.
const (
	ReasonBlocked    = "Blocked"
	ReasonOverBudget = "Over-budget"
	ReasonDeadline   = "Deadline passed"
)

// Analyzer detects critical projects.
type Analyzer struct {
	today  time.Time
	filter active.Filter
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithToday injects the reference date. Required for reproducible runs.
func WithToday(today time.Time) Option {
	return func(a *Analyzer) {
		a.today = today
	}
}

// WithFilter restricts the analysis.
func WithFilter(f active.Filter) Option {
	return func(a *Analyzer) {
		a.filter = f
	}
}

// New creates a critical-projects analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{today: time.Now()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Record is one critical project with the conditions that fired.
type Record struct {
	models.ProjectRecord
	Reason string `json:"reason"`
}

// Analysis is the critical-projects result.
type Analysis struct {
	Total   int      `json:"total"`
	Records []Record `json:"records"`
}

// Analyze scans the snapshot for critical projects. Only active records
// are considered; each hit carries a reason string naming every
// triggered condition.
func (a *Analyzer) Analyze(snap *models.Snapshot) *Analysis {
	analysis := &Analysis{}

	for i := range snap.Records {
		r := &snap.Records[i]
		if !r.IsActive() || !a.filter.Match(r) {
			continue
		}

		var reasons []string
		if r.Status == models.StatusBlocked {
			reasons = append(reasons, ReasonBlocked)
		}
		if r.RemainingHours < 0 {
			reasons = append(reasons, ReasonOverBudget)
		}
		if r.HasDueDate() && r.DueDate.Before(truncateDay(a.today)) {
			reasons = append(reasons, ReasonDeadline)
		}

		if len(reasons) == 0 {
			continue
		}

		analysis.Records = append(analysis.Records, Record{
			ProjectRecord: *r,
			Reason:        strings.Join(reasons, "; "),
		})
	}

	analysis.Total = len(analysis.Records)
	return analysis
}

// truncateDay drops the time of day so a due date of today is not
// counted as passed even when it carries an earlier clock time.
func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
