package annotations

import (
	"context"
	"fmt"
	"time"

	"github.com/farolhq/farol/pkg/models"
	"github.com/farolhq/farol/pkg/stats"
)

// DeadlineStatus classifies a project's position against its due date.
type DeadlineStatus string

const (
	DeadlineDelayed   DeadlineStatus = "Delayed"
	DeadlineNear      DeadlineStatus = "Near"
	DeadlineOnTime    DeadlineStatus = "OnTime"
	DeadlineUndefined DeadlineStatus = "Undefined"
)

// NearWindow is how close a due date must be to count as "near".
const NearWindow = 15 * 24 * time.Hour

// Indicator is the overall project health light.
type Indicator string

const (
	IndicatorRed    Indicator = "red"
	IndicatorYellow Indicator = "yellow"
	IndicatorGreen  Indicator = "green"
	IndicatorGray   Indicator = "gray"
)

// Progress summarizes schedule position.
type Progress struct {
	CompletionPct  float64        `json:"completion_pct"`
	DueDateStr     string         `json:"due_date_str"`
	DeadlineStatus DeadlineStatus `json:"deadline_status"`
}

// Effort summarizes hour consumption.
type Effort struct {
	EstimatedHours float64 `json:"estimated_hours"`
	WorkedHours    float64 `json:"worked_hours"`
	ConsumptionPct float64 `json:"consumption_pct"`
}

// StatusReportView is the single-project status report composition.
type StatusReportView struct {
	Record    models.ProjectRecord `json:"record"`
	Progress  Progress             `json:"progress"`
	Effort    Effort               `json:"effort"`
	Indicator Indicator            `json:"indicator"`
	Payload   *Payload             `json:"payload"`
	Warnings  []string             `json:"warnings,omitempty"`
}

// ComposeStatusReport builds the status-report view for one record,
// deriving schedule and effort health from the canonical fields.
func ComposeStatusReport(rec *models.ProjectRecord, payload *Payload, today time.Time) *StatusReportView {
	view := &StatusReportView{
		Record:  *rec,
		Payload: payload,
		Progress: Progress{
			CompletionPct:  rec.CompletionPct,
			DeadlineStatus: deadlineStatus(rec, today),
		},
		Effort: Effort{
			EstimatedHours: rec.EstimatedHours,
			WorkedHours:    rec.WorkedHours,
		},
	}
	if view.Payload == nil {
		view.Payload = &Payload{}
	}
	if rec.HasDueDate() {
		view.Progress.DueDateStr = rec.DueDate.Format("02/01/2006")
	}
	if rec.EstimatedHours > 0 {
		view.Effort.ConsumptionPct = stats.Round1(rec.WorkedHours / rec.EstimatedHours * 100)
	}

	view.Indicator = indicator(view)
	return view
}

// deadlineStatus classifies the due date against today: behind, within
// the near window, comfortably ahead, or absent.
func deadlineStatus(rec *models.ProjectRecord, today time.Time) DeadlineStatus {
	if !rec.HasDueDate() {
		return DeadlineUndefined
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	due := time.Date(rec.DueDate.Year(), rec.DueDate.Month(), rec.DueDate.Day(), 0, 0, 0, 0, today.Location())

	switch {
	case due.Before(day):
		return DeadlineDelayed
	case !due.After(day.Add(NearWindow)):
		return DeadlineNear
	default:
		return DeadlineOnTime
	}
}

// indicator derives the overall health light from schedule and effort.
func indicator(v *StatusReportView) Indicator {
	overrun := v.Effort.WorkedHours > v.Effort.EstimatedHours && v.Effort.EstimatedHours > 0

	switch {
	case v.Progress.DeadlineStatus == DeadlineDelayed || overrun:
		return IndicatorRed
	case v.Progress.DeadlineStatus == DeadlineNear &&
		(v.Progress.CompletionPct < 70 ||
			(v.Effort.ConsumptionPct >= 80 && v.Progress.CompletionPct < 70)):
		return IndicatorYellow
	case v.Progress.DeadlineStatus == DeadlineOnTime || v.Progress.DeadlineStatus == DeadlineNear:
		return IndicatorGreen
	default:
		return IndicatorGray
	}
}

// Joiner decorates records with store-backed flags.
type Joiner struct {
	store Store
}

// NewJoiner creates a joiner over the given store; a nil store degrades
// to the nop store.
func NewJoiner(store Store) *Joiner {
	if store == nil {
		store = NopStore{}
	}
	return &Joiner{store: store}
}

// AnnotatedRecord is a project record plus annotation presence flags.
type AnnotatedRecord struct {
	models.ProjectRecord
	BacklogExists bool `json:"backlog_exists"`
}

// Join decorates every record with its backlog flag. Store failures
// degrade to false and a warning; the join never fails a report.
func (j *Joiner) Join(ctx context.Context, records []models.ProjectRecord) ([]AnnotatedRecord, []string) {
	out := make([]AnnotatedRecord, 0, len(records))
	var warnings []string
	var failed int

	for _, r := range records {
		has, err := j.store.HasBacklog(ctx, r.Number)
		if err != nil {
			failed++
			has = false
		}
		out = append(out, AnnotatedRecord{ProjectRecord: r, BacklogExists: has})
	}

	if failed > 0 {
		warnings = append(warnings, joinWarning(failed))
	}
	return out, warnings
}

// Report composes the single-project status report, degrading to an
// empty payload when the store is unavailable.
func (j *Joiner) Report(ctx context.Context, rec *models.ProjectRecord, today time.Time) *StatusReportView {
	payload, err := j.store.StatusReport(ctx, rec.Number)
	view := ComposeStatusReport(rec, payload, today)
	if err != nil {
		view.Payload = &Payload{}
		view.Warnings = append(view.Warnings, "annotation store unavailable; report rendered without annotations")
	}
	return view
}

func joinWarning(failed int) string {
	return fmt.Sprintf("annotation store unavailable for %d record(s); backlog flags defaulted to false", failed)
}
