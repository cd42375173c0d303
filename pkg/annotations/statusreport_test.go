package annotations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/farolhq/farol/pkg/models"
)

var today = time.Date(2025, time.May, 15, 12, 0, 0, 0, time.UTC)

func day(m time.Month, d int) time.Time {
	return time.Date(2025, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDeadlineStatus(t *testing.T) {
	tests := []struct {
		name string
		due  time.Time
		want DeadlineStatus
	}{
		{"no due date", time.Time{}, DeadlineUndefined},
		{"yesterday", day(time.May, 14), DeadlineDelayed},
		{"today", day(time.May, 15), DeadlineNear},
		{"near edge", day(time.May, 30), DeadlineNear},
		{"past near window", day(time.May, 31), DeadlineOnTime},
		{"far", day(time.September, 1), DeadlineOnTime},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &models.ProjectRecord{DueDate: tt.due}
			if got := deadlineStatus(rec, today); got != tt.want {
				t.Errorf("deadlineStatus() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIndicator(t *testing.T) {
	tests := []struct {
		name string
		rec  models.ProjectRecord
		want Indicator
	}{
		{
			name: "delayed is red",
			rec:  models.ProjectRecord{DueDate: day(time.April, 1), CompletionPct: 90},
			want: IndicatorRed,
		},
		{
			name: "hour overrun is red",
			rec:  models.ProjectRecord{DueDate: day(time.August, 1), EstimatedHours: 40, WorkedHours: 55},
			want: IndicatorRed,
		},
		{
			name: "near and behind is yellow",
			rec:  models.ProjectRecord{DueDate: day(time.May, 20), CompletionPct: 45},
			want: IndicatorYellow,
		},
		{
			name: "near but nearly done is green",
			rec:  models.ProjectRecord{DueDate: day(time.May, 20), CompletionPct: 85},
			want: IndicatorGreen,
		},
		{
			name: "comfortable is green",
			rec:  models.ProjectRecord{DueDate: day(time.August, 1), CompletionPct: 10},
			want: IndicatorGreen,
		},
		{
			name: "no due date is gray",
			rec:  models.ProjectRecord{CompletionPct: 50},
			want: IndicatorGray,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := ComposeStatusReport(&tt.rec, nil, today)
			if view.Indicator != tt.want {
				t.Errorf("Indicator = %q, want %q", view.Indicator, tt.want)
			}
		})
	}
}

func TestComposeStatusReport(t *testing.T) {
	rec := &models.ProjectRecord{
		Number:         6889,
		EstimatedHours: 100,
		WorkedHours:    40,
		CompletionPct:  35,
		DueDate:        day(time.June, 10),
	}

	view := ComposeStatusReport(rec, &Payload{NextSteps: []string{"kickoff"}}, today)

	if view.Effort.ConsumptionPct != 40.0 {
		t.Errorf("ConsumptionPct = %v, want 40", view.Effort.ConsumptionPct)
	}
	if view.Progress.DueDateStr != "10/06/2025" {
		t.Errorf("DueDateStr = %q", view.Progress.DueDateStr)
	}
	if view.Payload.Empty() {
		t.Error("payload content lost")
	}
}

func TestComposeStatusReportZeroEstimate(t *testing.T) {
	rec := &models.ProjectRecord{WorkedHours: 10}

	view := ComposeStatusReport(rec, nil, today)
	if view.Effort.ConsumptionPct != 0 {
		t.Errorf("ConsumptionPct = %v, zero estimate must not divide", view.Effort.ConsumptionPct)
	}
	if view.Indicator == IndicatorRed {
		t.Error("worked hours without an estimate are not an overrun")
	}
}

// failStore errors on every call.
type failStore struct{}

func (failStore) HasBacklog(context.Context, int) (bool, error) {
	return false, errors.New("database locked")
}

func (failStore) StatusReport(context.Context, int) (*Payload, error) {
	return nil, errors.New("database locked")
}

// stubStore reports backlogs for a fixed set of projects.
type stubStore struct {
	backlogs map[int]bool
}

func (s *stubStore) HasBacklog(_ context.Context, n int) (bool, error) {
	return s.backlogs[n], nil
}

func (s *stubStore) StatusReport(context.Context, int) (*Payload, error) {
	return &Payload{}, nil
}

func TestJoin(t *testing.T) {
	joiner := NewJoiner(&stubStore{backlogs: map[int]bool{1: true}})

	records := []models.ProjectRecord{{Number: 1}, {Number: 2}}
	annotated, warnings := joiner.Join(context.Background(), records)

	if len(annotated) != 2 {
		t.Fatalf("got %d annotated records", len(annotated))
	}
	if !annotated[0].BacklogExists || annotated[1].BacklogExists {
		t.Errorf("backlog flags: %v, %v", annotated[0].BacklogExists, annotated[1].BacklogExists)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
}

func TestJoinDegradesOnStoreFailure(t *testing.T) {
	joiner := NewJoiner(failStore{})

	records := []models.ProjectRecord{{Number: 1}, {Number: 2}}
	annotated, warnings := joiner.Join(context.Background(), records)

	if len(annotated) != 2 {
		t.Fatalf("the join must not drop records on store failure")
	}
	for _, r := range annotated {
		if r.BacklogExists {
			t.Error("failed lookups default to false")
		}
	}
	if len(warnings) != 1 {
		t.Errorf("want one aggregated warning, got %v", warnings)
	}
}

func TestReportDegradesOnStoreFailure(t *testing.T) {
	joiner := NewJoiner(failStore{})

	rec := &models.ProjectRecord{Number: 1, DueDate: day(time.August, 1)}
	view := joiner.Report(context.Background(), rec, today)

	if view == nil {
		t.Fatal("report must compose even without the store")
	}
	if !view.Payload.Empty() {
		t.Error("payload should be empty on failure")
	}
	if len(view.Warnings) == 0 {
		t.Error("store failure should surface as a warning")
	}
}

func TestNewJoinerNilStore(t *testing.T) {
	joiner := NewJoiner(nil)
	annotated, warnings := joiner.Join(context.Background(), []models.ProjectRecord{{Number: 1}})
	if len(annotated) != 1 || len(warnings) != 0 {
		t.Errorf("nil store should degrade to the nop store")
	}
}
