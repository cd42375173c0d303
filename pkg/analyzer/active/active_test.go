package active

import (
	"testing"

	"github.com/farolhq/farol/pkg/models"
)

func snapshot() *models.Snapshot {
	return &models.Snapshot{
		Records: []models.ProjectRecord{
			{Number: 1, Status: models.StatusInService, Squad: "Squad Azure", Specialist: "Ana", BillingType: models.BillingPrime},
			{Number: 2, Status: models.StatusNew, Squad: "Squad Azure", Specialist: "Ana", BillingType: models.BillingTermino},
			{Number: 3, Status: models.StatusWaiting, Squad: "Squad M365", Specialist: "Bruno", BillingType: models.BillingPrime},
			{Number: 4, Status: models.StatusBlocked, Squad: "Squad M365", Specialist: "Bruno", BillingType: models.BillingEAN},
			{Number: 5, Status: models.StatusClosed, Squad: "Squad Azure", Specialist: "Ana", BillingType: models.BillingPrime},
			{Number: 6, Status: models.StatusCancelled, Squad: "Squad Data", Specialist: "Carla", BillingType: models.BillingFEOP},
		},
	}
}

func TestAnalyze(t *testing.T) {
	analysis := New().Analyze(snapshot())

	if analysis.Total != 4 {
		t.Errorf("Total = %d, want 4", analysis.Total)
	}
	if analysis.InService != 2 {
		t.Errorf("InService = %d, want 2 (InService + New)", analysis.InService)
	}
	if analysis.ByStatus[models.StatusBlocked] != 1 {
		t.Errorf("ByStatus[Blocked] = %d", analysis.ByStatus[models.StatusBlocked])
	}
	if analysis.BySpecialist["Ana"] != 2 {
		t.Errorf("BySpecialist[Ana] = %d, closed records must not count", analysis.BySpecialist["Ana"])
	}
}

func TestAnalyzeSquadFilter(t *testing.T) {
	analysis := New(WithFilter(Filter{Squad: "Squad M365"})).Analyze(snapshot())

	if analysis.Total != 2 {
		t.Errorf("Total = %d, want 2", analysis.Total)
	}
	for _, r := range analysis.Records {
		if r.Squad != "Squad M365" {
			t.Errorf("record %d leaked through the squad filter", r.Number)
		}
	}
}

func TestAnalyzeBillingFilter(t *testing.T) {
	analysis := New(WithFilter(Filter{BillingType: models.BillingPrime})).Analyze(snapshot())

	if analysis.Total != 2 {
		t.Errorf("Total = %d, want 2 (records 1 and 3)", analysis.Total)
	}
}

func TestAnalyzeEmptySnapshot(t *testing.T) {
	analysis := New().Analyze(&models.Snapshot{})
	if analysis.Total != 0 || analysis.InService != 0 {
		t.Errorf("empty snapshot: %+v", analysis)
	}
}
