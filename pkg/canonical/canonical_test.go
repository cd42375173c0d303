package canonical

import (
	"testing"
	"time"

	"github.com/farolhq/farol/pkg/models"
)

func TestNormalizeStatus(t *testing.T) {
	tests := []struct {
		input string
		want  models.Status
	}{
		{"Novo", models.StatusNew},
		{"novo", models.StatusNew},
		{"NOVO", models.StatusNew},
		{"em atendimento", models.StatusInService},
		{"EM ATENDIMENTO", models.StatusInService},
		{"Bloqueado", models.StatusBlocked},
		{"fechado", models.StatusClosed},
		{"Resolvido", models.StatusResolved},
		{"cancelado", models.StatusCancelled},
		{"encerrado", models.StatusEnded},
		{"atrasado", models.StatusDelayed},
		{"closed", models.StatusClosed},
		{"  aguardando  ", models.StatusWaiting},
		{"", models.Status(models.Undefined)},
		{"Algo Novo Demais", models.Status("Algo Novo Demais")},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := NormalizeStatus(tt.input); got != tt.want {
				t.Errorf("NormalizeStatus(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeStatusIdempotent(t *testing.T) {
	inputs := []string{"Novo", "em atendimento", "Fechado", "resolvido", "algo estranho"}
	for _, in := range inputs {
		once := NormalizeStatus(in)
		twice := NormalizeStatus(string(once))
		if once != twice {
			t.Errorf("NormalizeStatus not idempotent for %q: %q then %q", in, once, twice)
		}
	}
}

func TestNormalizeBilling(t *testing.T) {
	tests := []struct {
		input  string
		want   models.BillingType
		wantOK bool
	}{
		{"Prime", models.BillingPrime, true},
		{"PRIME", models.BillingPrime, true},
		{"descontar do plus no inicio do projeto", models.BillingPlus, true},
		{"Faturar no inicio do projeto", models.BillingInicio, true},
		{"faturar no final do projeto", models.BillingTermino, true},
		{"Faturado em outro projeto", models.BillingFEOP, true},
		{"faturado em outro projeto.", models.BillingFEOP, true},
		{"Engajamento", models.BillingEngajamento, true},
		{"", models.BillingEAN, true},
		{"nan", models.BillingEAN, true},
		{"NaN", models.BillingEAN, true},
		{"algum texto novo", models.BillingUnmapped, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := NormalizeBilling(tt.input)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("NormalizeBilling(%q) = %q, %v, want %q, %v", tt.input, got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestNormalizeBillingIdempotent(t *testing.T) {
	inputs := []string{"Prime", "engajamento", "faturar no final do projeto", "", "desconhecido"}
	for _, in := range inputs {
		once, _ := NormalizeBilling(in)
		twice, ok := NormalizeBilling(string(once))
		if once != twice || !ok {
			t.Errorf("NormalizeBilling not idempotent for %q: %q then %q (ok=%v)", in, once, twice, ok)
		}
	}
}

func TestImputeSquad(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", models.PlanningPMO},
		{"nan", models.PlanningPMO},
		{"NÃO DEFINIDO", models.PlanningPMO},
		{"não definido", models.PlanningPMO},
		{"Squad Azure", "Squad Azure"},
		{"  Squad M365  ", "Squad M365"},
		{models.PlanningPMO, models.PlanningPMO},
	}

	for _, tt := range tests {
		if got := ImputeSquad(tt.input); got != tt.want {
			t.Errorf("ImputeSquad(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestImputeText(t *testing.T) {
	if got := ImputeText(""); got != models.Undefined {
		t.Errorf("ImputeText(empty) = %q", got)
	}
	if got := ImputeText("nan"); got != models.Undefined {
		t.Errorf("ImputeText(nan) = %q", got)
	}
	if got := ImputeText("Cliente X"); got != "Cliente X" {
		t.Errorf("ImputeText(Cliente X) = %q", got)
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"120", 120},
		{"120,5", 120.5},
		{"85%", 85},
		{"85,5%", 85.5},
		{"", 0},
		{"nan", 0},
		{"abc", 0},
	}

	for _, tt := range tests {
		if got := parseDecimal(tt.input); got != tt.want {
			t.Errorf("parseDecimal(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDuration(t *testing.T) {
	tests := []struct {
		input string
		want  float64
	}{
		{"10:30:00", 10.5},
		{"02:15", 2.25},
		{"8", 8},
		{"7,5", 7.5},
		{"", 0},
		{"xx:yy", 0},
	}

	for _, tt := range tests {
		if got := parseDuration(tt.input); got != tt.want {
			t.Errorf("parseDuration(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestParseDueDate(t *testing.T) {
	d := parseDueDate("15/04/2025 18:00")
	if d.Day() != 15 || d.Month() != time.April || d.Hour() != 18 {
		t.Errorf("datetime due date parsed as %v", d)
	}
	d = parseDueDate("15/04/2025")
	if d.Day() != 15 || d.Month() != time.April {
		t.Errorf("date-only due date parsed as %v", d)
	}
	if !parseDueDate("nan").IsZero() {
		t.Error("nan due date should be zero")
	}
}

func header() []string {
	return []string{
		colNumber, colClient, colProject, colSquad, colServiceType,
		colStatus, colBilling, colEstimated, colWorked, colCompletion,
		colSpecialist, colAccountManager, colOpenedAt, colResolvedAt,
		colDueAt, colLastAction,
	}
}

func TestCanonicalize(t *testing.T) {
	raw := &models.RawTable{
		Tag:     models.MonthTag{Year: 2025, Month: time.April},
		Headers: header(),
		Rows: [][]string{
			{
				"6889", "ACME", "Migração Azure", "Squad Azure", "Projeto",
				"em atendimento", "Prime", "120,5", "40:30:00", "33,6",
				"Fulano", "Beltrano", "01/03/2025", "", "30/04/2025 18:00", "10/04/2025",
			},
			{
				"7001", "Beta Corp", "", "nan", "",
				"fechado", "", "-10", "5", "150",
				"nan", "nan", "01/01/2025", "20/01/2025", "", "",
			},
		},
	}

	snap, err := New().Canonicalize(raw)
	if err != nil {
		t.Fatalf("Canonicalize() error: %v", err)
	}
	if len(snap.Records) != 2 {
		t.Fatalf("got %d records, want 2", len(snap.Records))
	}

	r := snap.Records[0]
	if r.Number != 6889 {
		t.Errorf("Number = %d", r.Number)
	}
	if r.Status != models.StatusInService {
		t.Errorf("Status = %q", r.Status)
	}
	if r.BillingType != models.BillingPrime {
		t.Errorf("BillingType = %q", r.BillingType)
	}
	if r.EstimatedHours != 120.5 {
		t.Errorf("EstimatedHours = %v", r.EstimatedHours)
	}
	if r.WorkedHours != 40.5 {
		t.Errorf("WorkedHours = %v", r.WorkedHours)
	}
	if r.RemainingHours != 80.0 {
		t.Errorf("RemainingHours = %v", r.RemainingHours)
	}
	if r.DueDate.Hour() != 18 {
		t.Errorf("DueDate lost its time of day: %v", r.DueDate)
	}

	r = snap.Records[1]
	if r.ProjectName != "Beta Corp" {
		t.Errorf("blank project name should fall back to client, got %q", r.ProjectName)
	}
	if r.Squad != models.PlanningPMO {
		t.Errorf("Squad = %q", r.Squad)
	}
	if r.BillingType != models.BillingEAN {
		t.Errorf("blank billing should map to EAN, got %q", r.BillingType)
	}
	if r.EstimatedHours != 0 {
		t.Errorf("negative estimate should clamp to 0, got %v", r.EstimatedHours)
	}
	if r.CompletionPct != 100 {
		t.Errorf("completion should clip to 100, got %v", r.CompletionPct)
	}
	if r.Specialist != models.Undefined || r.AccountManager != models.Undefined {
		t.Errorf("nan text fields should impute to UNDEFINED: %q, %q", r.Specialist, r.AccountManager)
	}
}

func TestCanonicalizeMissingColumn(t *testing.T) {
	raw := &models.RawTable{
		Headers: []string{colNumber, colClient, colStatus},
		Rows:    [][]string{{"42", "ACME", "novo"}},
	}

	snap, err := New().Canonicalize(raw)
	if err != nil {
		t.Fatalf("Canonicalize() error: %v", err)
	}
	if len(snap.Warnings) == 0 {
		t.Error("missing columns should produce warnings")
	}
	if len(snap.Records) != 1 {
		t.Fatalf("got %d records, want 1", len(snap.Records))
	}
	r := snap.Records[0]
	if r.Number != 42 || r.Status != models.StatusNew {
		t.Errorf("present columns should survive: %+v", r)
	}
	if r.Squad != models.PlanningPMO {
		t.Errorf("missing squad should impute to PLANNING_PMO, got %q", r.Squad)
	}
	if r.BillingType != models.BillingEAN {
		t.Errorf("missing billing should default to EAN, got %q", r.BillingType)
	}
}

func TestCanonicalizeUnmappedBillingWarning(t *testing.T) {
	raw := &models.RawTable{
		Headers: header(),
		Rows: [][]string{
			{"1", "A", "P1", "S", "", "novo", "texto inédito", "", "", "", "", "", "", "", "", ""},
			{"2", "B", "P2", "S", "", "novo", "texto inédito", "", "", "", "", "", "", "", "", ""},
		},
	}

	snap, err := New().Canonicalize(raw)
	if err != nil {
		t.Fatalf("Canonicalize() error: %v", err)
	}
	for _, r := range snap.Records {
		if r.BillingType != models.BillingUnmapped {
			t.Errorf("BillingType = %q, want UNMAPPED", r.BillingType)
		}
	}
	if len(snap.Warnings) != 1 {
		t.Fatalf("want a single aggregated warning, got %v", snap.Warnings)
	}
}

func TestCanonicalizeEmptyTable(t *testing.T) {
	raw := &models.RawTable{
		Tag:      models.MonthTag{Year: 2025, Month: time.May},
		Warnings: []string{"empty snapshot input"},
	}

	snap, err := New().Canonicalize(raw)
	if err != nil {
		t.Fatalf("Canonicalize() error: %v", err)
	}
	if !snap.Empty() {
		t.Error("empty table should canonicalize to an empty snapshot")
	}
	if len(snap.Warnings) != 1 {
		t.Errorf("loader warnings should carry through, got %v", snap.Warnings)
	}
}
