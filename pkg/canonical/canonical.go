// Package canonical turns a raw snapshot table into canonical project
// records: column renames, type coercion, status and billing taxonomy
// normalization, squad imputation, and derived fields.
//
// Normalization happens exactly once, here. Downstream engines must not
// re-case or re-map any field.
package canonical

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/farolhq/farol/pkg/models"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Source column labels as exported by the ticketing system.
const (
	colNumber         = "Número"
	colClient         = "Cliente"
	colProject        = "Projeto"
	colSquad          = "Squad"
	colServiceType    = "Tipo de serviço"
	colStatus         = "Status"
	colBilling        = "Tipo de faturamento"
	colEstimated      = "Esforço estimado"
	colWorked         = "Tempo trabalhado"
	colCompletion     = "Andamento"
	colSpecialist     = "Especialista"
	colAccountManager = "Account Manager"
	colOpenedAt       = "Aberto em"
	colResolvedAt     = "Resolvido em"
	colDueAt          = "Vencimento em"
	colLastAction     = "Data da última ação"
)

const (
	dateLayout     = "02/01/2006"
	dateTimeLayout = "02/01/2006 15:04"
)

var titleCaser = cases.Title(language.BrazilianPortuguese)

// statusAliases maps Title-Cased source statuses onto the canonical set.
// The export mixes Portuguese labels with occasional English ones.
var statusAliases = map[string]models.Status{
	"Novo":           models.StatusNew,
	"New":            models.StatusNew,
	"Aguardando":     models.StatusWaiting,
	"Waiting":        models.StatusWaiting,
	"Em Atendimento": models.StatusInService,
	"Inservice":      models.StatusInService,
	"In Service":     models.StatusInService,
	"Bloqueado":      models.StatusBlocked,
	"Blocked":        models.StatusBlocked,
	"Atrasado":       models.StatusDelayed,
	"Delayed":        models.StatusDelayed,
	"Ativo":          models.StatusActive,
	"Active":         models.StatusActive,
	"Fechado":        models.StatusClosed,
	"Closed":         models.StatusClosed,
	"Resolvido":      models.StatusResolved,
	"Resolved":       models.StatusResolved,
	"Cancelado":      models.StatusCancelled,
	"Cancelled":      models.StatusCancelled,
	"Encerrado":      models.StatusEnded,
	"Ended":          models.StatusEnded,
}

// billingMap is the fixed source-text to billing-code mapping. Lookup is
// case-insensitive on the trimmed source text.
var billingMap = map[string]models.BillingType{
	"prime":                                  models.BillingPrime,
	"descontar do plus no inicio do projeto": models.BillingPlus,
	"faturar no inicio do projeto":           models.BillingInicio,
	"faturar no final do projeto":            models.BillingTermino,
	"faturado em outro projeto":              models.BillingFEOP,
	"faturado em outro projeto.":             models.BillingFEOP,
	"engajamento":                            models.BillingEngajamento,
}

// Canonicalizer applies the normalization stages.
type Canonicalizer struct{}

// New creates a canonicalizer.
func New() *Canonicalizer {
	return &Canonicalizer{}
}

// Canonicalize converts a raw table into a canonical snapshot. Cell-level
// coercion failures null the cell and continue; a missing canonical
// column is synthesized with a type-appropriate default and a warning.
func (c *Canonicalizer) Canonicalize(raw *models.RawTable) (*models.Snapshot, error) {
	snap := &models.Snapshot{
		Tag:         raw.Tag,
		Fingerprint: raw.Fingerprint,
		Warnings:    append([]string(nil), raw.Warnings...),
	}
	if raw.Empty() {
		return snap, nil
	}

	cols := map[string]int{}
	for _, name := range []string{
		colNumber, colClient, colProject, colSquad, colServiceType,
		colStatus, colBilling, colEstimated, colWorked, colCompletion,
		colSpecialist, colAccountManager, colOpenedAt, colResolvedAt,
		colDueAt, colLastAction,
	} {
		idx := raw.Column(name)
		if idx < 0 {
			snap.Warnings = append(snap.Warnings, fmt.Sprintf("column %q missing; using defaults", name))
		}
		cols[name] = idx
	}

	unmapped := map[string]int{}
	snap.Records = make([]models.ProjectRecord, 0, len(raw.Rows))

	for _, row := range raw.Rows {
		cell := func(name string) string {
			return strings.TrimSpace(raw.Cell(row, cols[name]))
		}

		rec := models.ProjectRecord{
			Client:         ImputeText(cell(colClient)),
			ProjectName:    cell(colProject),
			Squad:          ImputeSquad(cell(colSquad)),
			ServiceType:    ImputeText(cell(colServiceType)),
			Specialist:     ImputeText(cell(colSpecialist)),
			AccountManager: ImputeText(cell(colAccountManager)),
		}

		rec.Number, _ = parseInt(cell(colNumber))
		rec.StartDate = parseDate(cell(colOpenedAt))
		rec.EndDate = parseDate(cell(colResolvedAt))
		rec.LastInteraction = parseDate(cell(colLastAction))
		rec.DueDate = parseDueDate(cell(colDueAt))

		rec.EstimatedHours = math.Max(0, parseDecimal(cell(colEstimated)))
		rec.WorkedHours = math.Max(0, parseDuration(cell(colWorked)))
		rec.CompletionPct = clip(parseDecimal(cell(colCompletion)), 0, 100)
		rec.RemainingHours = round1(rec.EstimatedHours - rec.WorkedHours)

		if isBlank(rec.ProjectName) {
			rec.ProjectName = rec.Client
		}

		rec.Status = NormalizeStatus(cell(colStatus))

		var known bool
		rec.BillingType, known = NormalizeBilling(cell(colBilling))
		if !known {
			unmapped[cell(colBilling)]++
		}

		snap.Records = append(snap.Records, rec)
	}

	for text, n := range unmapped {
		snap.Warnings = append(snap.Warnings, fmt.Sprintf("unmapped billing type %q on %d record(s)", text, n))
	}

	return snap, nil
}

// NormalizeStatus strips and Title Cases the source status, then folds
// known aliases into the canonical set. Idempotent.
func NormalizeStatus(s string) models.Status {
	t := titleCaser.String(strings.TrimSpace(s))
	if canon, ok := statusAliases[t]; ok {
		return canon
	}
	if t == "" {
		return models.Status(models.Undefined)
	}
	return models.Status(t)
}

// NormalizeBilling maps the source billing text onto the closed code set.
// A blank or "nan" source yields EAN; unknown text yields UNMAPPED with
// ok=false. Idempotent: canonical codes map to themselves.
func NormalizeBilling(s string) (models.BillingType, bool) {
	t := strings.TrimSpace(s)
	if isBlank(t) {
		return models.BillingEAN, true
	}
	if bt, ok := billingMap[strings.ToLower(t)]; ok {
		return bt, true
	}
	switch models.BillingType(strings.ToUpper(t)) {
	case models.BillingPrime, models.BillingPlus, models.BillingInicio,
		models.BillingTermino, models.BillingEngajamento, models.BillingFEOP,
		models.BillingEAN, models.BillingUnmapped:
		return models.BillingType(strings.ToUpper(t)), true
	}
	return models.BillingUnmapped, false
}

// ImputeSquad replaces the undefined sentinels with the planning
// pseudo-squad. Idempotent.
func ImputeSquad(s string) string {
	if isBlank(s) || strings.EqualFold(strings.TrimSpace(s), "NÃO DEFINIDO") {
		return models.PlanningPMO
	}
	return strings.TrimSpace(s)
}

// ImputeText replaces the undefined sentinels in free-text columns.
// Idempotent.
func ImputeText(s string) string {
	if isBlank(s) || strings.EqualFold(strings.TrimSpace(s), "NÃO DEFINIDO") {
		return models.Undefined
	}
	return strings.TrimSpace(s)
}

func isBlank(s string) bool {
	t := strings.TrimSpace(s)
	return t == "" || strings.EqualFold(t, "nan")
}

func parseInt(s string) (int, bool) {
	if isBlank(s) {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

// parseDecimal accepts pt-BR decimals: comma as decimal separator and an
// optional trailing percent sign. Unparseable cells coerce to 0.
func parseDecimal(s string) float64 {
	if isBlank(s) {
		return 0
	}
	t := strings.TrimSuffix(strings.TrimSpace(s), "%")
	t = strings.ReplaceAll(t, ",", ".")
	v, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
	if err != nil {
		return 0
	}
	return v
}

// parseDuration accepts HH:MM:SS, HH:MM, or a bare decimal, returning
// hours.
func parseDuration(s string) float64 {
	if isBlank(s) {
		return 0
	}
	parts := strings.Split(strings.TrimSpace(s), ":")
	switch len(parts) {
	case 3:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		sec, err3 := strconv.Atoi(parts[2])
		if err1 != nil || err2 != nil || err3 != nil {
			return 0
		}
		return float64(h) + float64(m)/60 + float64(sec)/3600
	case 2:
		h, err1 := strconv.Atoi(parts[0])
		m, err2 := strconv.Atoi(parts[1])
		if err1 != nil || err2 != nil {
			return 0
		}
		return float64(h) + float64(m)/60
	default:
		return parseDecimal(s)
	}
}

func parseDate(s string) time.Time {
	if isBlank(s) {
		return time.Time{}
	}
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}

// parseDueDate tries the datetime layout first; due dates sometimes carry
// a time of day.
func parseDueDate(s string) time.Time {
	if isBlank(s) {
		return time.Time{}
	}
	t := strings.TrimSpace(s)
	if d, err := time.Parse(dateTimeLayout, t); err == nil {
		return d
	}
	return parseDate(t)
}

func clip(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
