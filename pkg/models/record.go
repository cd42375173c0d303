// Package models defines the canonical project record and snapshot types
// shared by the loader, canonicalizer, and KPI engines.
package models

import (
	"strings"
	"time"
)

// Status is the normalized (Title Case) project status.
type Status string

const (
	StatusNew       Status = "New"
	StatusWaiting   Status = "Waiting"
	StatusInService Status = "InService"
	StatusBlocked   Status = "Blocked"
	StatusDelayed   Status = "Delayed"
	StatusActive    Status = "Active"
	StatusClosed    Status = "Closed"
	StatusResolved  Status = "Resolved"
	StatusCancelled Status = "Cancelled"
	StatusEnded     Status = "Ended"
)

// IsClosed reports whether the status belongs to the closed set.
func (s Status) IsClosed() bool {
	switch s {
	case StatusClosed, StatusResolved, StatusCancelled, StatusEnded:
		return true
	}
	return false
}

// IsDelivered reports whether the status counts as a delivery
// (Closed or Resolved; cancellations do not count).
func (s Status) IsDelivered() bool {
	return s == StatusClosed || s == StatusResolved
}

// BillingType is the normalized billing code.
type BillingType string

const (
	BillingPrime       BillingType = "PRIME"
	BillingPlus        BillingType = "PLUS"
	BillingInicio      BillingType = "INICIO"
	BillingTermino     BillingType = "TERMINO"
	BillingEngajamento BillingType = "ENGAJAMENTO"
	BillingFEOP        BillingType = "FEOP"
	BillingEAN         BillingType = "EAN"
	BillingUnmapped    BillingType = "UNMAPPED"
)

// PlanningPMO is the pseudo-squad that collects unassigned projects.
const PlanningPMO = "PLANNING_PMO"

// Undefined is the sentinel for blank text fields other than squad.
const Undefined = "UNDEFINED"

// ExcludedSpecialist is removed from billing, occupancy, and burn-rate
// figures (subcontracted capacity billed separately).
const ExcludedSpecialist = "CDB DATA SOLUTIONS"

// ProjectRecord is one canonicalized ticket row. Records are immutable
// once produced by the canonicalizer; snapshots never share record slices.
type ProjectRecord struct {
	Number          int         `json:"number"`
	Client          string      `json:"client"`
	ProjectName     string      `json:"project_name"`
	Squad           string      `json:"squad"`
	ServiceType     string      `json:"service_type,omitempty"`
	Status          Status      `json:"status"`
	BillingType     BillingType `json:"billing_type"`
	EstimatedHours  float64     `json:"estimated_hours"`
	WorkedHours     float64     `json:"worked_hours"`
	RemainingHours  float64     `json:"remaining_hours"`
	CompletionPct   float64     `json:"completion_pct"`
	Specialist      string      `json:"specialist"`
	AccountManager  string      `json:"account_manager"`
	StartDate       time.Time   `json:"start_date"`
	EndDate         time.Time   `json:"end_date"`
	DueDate         time.Time   `json:"due_date"`
	LastInteraction time.Time   `json:"last_interaction"`
	MonthOrigin     MonthTag    `json:"month_origin,omitzero"`
}

// IsActive reports whether the record's status is outside the closed set.
func (r *ProjectRecord) IsActive() bool {
	return !r.Status.IsClosed()
}

// HasExcludedSpecialist reports whether the record belongs to the
// specialist excluded from billing and capacity arithmetic.
func (r *ProjectRecord) HasExcludedSpecialist() bool {
	return strings.EqualFold(strings.TrimSpace(r.Specialist), ExcludedSpecialist)
}

// HasDueDate reports whether a due date is present.
func (r *ProjectRecord) HasDueDate() bool { return !r.DueDate.IsZero() }

// HasEndDate reports whether an end date is present.
func (r *ProjectRecord) HasEndDate() bool { return !r.EndDate.IsZero() }

// HasStartDate reports whether a start date is present.
func (r *ProjectRecord) HasStartDate() bool { return !r.StartDate.IsZero() }
