// Package annotations joins project records with the user-artifact
// store: backlog flags and status-report content (milestones, risks,
// notes, next steps).
//
// The store is an external capability. Engines only depend on the Store
// interface; its unavailability degrades to empty annotations.
package annotations

import (
	"context"
	"time"
)

// Store is the external annotation capability.
type Store interface {
	// HasBacklog reports whether the project has a backlog artifact.
	HasBacklog(ctx context.Context, projectNumber int) (bool, error)

	// StatusReport fetches the status-report payload for the project.
	// A project without annotations yields an empty payload, not an
	// error.
	StatusReport(ctx context.Context, projectNumber int) (*Payload, error)
}

// Milestone is a dated delivery marker.
type Milestone struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	DueDate time.Time `json:"due_date,omitzero"`
	Done    bool      `json:"done"`
}

// Risk is a tracked project risk.
type Risk struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Mitigation  string `json:"mitigation,omitempty"`
}

// Note is free-form commentary attached to a project.
type Note struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at,omitzero"`
}

// Payload is the status-report content of one project.
type Payload struct {
	Milestones []Milestone `json:"milestones"`
	Risks      []Risk      `json:"risks"`
	Notes      []Note      `json:"notes"`
	NextSteps  []string    `json:"next_steps"`
}

// Empty reports whether the payload carries no content.
func (p *Payload) Empty() bool {
	return p == nil ||
		(len(p.Milestones) == 0 && len(p.Risks) == 0 && len(p.Notes) == 0 && len(p.NextSteps) == 0)
}

// NopStore is the degraded store: no backlogs, empty payloads.
type NopStore struct{}

// HasBacklog always reports false.
func (NopStore) HasBacklog(context.Context, int) (bool, error) { return false, nil }

// StatusReport always returns an empty payload.
func (NopStore) StatusReport(context.Context, int) (*Payload, error) { return &Payload{}, nil }
