// Package sqlitestore implements the annotation Store over the artifact
// SQLite database maintained by the dashboard's editing surface.
//
// The store is read-only from the KPI engine's point of view; the
// editing surface owns the schema.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/farolhq/farol/pkg/annotations"
	_ "modernc.org/sqlite"
)

// Store reads annotations from the artifact database.
type Store struct {
	db *sql.DB
}

// Open opens the artifact database at path.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open annotation store: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the artifact schema. Intended for tests and first-run
// setup; the editing surface normally owns migrations.
func (s *Store) Migrate() error {
	schema := `
CREATE TABLE IF NOT EXISTS backlogs (
    project_number INTEGER PRIMARY KEY,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS milestones (
    id TEXT PRIMARY KEY,
    project_number INTEGER NOT NULL,
    title TEXT NOT NULL,
    due_date TIMESTAMP,
    done INTEGER NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_milestones_project ON milestones(project_number);

CREATE TABLE IF NOT EXISTS risks (
    id TEXT PRIMARY KEY,
    project_number INTEGER NOT NULL,
    description TEXT NOT NULL,
    severity TEXT NOT NULL,
    mitigation TEXT
);
CREATE INDEX IF NOT EXISTS idx_risks_project ON risks(project_number);

CREATE TABLE IF NOT EXISTS notes (
    id TEXT PRIMARY KEY,
    project_number INTEGER NOT NULL,
    text TEXT NOT NULL,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_notes_project ON notes(project_number);

CREATE TABLE IF NOT EXISTS next_steps (
    id TEXT PRIMARY KEY,
    project_number INTEGER NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    text TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_next_steps_project ON next_steps(project_number);
`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to run annotation migrations: %w", err)
	}
	return nil
}

// HasBacklog reports whether the project has a backlog artifact.
func (s *Store) HasBacklog(ctx context.Context, projectNumber int) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM backlogs WHERE project_number = ?", projectNumber).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to query backlog: %w", err)
	}
	return true, nil
}

// StatusReport fetches the full status-report payload for the project.
func (s *Store) StatusReport(ctx context.Context, projectNumber int) (*annotations.Payload, error) {
	payload := &annotations.Payload{}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, due_date, done
		FROM milestones WHERE project_number = ? ORDER BY due_date`, projectNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	for rows.Next() {
		var m annotations.Milestone
		var due sql.NullTime
		var done int
		if err := rows.Scan(&m.ID, &m.Title, &due, &done); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		if due.Valid {
			m.DueDate = due.Time
		}
		m.Done = done != 0
		payload.Milestones = append(payload.Milestones, m)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, description, severity, COALESCE(mitigation, '')
		FROM risks WHERE project_number = ? ORDER BY severity`, projectNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query risks: %w", err)
	}
	for rows.Next() {
		var r annotations.Risk
		if err := rows.Scan(&r.ID, &r.Description, &r.Severity, &r.Mitigation); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan risk: %w", err)
		}
		payload.Risks = append(payload.Risks, r)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT id, text, created_at
		FROM notes WHERE project_number = ? ORDER BY created_at DESC`, projectNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query notes: %w", err)
	}
	for rows.Next() {
		var n annotations.Note
		var created sql.NullTime
		if err := rows.Scan(&n.ID, &n.Text, &created); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		if created.Valid {
			n.CreatedAt = created.Time
		}
		payload.Notes = append(payload.Notes, n)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT text FROM next_steps WHERE project_number = ? ORDER BY position`, projectNumber)
	if err != nil {
		return nil, fmt.Errorf("failed to query next steps: %w", err)
	}
	for rows.Next() {
		var step string
		if err := rows.Scan(&step); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan next step: %w", err)
		}
		payload.NextSteps = append(payload.NextSteps, step)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	return payload, nil
}
