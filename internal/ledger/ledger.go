// Package ledger keeps an append-only SQLite history of progress snapshots
// and generated reports. It is advisory: nothing in it feeds back into the
// state document.
package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rtmx-ai/agentkit/internal/progress"
)

// timeLayout is fixed-width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Snapshot captures the derived metrics of a state document at one save.
type Snapshot struct {
	ID         string    `json:"id"`
	StateID    string    `json:"state_id"`
	RecordedAt time.Time `json:"recorded_at"`
	Overall    float64   `json:"overall"`
	Phase      string    `json:"phase"`
	Health     string    `json:"health"`
	Components int       `json:"components"`
	Completed  int       `json:"completed"`
	InProgress int       `json:"in_progress"`
	Pending    int       `json:"pending"`
	Reason     string    `json:"reason"`
}

// NewSnapshot summarizes state. The id is left empty until recorded.
func NewSnapshot(state *progress.State, reason string, at time.Time) Snapshot {
	return Snapshot{
		StateID:    state.Metadata.StateID,
		RecordedAt: at.UTC(),
		Overall:    state.Metrics.OverallCompletion,
		Phase:      state.Metrics.Phase,
		Health:     state.Metrics.Health,
		Components: state.Components.Count(),
		Completed:  len(state.Tasks.Completed),
		InProgress: len(state.Tasks.InProgress),
		Pending:    len(state.Tasks.Pending),
		Reason:     reason,
	}
}

// Report records one generated report file.
type Report struct {
	SessionID   string    `json:"session_id"`
	Kind        string    `json:"kind"`
	Path        string    `json:"path"`
	GeneratedAt time.Time `json:"generated_at"`
}

// Ledger is the SQLite-backed history.
type Ledger struct {
	db *sql.DB
}

// Open opens (creating if needed) the ledger at path and applies migrations.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := enablePragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable pragmas: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, err
	}

	slog.Debug("ledger opened", "path", path)
	return &Ledger{db: db}, nil
}

func enablePragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %s: %w", pragma, err)
		}
	}

	return nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// RecordSnapshot appends snap, assigning it a ULID.
func (l *Ledger) RecordSnapshot(ctx context.Context, snap Snapshot) (Snapshot, error) {
	snap.ID = ulid.Make().String()
	if snap.RecordedAt.IsZero() {
		snap.RecordedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO snapshots (id, state_id, recorded_at, overall, phase, health, components, completed, in_progress, pending, reason)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, snap.ID, snap.StateID, snap.RecordedAt.UTC().Format(timeLayout), snap.Overall, snap.Phase, snap.Health,
		snap.Components, snap.Completed, snap.InProgress, snap.Pending, snap.Reason)
	if err != nil {
		return Snapshot{}, fmt.Errorf("record snapshot: %w", err)
	}

	slog.Debug("snapshot recorded", "id", snap.ID, "overall", snap.Overall, "reason", snap.Reason)
	return snap, nil
}

// Recent returns up to limit snapshots, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT id, state_id, recorded_at, overall, phase, health, components, completed, in_progress, pending, reason
		FROM snapshots
		ORDER BY recorded_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, rows.Err()
}

// Latest returns the newest snapshot, or ErrNotFound.
func (l *Ledger) Latest(ctx context.Context) (Snapshot, error) {
	snaps, err := l.Recent(ctx, 1)
	if err != nil {
		return Snapshot{}, err
	}
	if len(snaps) == 0 {
		return Snapshot{}, ErrNotFound
	}
	return snaps[0], nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row scanner) (Snapshot, error) {
	var snap Snapshot
	var recordedAt string
	err := row.Scan(&snap.ID, &snap.StateID, &recordedAt, &snap.Overall, &snap.Phase, &snap.Health,
		&snap.Components, &snap.Completed, &snap.InProgress, &snap.Pending, &snap.Reason)
	if err != nil {
		return Snapshot{}, fmt.Errorf("scan snapshot: %w", err)
	}
	snap.RecordedAt, err = time.Parse(timeLayout, recordedAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("parse recorded_at %q: %w", recordedAt, err)
	}
	return snap, nil
}

// RecordReport stores a generated report.
func (l *Ledger) RecordReport(ctx context.Context, r Report) error {
	if r.Kind == "" {
		return ErrEmptyKind
	}
	if r.GeneratedAt.IsZero() {
		r.GeneratedAt = time.Now().UTC()
	}

	_, err := l.db.ExecContext(ctx, `
		INSERT INTO reports (session_id, kind, path, generated_at)
		VALUES (?, ?, ?, ?)
	`, r.SessionID, r.Kind, r.Path, r.GeneratedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record report: %w", err)
	}

	slog.Debug("report recorded", "session", r.SessionID, "kind", r.Kind)
	return nil
}

// CountReports returns how many reports of kind were recorded.
func (l *Ledger) CountReports(ctx context.Context, kind string) (int, error) {
	var count int
	err := l.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM reports WHERE kind = ?", kind).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count reports: %w", err)
	}
	return count, nil
}
