// Package history records finished builds in a local SQLite database so
// past runs can be inspected after the fact.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// Outcome labels stored per run.
const (
	OutcomeSuccess = "success"
	OutcomeFailed  = "failed"
)

// Run is one recorded build.
type Run struct {
	ID        string
	Started   time.Time
	Duration  time.Duration
	Documents int
	Pages     int
	Defects   int
	Outcome   string
	Error     string
}

// Store persists runs. Use ":memory:" for an in-memory database.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens the database at path, creating the schema on first use.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", err)
	}
	return store, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		documents INTEGER NOT NULL,
		pages INTEGER NOT NULL,
		defects INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		error TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores one finished run.
func (s *Store) Record(ctx context.Context, run Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO runs (id, started, duration_ms, documents, pages, defects, outcome, error) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.Started.Unix(), run.Duration.Milliseconds(),
		run.Documents, run.Pages, run.Defects, run.Outcome, run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, started, duration_ms, documents, pages, defects, outcome, error FROM runs ORDER BY started DESC, id LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var started, durationMS int64
		if err := rows.Scan(&r.ID, &started, &durationMS, &r.Documents, &r.Pages, &r.Defects, &r.Outcome, &r.Error); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Started = time.Unix(started, 0)
		r.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return runs, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
