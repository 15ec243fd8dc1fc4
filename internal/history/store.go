// Package history persists finished pipeline runs in SQLite.
package history

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"git.home.luguber.info/inful/clientgen/internal/pipeline"
)

// ErrNotFound is returned by Get for unknown run ids.
var ErrNotFound = stderrors.New("run not found")

// Entry is one stored run.
type Entry struct {
	ID       string
	Target   string
	State    pipeline.State
	Start    time.Time
	Duration time.Duration
	Warnings int
	Error    string
	Steps    []pipeline.StepRecord
}

// Store implements run history on SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens or creates the history database at path.
// Use ":memory:" for an in-memory database.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serializes writers
	db.SetMaxOpenConns(1)
	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		target TEXT NOT NULL,
		state TEXT NOT NULL,
		started_at INTEGER NOT NULL,
		duration_ms INTEGER NOT NULL,
		warnings INTEGER NOT NULL,
		error TEXT,
		steps BLOB NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Record stores a finished run. Recording the same run twice replaces it.
func (s *Store) Record(ctx context.Context, run *pipeline.Run) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	steps, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("marshal steps: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, target, state, started_at, duration_ms, warnings, error, steps)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Target, string(run.State), run.Start.UnixMilli(), run.Duration().Milliseconds(),
		run.Warnings(), run.Error, steps,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// List returns the most recent runs, newest first. A non-positive limit returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, state, started_at, duration_ms, warnings, error, steps
		 FROM runs ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}
	return out, nil
}

// Get returns a single run by id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT id, target, state, started_at, duration_ms, warnings, error, steps FROM runs WHERE id = ?`, id)
	e, err := scanEntry(row)
	if stderrors.Is(err, sql.ErrNoRows) {
		return Entry{}, ErrNotFound
	}
	return e, err
}

type scanner interface{ Scan(dest ...any) error }

func scanEntry(r scanner) (Entry, error) {
	var (
		e          Entry
		state      string
		startedMS  int64
		durationMS int64
		errText    sql.NullString
		steps      []byte
	)
	if err := r.Scan(&e.ID, &e.Target, &state, &startedMS, &durationMS, &e.Warnings, &errText, &steps); err != nil {
		if stderrors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan run: %w", err)
	}
	e.State = pipeline.State(state)
	e.Start = time.UnixMilli(startedMS)
	e.Duration = time.Duration(durationMS) * time.Millisecond
	e.Error = errText.String
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &e.Steps); err != nil {
			return Entry{}, fmt.Errorf("unmarshal steps: %w", err)
		}
	}
	return e, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}
