// Package store persists sweep history to SQLite so operators can audit
// past sweeps without digging through report directories. One row per
// sweep plus one row per run; written once after report assembly,
// read-only afterwards.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fesweep/internal/analysis"
	"fesweep/internal/sweep"

	_ "modernc.org/sqlite"
)

// Store is the sweep history database handle.
type Store struct {
	mu sync.Mutex
	db *sql.DB
}

// Open initializes the history database at path, creating directories
// and schema as needed.
func Open(path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create store directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	s := &Store{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initSchema() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS sweeps (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			parameter TEXT NOT NULL,
			param_min REAL NOT NULL,
			param_max REAL NOT NULL,
			steps INTEGER NOT NULL,
			successful INTEGER NOT NULL,
			failed INTEGER NOT NULL,
			workbook TEXT,
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS runs (
			sweep_id TEXT NOT NULL,
			run_number INTEGER NOT NULL,
			param_value REAL NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			PRIMARY KEY (sweep_id, run_number),
			FOREIGN KEY (sweep_id) REFERENCES sweeps(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_sweep ON runs(sweep_id)`,
	}
	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("initialize schema: %w", err)
		}
	}
	return nil
}

// RecordSweep inserts one finished sweep and its runs in a transaction.
func (s *Store) RecordSweep(table *sweep.ResultTable, spec sweep.Spec, desc analysis.Descriptor, workbookPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin history transaction: %w", err)
	}
	defer tx.Rollback()

	ok, failed := table.Counts()
	_, err = tx.Exec(
		`INSERT INTO sweeps (id, kind, parameter, param_min, param_max, steps, successful, failed, workbook, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		table.SweepID, string(table.Kind), desc.ParameterName,
		spec.ParamMin, spec.ParamMax, spec.Steps, ok, failed,
		workbookPath, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert sweep: %w", err)
	}
	for _, r := range table.Runs {
		_, err = tx.Exec(
			`INSERT INTO runs (sweep_id, run_number, param_value, status, error) VALUES (?, ?, ?, ?, ?)`,
			table.SweepID, r.RunNumber, r.ParamValue, string(r.Status), r.Err,
		)
		if err != nil {
			return fmt.Errorf("insert run %d: %w", r.RunNumber, err)
		}
	}
	return tx.Commit()
}

// Summary is one sweep's history row.
type Summary struct {
	ID         string
	Kind       string
	Parameter  string
	ParamMin   float64
	ParamMax   float64
	Steps      int
	Successful int
	Failed     int
	Workbook   string
	CreatedAt  time.Time
}

// ListSweeps returns up to limit most recent sweeps, newest first.
func (s *Store) ListSweeps(limit int) ([]Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, kind, parameter, param_min, param_max, steps, successful, failed, workbook, created_at
		 FROM sweeps ORDER BY created_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query sweeps: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var sm Summary
		var created string
		if err := rows.Scan(&sm.ID, &sm.Kind, &sm.Parameter, &sm.ParamMin, &sm.ParamMax,
			&sm.Steps, &sm.Successful, &sm.Failed, &sm.Workbook, &created); err != nil {
			return nil, fmt.Errorf("scan sweep row: %w", err)
		}
		if t, perr := time.Parse(time.RFC3339, created); perr == nil {
			sm.CreatedAt = t
		}
		out = append(out, sm)
	}
	return out, rows.Err()
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }
