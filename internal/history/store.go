// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package history persists conversion runs in a local SQLite database. The
// record serves two purposes: `meshconv history` lists what past runs did,
// and the batch loop can skip a source whose output already exists and whose
// file has not changed since it was last converted.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/open-rmf/meshconv/pkg/types"
)

const dbFile = "meshconv.db"

// Store manages the conversion history database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the history database under cfg.DBDir, creating
// the schema if it does not exist.
func NewStore(cfg types.HistoryConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.DBDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	dbPath := filepath.Join(cfg.DBDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			out_dir TEXT,
			converted INTEGER NOT NULL,
			skipped INTEGER NOT NULL,
			failed INTEGER NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS conversions (
			run_id TEXT NOT NULL REFERENCES runs(id),
			source TEXT NOT NULL,
			output TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			source_mod_time TEXT,
			PRIMARY KEY (run_id, source)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// RecordRun stores the report as a new run and returns the run ID. Each
// conversion row carries the source's current modification time so later
// runs can detect unchanged sources.
func (s *Store) RecordRun(report types.Report, outDir string, startedAt time.Time) (string, error) {
	runID := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		`INSERT INTO runs (id, started_at, out_dir, converted, skipped, failed)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, startedAt.UTC().Format(time.RFC3339Nano), outDir,
		report.Converted, report.Skipped, report.Failed,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}

	for _, o := range report.Outcomes {
		modTime := ""
		if info, err := os.Stat(o.Source); err == nil {
			modTime = info.ModTime().UTC().Format(time.RFC3339Nano)
		}
		_, err = tx.Exec(
			`INSERT INTO conversions (run_id, source, output, status, error, source_mod_time)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			runID, o.Source, o.Output, string(o.Status), o.Error, modTime,
		)
		if err != nil {
			return "", fmt.Errorf("inserting conversion for %s: %w", o.Source, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("committing run: %w", err)
	}
	return runID, nil
}

// ShouldSkip reports whether source's conversion to output can be skipped:
// the output file exists, a past run converted this source to this output,
// and the source's modification time has not changed since. Any doubt means
// convert again.
func (s *Store) ShouldSkip(source, output string) bool {
	if _, err := os.Stat(output); err != nil {
		return false
	}

	var recorded string
	err := s.db.QueryRow(
		`SELECT c.source_mod_time
		 FROM conversions c JOIN runs r ON r.id = c.run_id
		 WHERE c.source = ? AND c.output = ?
		   AND c.status IN (?, ?)
		 ORDER BY r.started_at DESC LIMIT 1`,
		source, output, string(types.StatusConverted), string(types.StatusSkipped),
	).Scan(&recorded)
	if err != nil || recorded == "" {
		return false
	}

	info, err := os.Stat(source)
	if err != nil {
		return false
	}
	return info.ModTime().UTC().Format(time.RFC3339Nano) == recorded
}

// RunSummary is one row of `meshconv history` output.
type RunSummary struct {
	ID        string
	StartedAt time.Time
	OutDir    string
	Converted int
	Skipped   int
	Failed    int
}

// Runs returns the most recent runs, newest first.
func (s *Store) Runs(limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, started_at, out_dir, converted, skipped, failed
		 FROM runs ORDER BY started_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started string
		if err := rows.Scan(&r.ID, &started, &r.OutDir, &r.Converted, &r.Skipped, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		if t, err := time.Parse(time.RFC3339Nano, started); err == nil {
			r.StartedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunFiles returns the per-file outcomes of one run, in insertion order.
func (s *Store) RunFiles(runID string) ([]types.Outcome, error) {
	rows, err := s.db.Query(
		`SELECT source, output, status, error
		 FROM conversions WHERE run_id = ? ORDER BY source`, runID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying run files: %w", err)
	}
	defer rows.Close()

	var out []types.Outcome
	for rows.Next() {
		var o types.Outcome
		var status, errText string
		if err := rows.Scan(&o.Source, &o.Output, &status, &errText); err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		o.Status = types.Status(status)
		o.Error = errText
		out = append(out, o)
	}
	return out, rows.Err()
}
