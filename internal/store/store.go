// Package store provides SQLite-backed run history for Escalytics.
package store

import (
	"database/sql"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store records past pipeline runs.
type Store struct {
	db *sql.DB
}

// Run is one recorded pipeline invocation.
type Run struct {
	ID               string
	TicketKey        string
	Summary          string
	Severity         string
	Analysis         string
	AnalysisCached   bool
	AssignmentStatus string
	CommentStatus    string
	EmailStatus      string
	CreatedAt        time.Time
}

// New opens (and if needed creates) the history database.
func New(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id                TEXT PRIMARY KEY,
		ticket_key        TEXT NOT NULL,
		summary           TEXT NOT NULL DEFAULT '',
		severity          TEXT NOT NULL DEFAULT '',
		analysis          TEXT NOT NULL DEFAULT '',
		analysis_cached   INTEGER NOT NULL DEFAULT 0,
		assignment_status TEXT NOT NULL DEFAULT '',
		comment_status    TEXT NOT NULL DEFAULT '',
		email_status      TEXT NOT NULL DEFAULT '',
		created_at        DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun persists one run.
func (s *Store) RecordRun(r *Run) error {
	_, err := s.db.Exec(`
		INSERT INTO runs (id, ticket_key, summary, severity, analysis, analysis_cached,
			assignment_status, comment_status, email_status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TicketKey, r.Summary, r.Severity, r.Analysis, r.AnalysisCached,
		r.AssignmentStatus, r.CommentStatus, r.EmailStatus)
	return err
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT id, ticket_key, summary, severity, analysis, analysis_cached,
			assignment_status, comment_status, email_status, created_at
		FROM runs
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		if err := rows.Scan(&r.ID, &r.TicketKey, &r.Summary, &r.Severity, &r.Analysis,
			&r.AnalysisCached, &r.AssignmentStatus, &r.CommentStatus, &r.EmailStatus,
			&r.CreatedAt); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
