// Package history keeps a record of every build attempt in a SQLite database
// under the workspace state directory.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jakoblorz/go-combine/internal/models"
	_ "github.com/mattn/go-sqlite3"
)

// FileName is the database file inside the workspace state directory.
const FileName = "history.db"

// Store is the SQLite-backed build history.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Open opens the store at dbPath and migrates it.
func Open(dbPath string) (*Store, error) {
	s, err := NewStore(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.Migrate(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the schema. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS builds (
  id              TEXT PRIMARY KEY,
  project         TEXT NOT NULL,
  configuration   TEXT NOT NULL,
  started_at      TIMESTAMP NOT NULL,
  duration_ms     INTEGER NOT NULL,
  errors          INTEGER NOT NULL DEFAULT 0,
  warnings        INTEGER NOT NULL DEFAULT 0,
  succeeded       BOOLEAN NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_builds_project ON builds(project, started_at);
`

// Record inserts a build record. An empty ID is generated.
func (s *Store) Record(ctx context.Context, r models.BuildRecord) error {
	if r.ID == "" {
		id, err := NewBuildID()
		if err != nil {
			return err
		}
		r.ID = id
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO builds (id, project, configuration, started_at, duration_ms, errors, warnings, succeeded) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		r.ID, r.Project, r.Configuration, r.StartedAt.UTC(), r.Duration.Milliseconds(), r.Errors, r.Warnings, r.Succeeded,
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// ForProject returns the most recent builds of a project, newest first.
// A limit of zero or less returns every record.
func (s *Store) ForProject(ctx context.Context, project string, limit int) ([]models.BuildRecord, error) {
	query := "SELECT id, project, configuration, started_at, duration_ms, errors, warnings, succeeded FROM builds WHERE project = ? ORDER BY started_at DESC, rowid DESC"
	args := []any{project}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// Recent returns the most recent builds across all projects, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]models.BuildRecord, error) {
	return s.query(ctx,
		"SELECT id, project, configuration, started_at, duration_ms, errors, warnings, succeeded FROM builds ORDER BY started_at DESC, rowid DESC LIMIT ?",
		limit,
	)
}

func (s *Store) query(ctx context.Context, query string, args ...any) ([]models.BuildRecord, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var records []models.BuildRecord
	for rows.Next() {
		var r models.BuildRecord
		var durationMS int64
		if err := rows.Scan(&r.ID, &r.Project, &r.Configuration, &r.StartedAt, &durationMS, &r.Errors, &r.Warnings, &r.Succeeded); err != nil {
			return nil, fmt.Errorf("scan build: %w", err)
		}
		r.Duration = time.Duration(durationMS) * time.Millisecond
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return records, nil
}
