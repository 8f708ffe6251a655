// Package store is the staging and mapping database access layer. It owns
// the single *sql.DB connection for a run (spec §5 "one database connection
// per run") and the prepared statements built on top of it, modeled as a
// resource scoped to the Store's lifetime so every exit path releases them
// (spec §9 Design Notes, "ambient state for prepared statements").
package store

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// Store wraps the staging + mapping database for one migration run.
type Store struct {
	db    *sql.DB
	stmts *statements
	runID string
}

// Open opens or creates a SQLite database at dsn (a plain path or a
// "file:...?..." URI, per the teacher's store) and prepares every
// long-lived statement the core uses.
func Open(dsn string) (*Store, error) {
	path := dsn
	if strings.HasPrefix(path, "file:") {
		path = strings.TrimPrefix(path, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
	}
	if path != ":memory:" && path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
	}

	connStr := dsn
	if !strings.HasPrefix(connStr, "file:") {
		connStr = "file:" + strings.ReplaceAll(connStr, " ", "%20")
	}
	if !strings.Contains(connStr, "_time_format") {
		sep := "?"
		if strings.Contains(connStr, "?") {
			sep = "&"
		}
		connStr += sep + "_time_format=sqlite"
	}

	db, err := sql.Open("sqlite", connStr)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1) // single writer per run (spec §5)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	stmts, err := prepareStatements(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return &Store{db: db, stmts: stmts, runID: uuid.NewString()}, nil
}

// RunID returns a process-unique identifier generated once per Store,
// used only to correlate log lines across the three phases of one
// invocation — it is never persisted.
func (s *Store) RunID() string {
	return s.runID
}

// Close releases every prepared statement and the underlying connection.
// Safe to call more than once.
func (s *Store) Close() error {
	if s.stmts != nil {
		s.stmts.Close()
	}
	return s.db.Close()
}

// DB exposes the raw connection for ad-hoc queries the prepared-statement
// set doesn't cover (e.g. phase-specific reporting).
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside a transaction, rolling back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Now returns the current time as UTC RFC3339, matching the teacher's
// db.Now() helper so all *_at columns are stored in one consistent format.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt64(v int64, present bool) any {
	if !present {
		return nil
	}
	return v
}
