// Package storage provides the SQLite run-history database. Every job run
// is recorded with its outcome and region counts so past runs can be listed.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/leefowlercu/cymirs/internal/fsutil"
)

// Storage provides access to the run-history database.
type Storage struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
}

// Open opens the history database at dbPath, creating it and its parent
// directories if needed, and brings the schema up to date.
func Open(ctx context.Context, dbPath string) (*Storage, error) {
	if err := fsutil.EnsureDir(filepath.Dir(dbPath)); err != nil {
		return nil, fmt.Errorf("failed to create database directory; %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database; %w", err)
	}

	// One connection; concurrent cymirs runs share the file through the
	// busy timeout.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q; %w", pragma, err)
		}
	}

	s := &Storage{
		db:     db,
		dbPath: dbPath,
	}

	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations; %w", err)
	}

	return s, nil
}

var pragmas = []string{
	"PRAGMA busy_timeout = 5000",
	"PRAGMA journal_mode = WAL",
}

// DB returns the underlying database connection.
// Use with care; prefer using Storage methods.
func (s *Storage) DB() *sql.DB {
	return s.db
}

// Close closes the database connection.
func (s *Storage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// Path returns the database file path.
func (s *Storage) Path() string {
	return s.dbPath
}

// migrate runs all pending migrations on the database.
func (s *Storage) migrate(ctx context.Context) error {
	// Ensure schema_migrations table exists first
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations table; %w", err)
	}

	// Get current version
	currentVersion, err := s.getCurrentVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current version; %w", err)
	}

	// Run pending migrations
	for _, m := range migrations {
		if m.Version <= currentVersion {
			continue
		}

		if err := s.runMigration(ctx, m); err != nil {
			return fmt.Errorf("failed to run migration %d (%s); %w", m.Version, m.Description, err)
		}
	}

	return nil
}

// getCurrentVersion returns the highest applied migration version.
func (s *Storage) getCurrentVersion(ctx context.Context) (int, error) {
	var version int
	err := s.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&version)
	if err != nil {
		return 0, err
	}
	return version, nil
}

// runMigration executes a single migration within a transaction.
func (s *Storage) runMigration(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction; %w", err)
	}
	defer tx.Rollback()

	// Execute the migration
	if _, err := tx.ExecContext(ctx, m.Up); err != nil {
		return fmt.Errorf("failed to execute migration; %w", err)
	}

	// Record the migration
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, description) VALUES (?, ?)",
		m.Version, m.Description,
	); err != nil {
		return fmt.Errorf("failed to record migration; %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction; %w", err)
	}

	return nil
}

// GetSchemaVersion returns the current schema version.
func (s *Storage) GetSchemaVersion(ctx context.Context) (int, error) {
	return s.getCurrentVersion(ctx)
}

// Migration represents a database schema migration.
type Migration struct {
	Version     int
	Description string
	Up          string
}

// migrations contains all schema migrations in order.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Create runs table",
		Up: `
			CREATE TABLE IF NOT EXISTS runs (
				id TEXT PRIMARY KEY,
				job_path TEXT NOT NULL,
				job_hash TEXT,
				status TEXT NOT NULL,
				exit_code INTEGER NOT NULL DEFAULT 0,
				error TEXT,
				started_at TIMESTAMP NOT NULL,
				finished_at TIMESTAMP
			);

			CREATE INDEX IF NOT EXISTS idx_runs_started_at ON runs(started_at);
			CREATE INDEX IF NOT EXISTS idx_runs_job_path ON runs(job_path);
		`,
	},
	{
		Version:     2,
		Description: "Add region counts to runs",
		Up: `
			ALTER TABLE runs ADD COLUMN total INTEGER NOT NULL DEFAULT 0;
			ALTER TABLE runs ADD COLUMN significant INTEGER NOT NULL DEFAULT 0;
			ALTER TABLE runs ADD COLUMN up INTEGER NOT NULL DEFAULT 0;
			ALTER TABLE runs ADD COLUMN down INTEGER NOT NULL DEFAULT 0;
		`,
	},
	{
		Version:     3,
		Description: "Record cymirs version on runs",
		Up:          `ALTER TABLE runs ADD COLUMN version TEXT;`,
	},
}
