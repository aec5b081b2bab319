// Package progress persists the set of thread keys that have already
// been imported, so an interrupted run can resume without creating
// duplicate tickets.
package progress

import (
	"context"
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// Store is a durable key set backed by a local SQLite database. Every
// Add is committed with full synchronous durability before it returns:
// a crash immediately afterwards must not lose the record.
type Store struct {
	db   *sqlx.DB
	path string
}

// Open opens (or creates) the progress database at path and applies
// pending schema migrations. When purge is true any previously recorded
// keys are discarded first.
func Open(path string, purge bool) (*Store, error) {
	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening progress db: %w", err)
	}

	// WAL keeps the file usable across interrupted runs; FULL makes
	// each committed insert crash-durable.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA synchronous=FULL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting synchronous mode: %w", err)
	}

	s := &Store{db: db, path: path}

	if purge {
		if _, err := db.Exec("DROP TABLE IF EXISTS imported_threads"); err != nil {
			db.Close()
			return nil, fmt.Errorf("purging progress db: %w", err)
		}
		if _, err := db.Exec("DROP TABLE IF EXISTS schema_version"); err != nil {
			db.Close()
			return nil, fmt.Errorf("purging progress db: %w", err)
		}
	}

	if err := s.runMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// runMigrations checks the current schema version and applies any
// outstanding migrations in order.
func (s *Store) runMigrations() error {
	currentVersion := 0

	var tableCount int
	err := s.db.Get(
		&tableCount,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	)
	if err != nil {
		return fmt.Errorf("checking schema_version table: %w", err)
	}

	if tableCount > 0 {
		err = s.db.Get(&currentVersion, "SELECT COALESCE(MAX(version), 0) FROM schema_version")
		if err != nil {
			return fmt.Errorf("reading schema version: %w", err)
		}
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}
		if _, err := s.db.Exec(m.sql); err != nil {
			return fmt.Errorf("applying migration v%d: %w", m.version, err)
		}
	}

	return nil
}

// Contains reports whether the given thread key has been recorded.
func (s *Store) Contains(ctx context.Context, key string) (bool, error) {
	var count int
	err := s.db.GetContext(ctx, &count,
		"SELECT COUNT(*) FROM imported_threads WHERE thread_key = ?", key)
	if err != nil {
		return false, fmt.Errorf("checking thread %s: %w", key, err)
	}
	return count > 0, nil
}

// Add durably records a thread key. Recording a key that is already
// present is a no-op, not an error.
func (s *Store) Add(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT OR IGNORE INTO imported_threads(thread_key) VALUES (?)", key)
	if err != nil {
		return fmt.Errorf("recording thread %s: %w", key, err)
	}
	return nil
}

// Count returns the number of recorded thread keys.
func (s *Store) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.GetContext(ctx, &count, "SELECT COUNT(*) FROM imported_threads")
	if err != nil {
		return 0, fmt.Errorf("counting threads: %w", err)
	}
	return count, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Discard closes the store and deletes the database file along with
// its WAL siblings. Called only after a fully successful run.
func (s *Store) Discard() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("closing progress db: %w", err)
	}
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if err := os.Remove(s.path + suffix); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", s.path+suffix, err)
		}
	}
	return nil
}
