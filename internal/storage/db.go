// Package storage provides the SQLite persistence layer for Willy.
//
// It holds only what must survive a restart: subject profiles with their
// caregiver contacts, the append-only critical-event log, and fired alerts.
// Live mode state is deliberately in-memory and is not persisted here.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// DB wraps a database/sql handle on a SQLite file.
type DB struct {
	db     *sql.DB
	logger *slog.Logger
}

// New opens (creating if needed) the SQLite database at path. ":memory:"
// yields a throwaway in-memory database for tests.
func New(ctx context.Context, path string, logger *slog.Logger) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", path, err)
	}

	// A single writer connection sidesteps SQLITE_BUSY under concurrent
	// writes; reads are cheap enough to share the same connection.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		`PRAGMA journal_mode = WAL`,
		`PRAGMA foreign_keys = ON`,
		`PRAGMA busy_timeout = 5000`,
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("storage: %s: %w", pragma, err)
		}
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage: ping: %w", err)
	}

	return &DB{db: db, logger: logger}, nil
}

// Handle returns the underlying sql.DB for health checks.
func (d *DB) Handle() *sql.DB {
	return d.db
}

// Close closes the database handle.
func (d *DB) Close() error {
	return d.db.Close()
}
