package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS cache_entries (
    key        TEXT PRIMARY KEY,
    data       BLOB NOT NULL,
    created_at DATETIME NOT NULL
)`

// Compile-time interface satisfaction check.
var _ Store = (*SQLiteStore)(nil)

// SQLiteStore keeps the cache in a single SQLite file. It is the
// single-process backend: one file instead of a directory of entries, with
// transactional writes providing the atomicity the reader protocol requires.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens the cache database at dbPath and runs migrations.
// Use ":memory:" for an ephemeral in-process cache.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open cache database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := db.Exec(createEntriesTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create cache_entries table: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Put inserts an entry. A duplicate key silently replaces the previous
// value, matching the write-once contract's "one write wins" clause.
func (s *SQLiteStore) Put(ctx context.Context, key Key, data []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO cache_entries (key, data, created_at) VALUES (?, ?, ?)`,
		key.Filename(), data, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert entry %s: %w", key, err)
	}
	return nil
}

// Get retrieves an entry by key.
func (s *SQLiteStore) Get(ctx context.Context, key Key) ([]byte, error) {
	var data []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT data FROM cache_entries WHERE key = ?`, key.Filename(),
	).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get entry %s: %w", key, err)
	}
	return data, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
