// Package storage persists per-visitor state (carousel position and seen
// regions) in SQLite.
package storage

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver for database/sql

	"github.com/garyellow/itdept-site/internal/config"
)

// memoryPath opens a private in-memory database.
const memoryPath = ":memory:"

// DB wraps a single-connection writer pool and a reader pool over the same
// SQLite file. All writes go through the writer so they are serialized in
// the process instead of contending on SQLite's file lock.
type DB struct {
	writer *sql.DB
	reader *sql.DB
	path   string
	now    func() time.Time
}

// New opens (creating if needed) the database at dbPath and initializes the
// schema.
func New(ctx context.Context, dbPath string) (*DB, error) {
	if dbPath != memoryPath {
		dir := filepath.Dir(dbPath)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("failed to create database directory: %w", err)
			}
		}
	}

	writer, err := open(ctx, dbPath)
	if err != nil {
		return nil, err
	}
	writer.SetMaxOpenConns(1)
	writer.SetMaxIdleConns(1)
	writer.SetConnMaxLifetime(0)

	reader := writer
	if dbPath != memoryPath {
		reader, err = open(ctx, dbPath)
		if err != nil {
			_ = writer.Close()
			return nil, err
		}
		reader.SetMaxOpenConns(4)
		reader.SetMaxIdleConns(4)
		reader.SetConnMaxLifetime(config.DatabaseConnMaxLifetime)
	}

	db := &DB{writer: writer, reader: reader, path: dbPath, now: time.Now}

	if err := InitSchema(ctx, writer); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// open opens a pool whose every connection carries the pragmas.
// Pragmas are per connection, so they go in the DSN rather than one Exec.
func open(ctx context.Context, dbPath string) (*sql.DB, error) {
	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", config.DatabaseBusyTimeout.Milliseconds()))
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "synchronous(NORMAL)")

	dsn := "file:" + dbPath + "?" + q.Encode()
	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return conn, nil
}

// Close closes both pools.
func (db *DB) Close() error {
	var err error
	if db.reader != nil && db.reader != db.writer {
		err = db.reader.Close()
	}
	if db.writer != nil {
		if werr := db.writer.Close(); err == nil {
			err = werr
		}
	}
	return err
}

// Path returns the database file path
func (db *DB) Path() string {
	return db.path
}

// Ping verifies both pools can reach the database.
func (db *DB) Ping(ctx context.Context) error {
	if err := db.writer.PingContext(ctx); err != nil {
		return fmt.Errorf("writer ping: %w", err)
	}
	if err := db.reader.PingContext(ctx); err != nil {
		return fmt.Errorf("reader ping: %w", err)
	}
	return nil
}

// SnapshotTo writes a consistent copy of the database to dest using
// VACUUM INTO. An existing file at dest is replaced.
func (db *DB) SnapshotTo(ctx context.Context, dest string) error {
	if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove old snapshot: %w", err)
	}
	if _, err := db.writer.ExecContext(ctx, "VACUUM INTO ?", dest); err != nil {
		return fmt.Errorf("vacuum into %s: %w", dest, err)
	}
	return nil
}

// NewTestDB creates an in-memory database for testing.
func NewTestDB(ctx context.Context) (*DB, error) {
	return New(ctx, memoryPath)
}
