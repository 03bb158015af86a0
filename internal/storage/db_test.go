package storage

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newFileDB opens a database in a temp directory and closes it with the test.
func newFileDB(t *testing.T) *DB {
	t.Helper()
	db, err := New(context.Background(), filepath.Join(t.TempDir(), "nested", "visitors.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// TestNew_FileSystemDatabase tests database creation with file system persistence
func TestNew_FileSystemDatabase(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newFileDB(t)

	_, err := os.Stat(db.Path())
	require.NoError(t, err, "database file should exist")

	require.NoError(t, db.TouchVisitor(ctx, "v1"))

	// The WAL file appears after the first write.
	_, err = os.Stat(db.Path() + "-wal")
	assert.NoError(t, err)

	require.NoError(t, db.Ping(ctx))
}

func TestNew_Reopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "visitors.db")

	db, err := New(ctx, path)
	require.NoError(t, err)
	_, err = db.UpdateNewsIndex(ctx, "v1", func(int) int { return 2 })
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = New(ctx, path)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	idx, err := db.GetNewsIndex(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, 2, idx)
}

func TestNewTestDB(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db, err := NewTestDB(ctx)
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	require.NoError(t, db.AddVisibleSections(ctx, "v1", []string{"news"}))
	regions, err := db.GetVisibleSections(ctx, "v1")
	require.NoError(t, err)
	assert.Equal(t, []string{"news"}, regions)
}

func TestForeignKeysEnabled(t *testing.T) {
	t.Parallel()
	db := newFileDB(t)

	var enabled int
	require.NoError(t, db.reader.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled, "reader connections should enforce foreign keys")
	require.NoError(t, db.writer.QueryRow("PRAGMA foreign_keys").Scan(&enabled))
	assert.Equal(t, 1, enabled, "writer connection should enforce foreign keys")
}

func TestSnapshotTo(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	db := newFileDB(t)

	require.NoError(t, db.AddVisibleSections(ctx, "v1", []string{"news", "stats"}))

	dest := filepath.Join(t.TempDir(), "snapshot.db")
	require.NoError(t, os.WriteFile(dest, []byte("stale"), 0o600))
	require.NoError(t, db.SnapshotTo(ctx, dest))

	copyDB, err := sql.Open("sqlite", dest)
	require.NoError(t, err)
	defer func() { _ = copyDB.Close() }()

	var count int
	require.NoError(t, copyDB.QueryRow(`SELECT COUNT(*) FROM visible_sections`).Scan(&count))
	assert.Equal(t, 2, count)
}
