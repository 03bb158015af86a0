package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// InitSchema creates all necessary tables and indexes.
func InitSchema(ctx context.Context, db *sql.DB) error {
	if err := createVisitorsTable(ctx, db); err != nil {
		return err
	}
	return createVisibleSectionsTable(ctx, db)
}

func createVisitorsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS visitors (
		id TEXT PRIMARY KEY,
		news_index INTEGER NOT NULL DEFAULT 0,
		created_at INTEGER NOT NULL,
		last_seen_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_visitors_last_seen_at ON visitors(last_seen_at);
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create visitors table: %w", err)
	}
	return nil
}

func createVisibleSectionsTable(ctx context.Context, db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS visible_sections (
		visitor_id TEXT NOT NULL REFERENCES visitors(id) ON DELETE CASCADE,
		region_id TEXT NOT NULL,
		first_seen_at INTEGER NOT NULL,
		PRIMARY KEY (visitor_id, region_id)
	) WITHOUT ROWID;
	`

	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create visible_sections table: %w", err)
	}
	return nil
}
