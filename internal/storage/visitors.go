package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/garyellow/itdept-site/internal/errors"
)

const upsertVisitor = `
	INSERT INTO visitors (id, news_index, created_at, last_seen_at)
	VALUES (?, 0, ?, ?)
	ON CONFLICT(id) DO UPDATE SET last_seen_at = excluded.last_seen_at`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (db *DB) touch(ctx context.Context, ex execer, visitorID string) error {
	now := db.now().Unix()
	_, err := ex.ExecContext(ctx, upsertVisitor, visitorID, now, now)
	return err
}

// TouchVisitor creates the visitor if needed and refreshes last_seen_at.
func (db *DB) TouchVisitor(ctx context.Context, visitorID string) error {
	if visitorID == "" {
		return apperrors.NewValidationError("visitor_id", "must not be empty")
	}
	if err := db.touch(ctx, db.writer, visitorID); err != nil {
		return apperrors.NewStorageError("touch_visitor", err)
	}
	return nil
}

// GetNewsIndex returns the stored carousel position. Unknown visitors are
// at position 0. The value is not range checked.
func (db *DB) GetNewsIndex(ctx context.Context, visitorID string) (int, error) {
	var idx int
	err := db.reader.QueryRowContext(ctx,
		`SELECT news_index FROM visitors WHERE id = ?`, visitorID).Scan(&idx)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, apperrors.NewStorageError("get_news_index", err)
	}
	return idx, nil
}

// UpdateNewsIndex applies fn to the stored carousel position inside one
// writer transaction and returns the stored result.
func (db *DB) UpdateNewsIndex(ctx context.Context, visitorID string, fn func(current int) int) (int, error) {
	if visitorID == "" {
		return 0, apperrors.NewValidationError("visitor_id", "must not be empty")
	}

	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, apperrors.NewStorageError("update_news_index", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := db.touch(ctx, tx, visitorID); err != nil {
		return 0, apperrors.NewStorageError("update_news_index", err)
	}

	var current int
	if err := tx.QueryRowContext(ctx,
		`SELECT news_index FROM visitors WHERE id = ?`, visitorID).Scan(&current); err != nil {
		return 0, apperrors.NewStorageError("update_news_index", err)
	}

	next := fn(current)
	if _, err := tx.ExecContext(ctx,
		`UPDATE visitors SET news_index = ? WHERE id = ?`, next, visitorID); err != nil {
		return 0, apperrors.NewStorageError("update_news_index", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, apperrors.NewStorageError("update_news_index", err)
	}
	return next, nil
}

// AddVisibleSections records regions as seen. Regions already stored keep
// their original first_seen_at.
func (db *DB) AddVisibleSections(ctx context.Context, visitorID string, regions []string) error {
	if visitorID == "" {
		return apperrors.NewValidationError("visitor_id", "must not be empty")
	}
	if len(regions) == 0 {
		return nil
	}

	tx, err := db.writer.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError("add_visible_sections", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := db.touch(ctx, tx, visitorID); err != nil {
		return apperrors.NewStorageError("add_visible_sections", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR IGNORE INTO visible_sections (visitor_id, region_id, first_seen_at) VALUES (?, ?, ?)`)
	if err != nil {
		return apperrors.NewStorageError("add_visible_sections", err)
	}
	defer func() { _ = stmt.Close() }()

	now := db.now().Unix()
	for _, region := range regions {
		if _, err := stmt.ExecContext(ctx, visitorID, region, now); err != nil {
			return apperrors.NewStorageError("add_visible_sections", fmt.Errorf("region %s: %w", region, err))
		}
	}

	if err := tx.Commit(); err != nil {
		return apperrors.NewStorageError("add_visible_sections", err)
	}
	return nil
}

// GetVisibleSections returns the regions a visitor has seen, sorted.
func (db *DB) GetVisibleSections(ctx context.Context, visitorID string) ([]string, error) {
	rows, err := db.reader.QueryContext(ctx,
		`SELECT region_id FROM visible_sections WHERE visitor_id = ? ORDER BY region_id`, visitorID)
	if err != nil {
		return nil, apperrors.NewStorageError("get_visible_sections", err)
	}
	defer func() { _ = rows.Close() }()

	regions := []string{}
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			return nil, apperrors.NewStorageError("get_visible_sections", err)
		}
		regions = append(regions, region)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("get_visible_sections", err)
	}
	return regions, nil
}

// DeleteInactiveVisitors removes visitors not seen within ttl along with
// their seen regions. It returns the number of visitors removed.
func (db *DB) DeleteInactiveVisitors(ctx context.Context, ttl time.Duration) (int64, error) {
	cutoff := db.now().Add(-ttl).Unix()
	res, err := db.writer.ExecContext(ctx, `DELETE FROM visitors WHERE last_seen_at < ?`, cutoff)
	if err != nil {
		return 0, apperrors.NewStorageError("delete_inactive_visitors", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStorageError("delete_inactive_visitors", err)
	}
	return n, nil
}

// CountVisitors returns the number of stored visitors.
func (db *DB) CountVisitors(ctx context.Context) (int, error) {
	var count int
	if err := db.reader.QueryRowContext(ctx, `SELECT COUNT(*) FROM visitors`).Scan(&count); err != nil {
		return 0, apperrors.NewStorageError("count_visitors", err)
	}
	return count, nil
}
