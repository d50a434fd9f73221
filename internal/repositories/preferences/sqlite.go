// Package preferences persists per-destination usage statistics used for
// suggestion ranking.
package preferences

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/kapturehq/kapture/internal/common"
	"github.com/kapturehq/kapture/internal/dbx"
	"github.com/kapturehq/kapture/internal/models"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX

	// now is a clock seam for tests.
	now func() time.Time
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db, now: time.Now}
}

const prefColumns = `destination_id, is_favorite, last_used_at, usage_count, preferred_hour`

// GetOrCreate returns the preference for a destination, inserting a
// zero-usage record on first access.
func (r *SQLiteRepository) GetOrCreate(ctx context.Context, destinationID string) (*models.DestinationPreference, error) {
	p, err := r.get(ctx, destinationID)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, err
	}

	query := `INSERT INTO destination_preferences (destination_id, is_favorite, last_used_at, usage_count)
			values (?, 0, ?, 0)
			ON CONFLICT(destination_id) DO NOTHING`
	if _, err := r.db.ExecContext(ctx, query,
		destinationID, r.now().UTC().Format(time.RFC3339Nano)); err != nil {
		return nil, fmt.Errorf("%w: failed to insert preference: %v", common.ErrPersistence, err)
	}

	return r.get(ctx, destinationID)
}

// RecordUsage upserts the preference, incrementing usage and stamping the
// last-used time.
func (r *SQLiteRepository) RecordUsage(ctx context.Context, destinationID string) error {
	query := `INSERT INTO destination_preferences (destination_id, is_favorite, last_used_at, usage_count)
			values (?, 0, ?, 1)
			ON CONFLICT(destination_id) DO UPDATE SET
				usage_count = usage_count + 1,
				last_used_at = excluded.last_used_at`
	_, err := r.db.ExecContext(ctx, query,
		destinationID, r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: failed to record usage: %v", common.ErrPersistence, err)
	}
	return nil
}

// Recent returns up to limit preferences ordered by recency of use.
func (r *SQLiteRepository) Recent(ctx context.Context, limit int) ([]*models.DestinationPreference, error) {
	query := `select ` + prefColumns + ` from destination_preferences
			order by last_used_at desc limit ?`
	return r.list(ctx, query, limit)
}

// Favorites returns all preferences flagged as favorite.
func (r *SQLiteRepository) Favorites(ctx context.Context) ([]*models.DestinationPreference, error) {
	query := `select ` + prefColumns + ` from destination_preferences
			where is_favorite=1 order by last_used_at desc`
	return r.list(ctx, query)
}

// SetFavorite flags or unflags a destination, creating the record if needed.
func (r *SQLiteRepository) SetFavorite(ctx context.Context, destinationID string, favorite bool) error {
	query := `INSERT INTO destination_preferences (destination_id, is_favorite, last_used_at, usage_count)
			values (?, ?, ?, 0)
			ON CONFLICT(destination_id) DO UPDATE SET is_favorite = excluded.is_favorite`
	_, err := r.db.ExecContext(ctx, query,
		destinationID, boolToInt(favorite), r.now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("%w: failed to set favorite: %v", common.ErrPersistence, err)
	}
	return nil
}

func (r *SQLiteRepository) get(ctx context.Context, destinationID string) (*models.DestinationPreference, error) {
	query := `select ` + prefColumns + ` from destination_preferences where destination_id=?`
	row := r.db.QueryRowContext(ctx, query, destinationID)

	p, err := scanPreference(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select preference: %w", err)
	}
	return p, nil
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.DestinationPreference, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select preferences: %w", err)
	}
	defer rows.Close()

	var result []*models.DestinationPreference
	for rows.Next() {
		p, err := scanPreference(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPreference(row rowScanner) (*models.DestinationPreference, error) {
	var (
		p          models.DestinationPreference
		favorite   int
		lastUsedAt string
		hour       sql.NullInt64
	)

	if err := row.Scan(&p.DestinationID, &favorite, &lastUsedAt, &p.UsageCount, &hour); err != nil {
		return nil, err
	}

	p.IsFavorite = favorite != 0

	lastUsed, err := time.Parse(time.RFC3339Nano, lastUsedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse last_used_at: %w", err)
	}
	p.LastUsedAt = lastUsed

	if hour.Valid {
		h := int(hour.Int64)
		p.PreferredHour = &h
	}

	return &p, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
