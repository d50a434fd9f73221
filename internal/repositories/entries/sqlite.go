// Package entries persists captured entries in the local SQLite database.
package entries

import (
	"context"
	"database/sql"
	"encoding/json"
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
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const entryColumns = `id, destination_id, destination_name, properties, created_at, synced_at, status, last_error, retry_count`

// Save inserts a new entry with status pending.
func (r *SQLiteRepository) Save(ctx context.Context, e *models.Entry) error {
	props, err := json.Marshal(e.Properties)
	if err != nil {
		return fmt.Errorf("failed to encode properties: %w", err)
	}

	query := `INSERT INTO entries (` + entryColumns + `)
			values (?, ?, ?, ?, ?, NULL, ?, '', 0)`
	_, err = r.db.ExecContext(ctx, query,
		e.ID, e.DestinationID, e.DestinationName, props,
		e.CreatedAt.UTC().Format(time.RFC3339Nano), models.StatusPending)
	if err != nil {
		return fmt.Errorf("%w: failed to insert entry: %v", common.ErrPersistence, err)
	}
	return nil
}

// GetByID returns a single entry by its identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*models.Entry, error) {
	query := `select ` + entryColumns + ` from entries where id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	e, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select entry: %w", err)
	}
	return e, nil
}

// ListPending returns all pending entries ordered oldest-created-first to
// bound staleness within a dispatch pass.
func (r *SQLiteRepository) ListPending(ctx context.Context) ([]*models.Entry, error) {
	query := `select ` + entryColumns + ` from entries
			where status=? order by created_at asc, id asc`
	return r.list(ctx, query, models.StatusPending)
}

// ListRetryEligible returns failed entries still inside the retry budget,
// ordered oldest-created-first.
func (r *SQLiteRepository) ListRetryEligible(ctx context.Context, maxAttempts int) ([]*models.Entry, error) {
	query := `select ` + entryColumns + ` from entries
			where status=? and retry_count < ? order by created_at asc, id asc`
	return r.list(ctx, query, models.StatusFailed, maxAttempts)
}

// List returns up to limit entries, most recently created first.
func (r *SQLiteRepository) List(ctx context.Context, limit int) ([]*models.Entry, error) {
	query := `select ` + entryColumns + ` from entries
			order by created_at desc, id desc limit ?`
	return r.list(ctx, query, limit)
}

func (r *SQLiteRepository) list(ctx context.Context, query string, args ...any) ([]*models.Entry, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select entries: %w", err)
	}
	defer rows.Close()

	var result []*models.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// MarkSynced transitions the entry to synced. Zero rows affected means the
// entry is already gone or synced, which is not an error.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id string, at time.Time) error {
	query := `update entries set status=?, synced_at=?, last_error='' where id=?`
	_, err := r.db.ExecContext(ctx, query,
		models.StatusSynced, at.UTC().Format(time.RFC3339Nano), id)
	if err != nil {
		return fmt.Errorf("%w: failed to mark entry synced: %v", common.ErrPersistence, err)
	}
	return nil
}

// MarkFailedTerminal transitions the entry to failed with the supplied
// retry count and reason.
func (r *SQLiteRepository) MarkFailedTerminal(ctx context.Context, id string, retryCount int, reason string) error {
	query := `update entries set status=?, retry_count=?, last_error=? where id=?`
	_, err := r.db.ExecContext(ctx, query, models.StatusFailed, retryCount, reason, id)
	if err != nil {
		return fmt.Errorf("%w: failed to mark entry failed: %v", common.ErrPersistence, err)
	}
	return nil
}

// RecordRetryAttempt stores a soft failure: the entry stays pending so the
// next pass picks it up again.
func (r *SQLiteRepository) RecordRetryAttempt(ctx context.Context, id string, newRetryCount int, reason string) error {
	query := `update entries set status=?, retry_count=?, last_error=? where id=?`
	_, err := r.db.ExecContext(ctx, query, models.StatusPending, newRetryCount, reason, id)
	if err != nil {
		return fmt.Errorf("%w: failed to record retry attempt: %v", common.ErrPersistence, err)
	}
	return nil
}

// CountByStatus returns the number of entries in each status.
func (r *SQLiteRepository) CountByStatus(ctx context.Context) (map[models.SyncStatus]int, error) {
	rows, err := r.db.QueryContext(ctx, `select status, count(*) from entries group by status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.SyncStatus]int)
	for rows.Next() {
		var status models.SyncStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.Entry, error) {
	var (
		e         models.Entry
		props     []byte
		createdAt string
		syncedAt  sql.NullString
	)

	if err := row.Scan(&e.ID, &e.DestinationID, &e.DestinationName, &props,
		&createdAt, &syncedAt, &e.Status, &e.LastError, &e.RetryCount); err != nil {
		return nil, err
	}

	if err := json.Unmarshal(props, &e.Properties); err != nil {
		return nil, fmt.Errorf("failed to decode properties: %w", err)
	}

	created, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("failed to parse created_at: %w", err)
	}
	e.CreatedAt = created

	if syncedAt.Valid {
		synced, err := time.Parse(time.RFC3339Nano, syncedAt.String)
		if err != nil {
			return nil, fmt.Errorf("failed to parse synced_at: %w", err)
		}
		e.SyncedAt = &synced
	}

	return &e, nil
}
