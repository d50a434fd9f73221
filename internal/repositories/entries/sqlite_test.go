package entries

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kapturehq/kapture/internal/common"
	"github.com/kapturehq/kapture/internal/models"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE entries (
  id TEXT PRIMARY KEY,
  destination_id TEXT NOT NULL,
  destination_name TEXT NOT NULL,
  properties BLOB NOT NULL,
  created_at TEXT NOT NULL,
  synced_at TEXT,
  status TEXT NOT NULL DEFAULT 'pending',
  last_error TEXT NOT NULL DEFAULT '',
  retry_count INTEGER NOT NULL DEFAULT 0
);
`)
	require.NoError(t, err)

	return db
}

func newTestEntry(t *testing.T, createdAt time.Time) *models.Entry {
	t.Helper()
	e := models.NewEntry("db-1", "Tasks", models.Properties{
		{ID: "Name", Value: models.Title("note")},
	})
	e.CreatedAt = createdAt
	return e
}

func TestSaveAndGetByID(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	created := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	e := newTestEntry(t, created)
	require.NoError(t, r.Save(ctx, e))

	got, err := r.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, e.ID, got.ID)
	assert.Equal(t, "db-1", got.DestinationID)
	assert.Equal(t, "Tasks", got.DestinationName)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Nil(t, got.SyncedAt)
	assert.Zero(t, got.RetryCount)
	require.Len(t, got.Properties, 1)
	assert.Equal(t, "note", got.Properties[0].Value.Text)

	_, err = r.GetByID(ctx, "nope")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestListPending_OldestFirst(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)
	newer := newTestEntry(t, base.Add(time.Hour))
	older := newTestEntry(t, base)
	require.NoError(t, r.Save(ctx, newer))
	require.NoError(t, r.Save(ctx, older))

	// a synced entry must not appear
	synced := newTestEntry(t, base.Add(2*time.Hour))
	require.NoError(t, r.Save(ctx, synced))
	require.NoError(t, r.MarkSynced(ctx, synced.ID, base.Add(3*time.Hour)))

	got, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, older.ID, got[0].ID)
	assert.Equal(t, newer.ID, got[1].ID)
}

func TestListRetryEligible(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	base := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	inBudget := newTestEntry(t, base)
	require.NoError(t, r.Save(ctx, inBudget))
	require.NoError(t, r.MarkFailedTerminal(ctx, inBudget.ID, 2, "transient"))

	exhausted := newTestEntry(t, base.Add(time.Minute))
	require.NoError(t, r.Save(ctx, exhausted))
	require.NoError(t, r.MarkFailedTerminal(ctx, exhausted.ID, 3, "gone"))

	pending := newTestEntry(t, base.Add(2*time.Minute))
	require.NoError(t, r.Save(ctx, pending))

	got, err := r.ListRetryEligible(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, inBudget.ID, got[0].ID)
}

func TestMarkSynced(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := newTestEntry(t, time.Now().UTC())
	require.NoError(t, r.Save(ctx, e))
	require.NoError(t, r.RecordRetryAttempt(ctx, e.ID, 1, "flaky network"))

	at := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	require.NoError(t, r.MarkSynced(ctx, e.ID, at))

	got, err := r.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusSynced, got.Status)
	require.NotNil(t, got.SyncedAt)
	assert.True(t, at.Equal(*got.SyncedAt))
	assert.Empty(t, got.LastError)
}

func TestMarkSynced_MissingIDIsNoop(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)

	assert.NoError(t, r.MarkSynced(context.Background(), "missing", time.Now()))
}

func TestStatusSyncedImpliesSyncedAt(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a := newTestEntry(t, time.Now().UTC())
	b := newTestEntry(t, time.Now().UTC())
	require.NoError(t, r.Save(ctx, a))
	require.NoError(t, r.Save(ctx, b))
	require.NoError(t, r.MarkSynced(ctx, a.ID, time.Now().UTC()))
	require.NoError(t, r.MarkFailedTerminal(ctx, b.ID, 3, "no luck"))

	all, err := r.List(ctx, 10)
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, e := range all {
		assert.Equal(t, e.Status == models.StatusSynced, e.SyncedAt != nil,
			"syncedAt must be set iff status is synced")
	}
}

func TestMarkFailedTerminal_StoresCountAsSupplied(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := newTestEntry(t, time.Now().UTC())
	require.NoError(t, r.Save(ctx, e))
	require.NoError(t, r.MarkFailedTerminal(ctx, e.ID, 3, "server exploded"))

	got, err := r.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusFailed, got.Status)
	assert.Equal(t, 3, got.RetryCount)
	assert.Equal(t, "server exploded", got.LastError)
	assert.Nil(t, got.SyncedAt)
}

func TestRecordRetryAttempt_KeepsPending(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	e := newTestEntry(t, time.Now().UTC())
	require.NoError(t, r.Save(ctx, e))
	require.NoError(t, r.RecordRetryAttempt(ctx, e.ID, 1, "timeout"))

	got, err := r.GetByID(ctx, e.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, got.Status)
	assert.Equal(t, 1, got.RetryCount)
	assert.Equal(t, "timeout", got.LastError)

	pending, err := r.ListPending(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
}

func TestCountByStatus(t *testing.T) {
	db := setupDB(t)
	r := NewSQLiteRepository(db)
	ctx := context.Background()

	a := newTestEntry(t, time.Now().UTC())
	b := newTestEntry(t, time.Now().UTC())
	c := newTestEntry(t, time.Now().UTC())
	for _, e := range []*models.Entry{a, b, c} {
		require.NoError(t, r.Save(ctx, e))
	}
	require.NoError(t, r.MarkSynced(ctx, a.ID, time.Now().UTC()))

	counts, err := r.CountByStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, counts[models.StatusSynced])
	assert.Equal(t, 2, counts[models.StatusPending])
}
