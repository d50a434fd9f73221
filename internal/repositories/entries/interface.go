package entries

import (
	"context"
	"time"

	"github.com/kapturehq/kapture/internal/models"
)

// Repository owns the captured-entry lifecycle. All status transitions go
// through these methods; callers never mutate persisted records directly.
// Every mutating call commits durably before returning success, so an entry
// that was queued is never silently lost.
type Repository interface {
	// Save persists a new entry with status pending. Failures wrap
	// common.ErrPersistence; the caller must not assume partial success.
	Save(ctx context.Context, entry *models.Entry) error

	// GetByID returns a single entry, or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Entry, error)

	// ListPending returns all pending entries, oldest created first.
	ListPending(ctx context.Context) ([]*models.Entry, error)

	// ListRetryEligible returns failed entries whose retry count is still
	// below maxAttempts, oldest created first.
	ListRetryEligible(ctx context.Context, maxAttempts int) ([]*models.Entry, error)

	// MarkSynced transitions the entry to synced, records the sync time and
	// clears the last error. A missing id is a no-op, not an error.
	MarkSynced(ctx context.Context, id string, at time.Time) error

	// MarkFailedTerminal transitions the entry to failed with the given
	// retry count and failure reason. The count is stored as supplied; the
	// store never increments counters itself.
	MarkFailedTerminal(ctx context.Context, id string, retryCount int, reason string) error

	// RecordRetryAttempt keeps the entry pending (eligible for the next
	// pass), sets the new retry count and records the failure reason.
	RecordRetryAttempt(ctx context.Context, id string, newRetryCount int, reason string) error

	// List returns up to limit entries, most recently created first.
	List(ctx context.Context, limit int) ([]*models.Entry, error)

	// CountByStatus returns the number of entries per status.
	CountByStatus(ctx context.Context) (map[models.SyncStatus]int, error)
}
