package preferences

import (
	"context"

	"github.com/kapturehq/kapture/internal/models"
)

// Repository owns per-destination usage records. Records are created lazily
// and never deleted.
type Repository interface {
	// GetOrCreate returns the preference for a destination, creating a
	// zero-usage record if none exists yet.
	GetOrCreate(ctx context.Context, destinationID string) (*models.DestinationPreference, error)

	// RecordUsage increments the destination's usage count and stamps the
	// last-used time, creating the record if needed.
	RecordUsage(ctx context.Context, destinationID string) error

	// Recent returns up to limit preferences, most recently used first.
	Recent(ctx context.Context, limit int) ([]*models.DestinationPreference, error)

	// Favorites returns all preferences flagged as favorite.
	Favorites(ctx context.Context) ([]*models.DestinationPreference, error)

	// SetFavorite flags or unflags a destination, creating the record if
	// needed.
	SetFavorite(ctx context.Context, destinationID string, favorite bool) error
}
