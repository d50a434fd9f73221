package notion

import (
	"context"
	"sync"
	"time"

	"github.com/kapturehq/kapture/internal/models"
)

// destinationAPI is the slice of Client the cache needs.
type destinationAPI interface {
	SearchDatabases(ctx context.Context) ([]models.Destination, error)
	FetchDatabase(ctx context.Context, id string) (*models.Destination, error)
}

// Destinations caches database discovery results so repeated lookups during
// capture and ranking don't hammer the API.
type Destinations struct {
	api destinationAPI
	ttl time.Duration

	// now is a clock seam for tests.
	now func() time.Time

	mu        sync.Mutex
	cached    []models.Destination
	fetchedAt time.Time
}

func NewDestinations(api destinationAPI) *Destinations {
	return &Destinations{
		api: api,
		ttl: 5 * time.Minute,
		now: time.Now,
	}
}

// List returns the accessible destinations, refreshing the cache when it is
// stale or when forceRefresh is set.
func (d *Destinations) List(ctx context.Context, forceRefresh bool) ([]models.Destination, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !forceRefresh && !d.fetchedAt.IsZero() && d.now().Sub(d.fetchedAt) < d.ttl {
		return d.cached, nil
	}

	fresh, err := d.api.SearchDatabases(ctx)
	if err != nil {
		return nil, err
	}

	d.cached = fresh
	d.fetchedAt = d.now()
	return fresh, nil
}

// Get resolves a destination by id, checking the cache before calling the
// API.
func (d *Destinations) Get(ctx context.Context, id string) (*models.Destination, error) {
	d.mu.Lock()
	for _, dest := range d.cached {
		if dest.ID == id {
			d.mu.Unlock()
			return &dest, nil
		}
	}
	d.mu.Unlock()

	return d.api.FetchDatabase(ctx, id)
}

// Invalidate drops the cache; the next List call hits the API.
func (d *Destinations) Invalidate() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cached = nil
	d.fetchedAt = time.Time{}
}
