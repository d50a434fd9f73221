package services

import (
	"context"
	"fmt"
	"time"

	"github.com/kapturehq/kapture/internal/logging"
	"github.com/kapturehq/kapture/internal/models"
	"github.com/kapturehq/kapture/internal/repositories/preferences"
)

// suggestionWindow is how far (in hours) a preference's last use may be
// from the capture time and still count as a time-of-day match.
const suggestionWindow = 2

// recentLookback is how many recently used destinations the ranker
// considers.
const recentLookback = 20

// DestinationSource resolves destination ids to live destinations. The
// cached notion.Destinations repository satisfies it.
type DestinationSource interface {
	Get(ctx context.Context, id string) (*models.Destination, error)
}

// RouterService suggests a likely destination for a new capture based on
// past usage. It is a read-only consumer of the preference store plus
// remote lookups, independent of the dispatch loop.
type RouterService struct {
	prefs        preferences.Repository
	destinations DestinationSource
	log          logging.Logger
}

func NewRouterService(prefs preferences.Repository, destinations DestinationSource, log logging.Logger) *RouterService {
	return &RouterService{prefs: prefs, destinations: destinations, log: log}
}

// Suggest returns the destination most likely wanted at forTime, or nil if
// there is no usable signal yet.
//
// The hour comparison is a plain absolute difference on the 24-hour clock,
// not a circular one: 23:00 and 01:00 compute as 22 hours apart and fall
// back to the recency path.
func (s *RouterService) Suggest(ctx context.Context, forTime time.Time) (*models.Destination, error) {
	prefs, err := s.prefs.Recent(ctx, recentLookback)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	hour := forTime.Hour()
	for _, p := range prefs {
		diff := hour - p.LastUsedAt.Hour()
		if diff < 0 {
			diff = -diff
		}
		if diff > suggestionWindow {
			continue
		}
		if d, err := s.destinations.Get(ctx, p.DestinationID); err == nil {
			return d, nil
		}
	}

	// Fallback: most recent usage overall, regardless of time of day.
	for _, p := range prefs {
		if d, err := s.destinations.Get(ctx, p.DestinationID); err == nil {
			return d, nil
		}
	}

	return nil, nil
}

// RecordCapture notes that a destination was just used. Failures are
// logged and swallowed; ranking signal is not worth failing a capture over.
func (s *RouterService) RecordCapture(ctx context.Context, destinationID string) {
	if err := s.prefs.RecordUsage(ctx, destinationID); err != nil {
		s.log.Warn(ctx, "failed to record destination usage",
			"destination", destinationID, "error", err)
	}
}

// Suggestions returns up to limit recently used destinations that still
// resolve, most recent first.
func (s *RouterService) Suggestions(ctx context.Context, limit int) ([]models.Destination, error) {
	prefs, err := s.prefs.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to read preferences: %w", err)
	}

	result := make([]models.Destination, 0, len(prefs))
	for _, p := range prefs {
		d, err := s.destinations.Get(ctx, p.DestinationID)
		if err != nil {
			s.log.Debug(ctx, "skipping unresolvable destination",
				"destination", p.DestinationID, "error", err)
			continue
		}
		result = append(result, *d)
	}
	return result, nil
}
