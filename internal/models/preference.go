package models

import "time"

// DestinationPreference is a per-destination usage signal. Records are
// created lazily on first use and never deleted; LastUsedAt and UsageCount
// change only through the preference store's RecordUsage.
type DestinationPreference struct {
	DestinationID string
	IsFavorite    bool
	LastUsedAt    time.Time
	UsageCount    int
	PreferredHour *int
}
