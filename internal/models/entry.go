// Package models defines the captured-entry types, the tagged property
// value variant, and destination records shared across the repositories,
// the sync engine and the CLI.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one locally captured record awaiting (or having completed)
// delivery to the remote store. DestinationID, DestinationName, Properties
// and CreatedAt are immutable after creation; edits create a new Entry.
type Entry struct {
	ID              string
	DestinationID   string
	DestinationName string
	Properties      Properties
	CreatedAt       time.Time
	SyncedAt        *time.Time
	Status          SyncStatus
	LastError       string
	RetryCount      int
}

// NewEntry builds a pending entry with a fresh id and creation timestamp.
func NewEntry(destinationID, destinationName string, props Properties) *Entry {
	return &Entry{
		ID:              uuid.NewString(),
		DestinationID:   destinationID,
		DestinationName: destinationName,
		Properties:      props,
		CreatedAt:       time.Now().UTC(),
		Status:          StatusPending,
	}
}

// Terminal reports whether no further automatic transition will occur:
// the entry is synced, or it is failed with its retry budget exhausted.
func (e *Entry) Terminal(maxAttempts int) bool {
	if e.Status == StatusSynced {
		return true
	}
	return e.Status == StatusFailed && e.RetryCount >= maxAttempts
}
