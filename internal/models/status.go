package models

// SyncStatus describes where an entry is in its delivery lifecycle.
//
// Persisted values are pending, synced and failed. StatusSyncing is held
// only in memory for the duration of a single delivery attempt, and
// StatusConflict is reserved for a future conflict-resolution policy.
type SyncStatus string

const (
	StatusPending  SyncStatus = "pending"
	StatusSyncing  SyncStatus = "syncing"
	StatusSynced   SyncStatus = "synced"
	StatusFailed   SyncStatus = "failed"
	StatusConflict SyncStatus = "conflict"
)

// Terminal reports whether no further automatic transition occurs from s.
// A failed entry is terminal only once its retry budget is exhausted, which
// is a property of the entry, not of the status alone; see Entry.Terminal.
func (s SyncStatus) Terminal() bool {
	return s == StatusSynced
}
