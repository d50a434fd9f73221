// Package common defines shared sentinel errors used across the storage,
// sync and CLI layers of Kapture. Callers should use errors.Is to match
// these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound    = errors.New("not found")
	ErrPersistence = errors.New("persistence failure")

	// Auth errors (no stored credential, or the remote rejected it).
	ErrNotAuthenticated = errors.New("not authenticated")

	// Validation errors for property payloads.
	ErrInvalidProperty = errors.New("invalid property value")
)
