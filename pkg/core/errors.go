package core

import "errors"

// Common errors.
var (
	// ErrNotFound is returned by Get when no entity has the given id.
	// During reconciliation it means "deleted concurrently" and is skipped.
	ErrNotFound = errors.New("entity not found")

	// ErrBackendUnavailable signals that the active backend cannot be
	// reached (no session, offline). Callers own the retry policy.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrWriteRejected signals backend-side validation failure for a
	// single entity write.
	ErrWriteRejected = errors.New("write rejected by backend")
)
