package domain

import "errors"

// Load failures surfaced to the caller. Player command failures during
// user actions are recovered locally and never reach these.
var (
	// ErrBackendUnavailable means no active backend is configured
	ErrBackendUnavailable = errors.New("no active backend available")

	// ErrStreamResolutionFailed means the backend could not resolve a
	// stream for the item
	ErrStreamResolutionFailed = errors.New("stream resolution failed")
)
