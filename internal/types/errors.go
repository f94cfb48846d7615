package types

import "errors"

// Domain errors callers branch on. Everything else is wrapped context.
var (
	// ErrInvalidTaskFormat reports a tasks file whose structure matches
	// neither the legacy nor the tagged container format.
	ErrInvalidTaskFormat = errors.New("invalid task format")

	// ErrCycle reports a dependency cycle in the task graph.
	ErrCycle = errors.New("dependency cycle detected")

	// ErrNotConfigured reports a missing or incomplete sync configuration.
	ErrNotConfigured = errors.New("sync not configured")
)
