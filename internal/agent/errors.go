package agent

import "errors"

// Sentinel errors for agent operations.
var (
	// ErrNoModelClient indicates no model client is configured.
	ErrNoModelClient = errors.New("no model client configured")

	// ErrEmptyMessage indicates the caller supplied no user message.
	ErrEmptyMessage = errors.New("user message is empty")
)
