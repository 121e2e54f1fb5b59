package orchestrator

import "errors"

var (
	// ErrEmptyCommand indicates a command with no text.
	ErrEmptyCommand = errors.New("empty command")

	// ErrMissingPlanner indicates construction without a planner.
	ErrMissingPlanner = errors.New("planner is required")

	// ErrMissingHub indicates construction without a hub.
	ErrMissingHub = errors.New("hub is required")

	// ErrMissingSessions indicates construction without a session registry.
	ErrMissingSessions = errors.New("session registry is required")
)
