package planner

import "errors"

// Sentinel errors for planning.
var (
	// ErrNoIntent indicates classification found no matching agent.
	ErrNoIntent = errors.New("no matching agent for input")

	// ErrNoProvider indicates a model call was requested without a
	// configured provider.
	ErrNoProvider = errors.New("no model provider configured")
)
