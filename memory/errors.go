package memory

import "errors"

var (
	// ErrUnknownCategory indicates a category outside the fixed set.
	ErrUnknownCategory = errors.New("unknown memory category")

	// ErrNotFound indicates no record exists with the given ID.
	ErrNotFound = errors.New("memory record not found")

	// ErrEmptyContent indicates a write with no content.
	ErrEmptyContent = errors.New("empty record content")

	// ErrClosed indicates an operation on a closed gateway.
	ErrClosed = errors.New("memory gateway closed")
)
