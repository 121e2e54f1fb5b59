package ops

import "errors"

// Sentinel errors for the operation registry.
var (
	ErrNotFound      = errors.New("operation not found")
	ErrAlreadyExists = errors.New("operation already registered")
	ErrEmptyName     = errors.New("operation name is empty")
)
