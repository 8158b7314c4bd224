package core

import "errors"

var (
	// ErrValidation marks a request that is missing required input.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a lookup for a record that does not exist.
	ErrNotFound = errors.New("not found")
	// ErrInternal wraps detection and storage failures.
	ErrInternal = errors.New("internal error")
)
