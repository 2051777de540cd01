package store

import "errors"

var (
	// ErrNotFound is returned when a goal, state, or domain does not exist.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned on an ownership mismatch.
	ErrUnauthorized = errors.New("unauthorized")
)
