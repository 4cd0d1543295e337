package model

import "errors"

// Error kinds surfaced to callers. Concrete errors across the codebase wrap
// exactly one of these so that the HTTP layer can map them with errors.Is.
// Anything that wraps none of them is treated as an upstream failure.
var (
	ErrInvalidArgument = errors.New("invalid argument")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
)
