package domain

import "errors"

// Error kinds surfaced to callers. Services wrap them with context using
// fmt.Errorf("%w: ...") and the HTTP layer maps them with errors.Is.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrValidation   = errors.New("validation failed")
	ErrConflict     = errors.New("conflict")
)
