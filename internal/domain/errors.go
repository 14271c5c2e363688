package domain

import "errors"

// Sentinel errors for domain-level error discrimination.
// Services wrap these so callers can branch on them without leaking infrastructure details.
var (
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")
	ErrBadRequest      = errors.New("bad request")
	ErrInvalidPosition = errors.New("invalid position")
)
