package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrForbidden             = errors.New("forbidden")
	ErrPreconditionFailed    = errors.New("precondition failed")
	ErrConcurrencyConflict   = errors.New("concurrent recompute in flight")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)
