package domain

import "errors"

// Failure taxonomy shared by every core operation. Handlers translate
// these into HTTP statuses; nothing below this layer knows about HTTP.
var (
	ErrNotFound         = errors.New("not found")
	ErrForbidden        = errors.New("forbidden")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrInvalidState     = errors.New("invalid state")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrConflict         = errors.New("conflict")
)
