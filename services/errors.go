package services

import "github.com/pkg/errors"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrIncomplete   = errors.New("missing required fields")
	ErrInvalidInput = errors.New("invalid input")
)

// FieldError describes one rejected value of a patch body.
type FieldError struct {
	Field  string
	Reason string
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Reason
}

func (e *FieldError) Unwrap() error {
	return ErrInvalidInput
}
