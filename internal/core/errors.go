package core

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is matched by every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound is returned when no record carries the requested id.
	ErrNotFound = errors.New("expense not found")

	ErrMissingField     = errors.New("required field missing")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyDescription = errors.New("empty description")
	ErrUnknownCategory  = errors.New("unknown category")
	ErrUnknownMember    = errors.New("payer is not on the team roster")
	ErrReceiptMismatch  = errors.New("receipt reference must be present exactly when a receipt is attached")
)

// ValidationError reports the first field of an input that failed validation.
type ValidationError struct {
	Field string
	Err   error
	// Suggestion holds a close valid value when one exists (e.g. a category).
	Suggestion string
}

func (e *ValidationError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Field, e.Err)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Is lets errors.Is(err, ErrValidation) match any validation failure.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field string, err error) *ValidationError {
	return &ValidationError{Field: field, Err: err}
}
