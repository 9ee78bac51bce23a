package store

import (
	"errors"
	"strings"
)

var (
	// ErrValidation marks a request rejected before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound marks a reference to an entity that does not exist.
	ErrNotFound = errors.New("not found")
)

// ValidationError names the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason == "" {
		return e.Field + " is required"
	}
	return e.Field + ": " + e.Reason
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NotFoundError names the missing entity. The message omits the id, e.g. "Attendee not found".
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	if e.Entity == "" {
		return "Not found"
	}
	return strings.ToUpper(e.Entity[:1]) + e.Entity[1:] + " not found"
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
