package logbook

import (
	"errors"
	"fmt"
)

var (
	ErrValidation   = errors.New("validation failed")
	ErrFormat       = errors.New("invalid date format")
	ErrNotFound     = errors.New("record not found")
	ErrConflict     = errors.New("already exists")
	ErrForbidden    = errors.New("operation not permitted for this role")
	ErrUnauthorized = errors.New("invalid credentials")
)

// ValidationError names the field that rejected a record. It matches
// ErrValidation with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// FormatError is returned for text that is not a DD.MM.YYYY calendar date.
type FormatError struct {
	Input string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid date %q, expected DD.MM.YYYY", e.Input)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

func missing(field string) error {
	return &ValidationError{Field: field, Reason: "required"}
}

func unknownValue(field, value string) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf("unknown value %q", value)}
}
