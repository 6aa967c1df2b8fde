package domain

import (
	"errors"
	"fmt"
)

// Common domain errors.
var (
	// ErrValidation is the base error for every input validation failure.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthorized indicates the request carries no usable identity.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrInvalidID indicates a malformed identifier (path parameter, token, etc.).
	ErrInvalidID = errors.New("invalid identifier")

	// ErrEmptyTitle is returned when a task title is empty after trimming whitespace.
	ErrEmptyTitle = errors.New("title cannot be blank")

	// ErrTitleTooLong is returned when a task title exceeds MaxTitleLength characters.
	ErrTitleTooLong = errors.New("title is too long")

	// ErrNegativeOrder is returned when an order key is below zero.
	ErrNegativeOrder = errors.New("order must be a non-negative integer")

	// ErrOrderTooLarge is returned when an order key exceeds MaxOrder.
	ErrOrderTooLarge = errors.New("order is too large")

	// ErrInvalidEmail is returned for empty or malformed email addresses.
	ErrInvalidEmail = errors.New("invalid email")

	// ErrInvalidUsername is returned for empty or oversized usernames.
	ErrInvalidUsername = errors.New("invalid username")

	// ErrInvalidPassword is returned when a password does not meet length requirements.
	ErrInvalidPassword = errors.New("invalid password")

	// ErrEmptyReorder is returned when a reorder request carries no pairs.
	ErrEmptyReorder = errors.New("no task order provided")
)

// ValidationError describes a validation failure for a single field.
// It wraps ErrValidation (or a more specific sentinel) so callers can use errors.Is.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Unwrap exposes the wrapped sentinel.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Is reports every ValidationError as matching ErrValidation, whatever it wraps.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// NewValidationError creates a ValidationError. A nil err defaults to ErrValidation.
func NewValidationError(field, message string, err error) *ValidationError {
	if err == nil {
		err = ErrValidation
	}
	return &ValidationError{
		Field:   field,
		Message: message,
		Err:     err,
	}
}

// IsValidationError reports whether err is, or wraps, a validation failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrValidation)
}
