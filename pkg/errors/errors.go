// Package errors provides the typed error model shared by the client
// pipeline and the ingestion service.
package errors

import (
	"fmt"
)

// ErrorType defines different categories of errors
type ErrorType string

const (
	// ErrorTypeValidation marks bad input; never retried, never queued.
	ErrorTypeValidation ErrorType = "VALIDATION"
	// ErrorTypeNotFound marks a missing resource.
	ErrorTypeNotFound ErrorType = "NOT_FOUND"
	// ErrorTypeTransient marks a failure worth retrying (timeout, 5xx).
	ErrorTypeTransient ErrorType = "TRANSIENT"
	// ErrorTypePermanent marks a request-level failure that retrying
	// cannot fix (non-validation 4xx, bad credentials).
	ErrorTypePermanent ErrorType = "PERMANENT"
	// ErrorTypeConflict marks a write race on an already-existing object.
	ErrorTypeConflict ErrorType = "CONFLICT"
	// ErrorTypeInternal marks everything else.
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError is the custom error type for the application
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap allows errors.Is and errors.As to work
func (e *AppError) Unwrap() error {
	return e.Err
}

// Constructor functions for different error types

// NewValidation creates a validation error
func NewValidation(message string) error {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewNotFound creates a not found error
func NewNotFound(message string) error {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewTransient creates a retryable error
func NewTransient(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeTransient,
		Message: message,
		Err:     err,
	}
}

// NewPermanent creates a non-retryable request error
func NewPermanent(message string, err error) error {
	return &AppError{
		Type:    ErrorTypePermanent,
		Message: message,
		Err:     err,
	}
}

// NewConflict creates a conflict error
func NewConflict(message string) error {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewInternal creates an internal error
func NewInternal(message string, err error) error {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}

	// If it's already an AppError, preserve the type
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Type:    appErr.Type,
			Message: fmt.Sprintf("%s: %s", message, appErr.Message),
			Err:     appErr.Err,
		}
	}

	// Otherwise, create an internal error
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// Type checking functions

func isType(err error, t ErrorType) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Type == t
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool { return isType(err, ErrorTypeValidation) }

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool { return isType(err, ErrorTypeNotFound) }

// IsTransient checks if an error is retryable
func IsTransient(err error) bool { return isType(err, ErrorTypeTransient) }

// IsPermanent checks if an error is a non-retryable request error
func IsPermanent(err error) bool { return isType(err, ErrorTypePermanent) }

// IsConflict checks if an error is a conflict error
func IsConflict(err error) bool { return isType(err, ErrorTypeConflict) }

// IsInternal checks if an error is an internal error
func IsInternal(err error) bool { return isType(err, ErrorTypeInternal) }
