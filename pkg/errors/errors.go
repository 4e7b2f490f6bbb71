package errors

import (
	"errors"
	"fmt"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeNotFound indicates a resource was not found
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeValidation indicates a validation error
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeConflict indicates a conflict with existing data
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeUnauthorized indicates unauthorized access
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"

	// ErrorTypeInternal indicates an internal server error
	ErrorTypeInternal ErrorType = "INTERNAL"

	// ErrorTypeExternal indicates an error from external service
	ErrorTypeExternal ErrorType = "EXTERNAL"
)

// AppError represents an application error
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

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

func newError(t ErrorType, message string, err error) *AppError {
	return &AppError{Type: t, Message: message, Err: err}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return newError(ErrorTypeNotFound, message, nil)
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return newError(ErrorTypeValidation, message, nil)
}

func NewConflictError(message string) *AppError {
	return newError(ErrorTypeConflict, message, nil)
}

// NewConflictErrorWithCause is a conflict that keeps the store error, e.g.
// a unique violation on a booked slot
func NewConflictErrorWithCause(message string, err error) *AppError {
	return newError(ErrorTypeConflict, message, err)
}

func NewUnauthorizedError(message string) *AppError {
	return newError(ErrorTypeUnauthorized, message, nil)
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return newError(ErrorTypeInternal, message, err)
}

// NewExternalError wraps a failure of Redis, Typesense or another
// dependency outside the process
func NewExternalError(message string, err error) *AppError {
	return newError(ErrorTypeExternal, message, err)
}

// IsType reports whether any error in err's chain is an AppError of type t
func IsType(err error, t ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == t
	}
	return false
}

// TypeOf returns the type of the first AppError in err's chain, or
// ErrorTypeInternal when there is none.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}
