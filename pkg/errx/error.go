package errx

import (
	"errors"
	"fmt"
)

// Error represents a rich error with context and metadata
type Error struct {
	// Code is the unique error code
	Code string `json:"code"`

	// Message is the human-readable error message
	Message string `json:"message"`

	// Type categorizes the error
	Type Type `json:"type"`

	// HTTPStatus is the suggested HTTP status code
	HTTPStatus int `json:"http_status"`

	// Details contains additional context about the error
	Details map[string]interface{} `json:"details,omitempty"`

	// Err is the underlying error (not exported in JSON)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target carries the same registered code. This lets
// callers compare service failures with errors.Is against registry
// constructors without sharing pointer identity.
func (e *Error) Is(target error) bool {
	var other *Error
	if errors.As(target, &other) {
		return e.Code == other.Code
	}
	return false
}

// WithDetail adds a detail to the error and returns the error for chaining
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates a new Error
func New(message string, errType Type) *Error {
	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
		Details:    make(map[string]interface{}),
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}

	// If it's already an Error, preserve code and details
	var existingErr *Error
	if errors.As(err, &existingErr) {
		return &Error{
			Code:       existingErr.Code,
			Message:    message,
			Type:       errType,
			HTTPStatus: existingErr.HTTPStatus,
			Details:    existingErr.Details,
			Err:        err,
		}
	}

	return &Error{
		Code:       string(errType),
		Message:    message,
		Type:       errType,
		HTTPStatus: typeToHTTPStatus(errType),
		Details:    make(map[string]interface{}),
		Err:        err,
	}
}

// Wrapf wraps an error with a formatted message
func Wrapf(err error, errType Type, format string, args ...interface{}) *Error {
	return Wrap(err, fmt.Sprintf(format, args...), errType)
}

// Is checks if an error matches the target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Internal creates an internal server error
func Internal(message string) *Error {
	return New(message, TypeInternal)
}

// Validation creates a validation error
func Validation(message string) *Error {
	return New(message, TypeValidation)
}

// NotFound creates a not found error
func NotFound(message string) *Error {
	return New(message, TypeNotFound)
}

// Unauthorized creates an authorization error
func Unauthorized(message string) *Error {
	return New(message, TypeAuthorization)
}

// Conflict creates a conflict error
func Conflict(message string) *Error {
	return New(message, TypeConflict)
}
