package transport

import (
	"errors"
	"fmt"
)

// Error represents the failure variants a Transport can produce
type Error interface {
	error
	Type() ErrorType
}

// ErrorType defines the category of transport error
type ErrorType string

const (
	// UnreachableError marks connectivity-level failures: the server was
	// never reached, so no HTTP status exists. These are retryable.
	UnreachableError ErrorType = "unreachable"
	// StatusError marks HTTP-level failures: the server responded with an
	// error status. These are never retried.
	StatusError ErrorType = "status"
	// ValidationError marks construction and argument failures.
	ValidationError ErrorType = "validation"
)

// statusCarrier is matched via errors.As to classify failures. Any error
// exposing an HTTP status counts as an HTTP-level failure, including types
// defined outside this package.
type statusCarrier interface {
	StatusCode() int
}

// unreachableError represents a connectivity-level failure
type unreachableError struct {
	message string
	wrapped error
}

func (e *unreachableError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("unreachable: %s: %v", e.message, e.wrapped)
	}
	return fmt.Sprintf("unreachable: %s", e.message)
}

func (e *unreachableError) Type() ErrorType {
	return UnreachableError
}

func (e *unreachableError) Unwrap() error {
	return e.wrapped
}

// statusError represents an HTTP error response
type statusError struct {
	message    string
	statusCode int
	body       []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("HTTP error: %s (status: %d)", e.message, e.statusCode)
}

func (e *statusError) Type() ErrorType {
	return StatusError
}

func (e *statusError) StatusCode() int {
	return e.statusCode
}

func (e *statusError) Body() []byte {
	return e.body
}

// validationError represents construction and argument errors
type validationError struct {
	message string
	field   string
}

func (e *validationError) Error() string {
	if e.field != "" {
		return fmt.Sprintf("validation error: %s (field: %s)", e.message, e.field)
	}
	return fmt.Sprintf("validation error: %s", e.message)
}

func (e *validationError) Type() ErrorType {
	return ValidationError
}

// NewUnreachableError creates a new connectivity-level error
func NewUnreachableError(message string, wrapped error) Error {
	return &unreachableError{
		message: message,
		wrapped: wrapped,
	}
}

// NewStatusError creates a new HTTP-level error
func NewStatusError(message string, statusCode int, body []byte) Error {
	return &statusError{
		message:    message,
		statusCode: statusCode,
		body:       body,
	}
}

// NewValidationError creates a new validation error
func NewValidationError(message, field string) Error {
	return &validationError{
		message: message,
		field:   field,
	}
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errorType ErrorType) bool {
	if err == nil {
		return false
	}
	var transportErr Error
	if errors.As(err, &transportErr) {
		return transportErr.Type() == errorType
	}
	return false
}

// HTTPStatus extracts the HTTP status carried by an error, if any.
// The second return value reports whether a status was present.
func HTTPStatus(err error) (int, bool) {
	var carrier statusCarrier
	if errors.As(err, &carrier) {
		return carrier.StatusCode(), true
	}
	return 0, false
}

// IsRetryable reports whether a failure may be resent. A failure is
// retryable exactly when it carries no HTTP status: the server was never
// reached. A response with an error status is final.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	_, hasStatus := HTTPStatus(err)
	return !hasStatus
}
