package httpclient

import (
	"errors"
	"fmt"
)

// ErrorCode classifies transport errors.
type ErrorCode int

const (
	// ErrCodeTimeout indicates the request exceeded its timeout.
	ErrCodeTimeout ErrorCode = iota
	// ErrCodeConnection indicates a connection failure (refused, DNS, TLS, reset).
	ErrCodeConnection
	// ErrCodeCanceled indicates the caller canceled the request.
	ErrCodeCanceled
	// ErrCodeInvalidRequest indicates the request could not be built.
	ErrCodeInvalidRequest
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeConnection:
		return "connection"
	case ErrCodeCanceled:
		return "canceled"
	case ErrCodeInvalidRequest:
		return "invalid_request"
	default:
		return "unknown"
	}
}

// Error is a transport error: no usable HTTP response was received.
type Error struct {
	// Code classifies the error.
	Code ErrorCode
	// Message describes the error.
	Message string
	// Retryable indicates whether the request can be retried.
	Retryable bool
	// Err is the underlying error.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("httpclient: %s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewTimeoutError creates a timeout error.
func NewTimeoutError(err error) *Error {
	return &Error{
		Code:      ErrCodeTimeout,
		Message:   err.Error(),
		Retryable: true,
		Err:       err,
	}
}

// NewConnectionError creates a connection error.
func NewConnectionError(err error) *Error {
	return &Error{
		Code:      ErrCodeConnection,
		Message:   err.Error(),
		Retryable: true,
		Err:       err,
	}
}

// NewCanceledError creates an error for a request canceled by the caller.
func NewCanceledError(err error) *Error {
	return &Error{
		Code:    ErrCodeCanceled,
		Message: err.Error(),
		Err:     err,
	}
}

// NewInvalidRequestError creates an error for a request that could not be built.
func NewInvalidRequestError(err error) *Error {
	return &Error{
		Code:    ErrCodeInvalidRequest,
		Message: err.Error(),
		Err:     err,
	}
}

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}

// IsConnection checks if an error is a connection error.
func IsConnection(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeConnection
}

// IsCanceled checks if an error is a cancellation error.
func IsCanceled(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeCanceled
}

// IsRetryable checks if an error is retryable.
func IsRetryable(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Retryable
}
