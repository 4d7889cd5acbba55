package errors

import (
	"fmt"
	"net/http"
	"time"
)

// Sentinel values for errors.Is matching. An AppError matches the sentinel
// of its code. Sentinels carry only the code and cannot be modified.
var (
	ErrConfig            error = sentinel(ErrCodeConfig)
	ErrInvalidParameter  error = sentinel(ErrCodeInvalidParameter)
	ErrTransport         error = sentinel(ErrCodeTransport)
	ErrRateLimitExceeded error = sentinel(ErrCodeRateLimitExceeded)
	ErrAPI               error = sentinel(ErrCodeAPI)
	ErrDecode            error = sentinel(ErrCodeDecode)
)

type sentinel ErrorCode

func (s sentinel) Error() string { return string(s) }

// Detail keys set by the constructors.
const (
	DetailField      = "field"
	DetailTimeout    = "timeout"
	DetailRetryAfter = "retry_after"
	DetailBody       = "body"
	DetailAPICode    = "api_code"
	DetailParam      = "param"
)

// AppError is the unified client error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status returned by the API (0 when no response was received).
	HTTPStatus int `json:"status,omitempty"`
	// ErrorType is the API's own classification string (e.g. "invalid_request_error").
	ErrorType string `json:"type,omitempty"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	msg := e.Message
	if e.HTTPStatus > 0 {
		msg = fmt.Sprintf("status %d: %s", e.HTTPStatus, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, msg, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, msg)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is a sentinel or an *AppError with the same
// code.
func (e *AppError) Is(target error) bool {
	switch t := target.(type) {
	case sentinel:
		return ErrorCode(t) == e.Code
	case *AppError:
		return t.Code == e.Code
	}
	return false
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges the provided details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:      code,
		Message:   message,
		Retryable: IsRetryableCode(code),
	}
}

// --- Constructors ---

// Config creates an error for invalid or missing configuration.
func Config(message string) *AppError {
	return &AppError{Code: ErrCodeConfig, Message: message}
}

// Configf is Config with a format string.
func Configf(format string, args ...any) *AppError {
	return Config(fmt.Sprintf(format, args...))
}

// InvalidParameter creates an error for a parameter that failed validation.
func InvalidParameter(field, message string) *AppError {
	e := &AppError{Code: ErrCodeInvalidParameter, Message: message}
	if field != "" {
		e.WithDetail(DetailField, field)
	}
	return e
}

// Transport creates a retryable error for a connection failure.
func Transport(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: "request could not be delivered",
		Retryable: true, Cause: cause,
	}
}

// Timeout creates a retryable transport error for an attempt that timed out.
func Timeout(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTransport, Message: "request timed out",
		Retryable: true, Cause: cause,
		Details: map[string]any{DetailTimeout: true},
	}
}

// RateLimitExceeded creates a retryable error for HTTP 429. A positive
// retryAfter is kept in the details so callers can apply their own policy.
func RateLimitExceeded(message string, retryAfter time.Duration) *AppError {
	if message == "" {
		message = "rate limit exceeded, wait before making more requests"
	}
	e := &AppError{
		Code: ErrCodeRateLimitExceeded, Message: message,
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
	if retryAfter > 0 {
		e.WithDetail(DetailRetryAfter, retryAfter)
	}
	return e
}

// API creates an error for a non-2xx, non-429 response. 5xx statuses are
// retryable, everything else is permanent.
func API(status int, message, errType string) *AppError {
	if message == "" {
		message = http.StatusText(status)
	}
	return &AppError{
		Code: ErrCodeAPI, Message: message,
		HTTPStatus: status, ErrorType: errType,
		Retryable: status >= http.StatusInternalServerError,
	}
}

// Decode creates an error for a success body that could not be decoded.
func Decode(cause error) *AppError {
	return &AppError{
		Code: ErrCodeDecode, Message: "response body does not match the expected schema",
		Cause: cause,
	}
}

// EmptyResponse creates a decode error for a success body without choices.
func EmptyResponse() *AppError {
	return &AppError{Code: ErrCodeDecode, Message: "received empty response from API"}
}

// Canceled creates a transport error for a request abandoned because the
// caller's context was canceled. It is never retried.
func Canceled(cause error) *AppError {
	return &AppError{Code: ErrCodeTransport, Message: "request canceled", Cause: cause}
}
