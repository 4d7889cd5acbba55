package errors

import (
	stderrors "errors"
	"net/http"
	"time"
)

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsRetryable reports whether err is an AppError marked retryable.
func IsRetryable(err error) bool {
	appErr, ok := AsAppError(err)
	return ok && appErr.Retryable
}

// IsRateLimit reports whether err is a rate-limit error, including an API
// error that carries status 429.
func IsRateLimit(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok {
		return false
	}
	return appErr.Code == ErrCodeRateLimitExceeded || appErr.HTTPStatus == http.StatusTooManyRequests
}

// IsAuth reports whether err is an API error with status 401 or 403.
func IsAuth(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeAPI {
		return false
	}
	return appErr.HTTPStatus == http.StatusUnauthorized || appErr.HTTPStatus == http.StatusForbidden
}

// IsTimeout reports whether err is a transport error caused by a timeout.
func IsTimeout(err error) bool {
	appErr, ok := AsAppError(err)
	if !ok || appErr.Code != ErrCodeTransport {
		return false
	}
	timeout, _ := appErr.Details[DetailTimeout].(bool)
	return timeout
}

// StatusCode returns the HTTP status carried by err, if any.
func StatusCode(err error) (int, bool) {
	appErr, ok := AsAppError(err)
	if !ok || appErr.HTTPStatus == 0 {
		return 0, false
	}
	return appErr.HTTPStatus, true
}

// RetryAfter returns the server-requested delay of a rate-limit error.
func RetryAfter(err error) (time.Duration, bool) {
	appErr, ok := AsAppError(err)
	if !ok {
		return 0, false
	}
	d, ok := appErr.Details[DetailRetryAfter].(time.Duration)
	return d, ok
}
