package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Construction-time errors (never retried)
const (
	// ErrCodeConfig indicates missing or malformed client configuration.
	ErrCodeConfig ErrorCode = "CONFIG_ERROR"
	// ErrCodeInvalidParameter indicates a request parameter failed validation.
	ErrCodeInvalidParameter ErrorCode = "INVALID_PARAMETER"
)

// Delivery errors
const (
	// ErrCodeTransport indicates a connection failure or timeout.
	ErrCodeTransport ErrorCode = "TRANSPORT_FAILURE"
	// ErrCodeRateLimitExceeded indicates the API answered HTTP 429.
	ErrCodeRateLimitExceeded ErrorCode = "RATE_LIMIT_EXCEEDED"
	// ErrCodeAPI indicates any other non-2xx API response.
	ErrCodeAPI ErrorCode = "API_ERROR"
	// ErrCodeDecode indicates a 2xx body that does not match the response schema.
	ErrCodeDecode ErrorCode = "DECODE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeTransport:         true,
	ErrCodeRateLimitExceeded: true,
	ErrCodeConfig:            false,
	ErrCodeInvalidParameter:  false,
	ErrCodeDecode:            false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// API errors are retryable only for 5xx statuses, so ErrCodeAPI is not
// listed here; see API.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
