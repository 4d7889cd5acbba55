// Package errors defines the error taxonomy returned by the DeepSeek client.
//
// Every failure surfaced by the client is an *AppError carrying a
// machine-readable code, a retryable flag and, for API failures, the HTTP
// status and the server-provided message. Sentinel values allow matching
// with the standard library:
//
//	if errors.Is(err, dserrors.ErrRateLimitExceeded) {
//	    // back off
//	}
package errors
