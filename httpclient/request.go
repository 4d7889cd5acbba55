package httpclient

import (
	"context"
	"net/http"
	"time"
)

// Transport sends one HTTP request. Implementations must be safe for
// concurrent use and return a non-nil *Response for every status code;
// the error is reserved for failures where no response was received.
type Transport interface {
	Execute(ctx context.Context, req Request) (*Response, error)
}

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (*Response, error)

// Execute calls f(ctx, req).
func (f TransportFunc) Execute(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}

// Request describes an outbound HTTP request.
type Request struct {
	// Method is the HTTP method (GET, POST, etc).
	Method string
	// URL is the absolute request URL.
	URL string
	// Headers are request headers.
	Headers map[string]string
	// Body is the raw request body. Nil sends no body.
	Body []byte
	// Timeout bounds this request, including reading the body. Zero uses
	// the transport default.
	Timeout time.Duration
}

// Response is the result of an HTTP request.
type Response struct {
	// StatusCode is the HTTP status code.
	StatusCode int
	// Headers are the response headers, keyed in canonical form.
	Headers map[string]string
	// Body is the raw response body.
	Body []byte
}

// Header returns the value of a response header, case-insensitively.
func (r *Response) Header(name string) string {
	if r == nil || r.Headers == nil {
		return ""
	}
	if v, ok := r.Headers[http.CanonicalHeaderKey(name)]; ok {
		return v
	}
	return r.Headers[name]
}

// IsSuccess returns true if the status code is 2xx.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// IsError returns true if the status code is 4xx or 5xx.
func (r *Response) IsError() bool {
	return r.StatusCode >= 400
}

// flattenHeaders converts multi-value headers to single-value.
func flattenHeaders(h http.Header) map[string]string {
	result := make(map[string]string, len(h))
	for k, v := range h {
		if len(v) > 0 {
			result[http.CanonicalHeaderKey(k)] = v[0]
		}
	}
	return result
}
