// Package testutil provides a scripted httpclient.Transport for tests.
package testutil

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/kbukum/deepseek/httpclient"
)

// Outcome is one scripted reply: either a response or a transport error.
type Outcome struct {
	Response *httpclient.Response
	Err      error
}

// Reply builds a response outcome.
func Reply(status int, body string, headers ...string) Outcome {
	h := make(map[string]string, len(headers)/2)
	for i := 0; i+1 < len(headers); i += 2 {
		h[http.CanonicalHeaderKey(headers[i])] = headers[i+1]
	}
	return Outcome{Response: &httpclient.Response{StatusCode: status, Headers: h, Body: []byte(body)}}
}

// Fail builds a transport failure outcome.
func Fail(err error) Outcome {
	return Outcome{Err: err}
}

// ConnectionRefused is a retryable connection failure.
func ConnectionRefused() Outcome {
	return Fail(httpclient.NewConnectionError(errConnRefused))
}

// TimedOut is a retryable timeout failure.
func TimedOut() Outcome {
	return Fail(httpclient.NewTimeoutError(context.DeadlineExceeded))
}

type stubError string

func (e stubError) Error() string { return string(e) }

const errConnRefused = stubError("dial tcp 127.0.0.1:443: connect: connection refused")

// Attempt records one call to Execute.
type Attempt struct {
	Request httpclient.Request
	At      time.Time
}

// Transport replays outcomes in order. When the script runs out the last
// outcome repeats. It is safe for concurrent use.
type Transport struct {
	mu       sync.Mutex
	script   []Outcome
	attempts []Attempt
	now      func() time.Time
}

var _ httpclient.Transport = (*Transport)(nil)

// NewTransport creates a stub that replays outcomes.
func NewTransport(outcomes ...Outcome) *Transport {
	return &Transport{script: outcomes, now: time.Now}
}

// Execute records the request and returns the next scripted outcome.
func (s *Transport) Execute(ctx context.Context, req httpclient.Request) (*httpclient.Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	req.Body = append([]byte(nil), req.Body...)
	s.attempts = append(s.attempts, Attempt{Request: req, At: s.now()})

	if err := ctx.Err(); err != nil {
		return nil, httpclient.NewCanceledError(err)
	}
	if len(s.script) == 0 {
		return &httpclient.Response{StatusCode: http.StatusOK, Body: []byte("{}")}, nil
	}

	idx := len(s.attempts) - 1
	if idx >= len(s.script) {
		idx = len(s.script) - 1
	}
	out := s.script[idx]
	if out.Err != nil {
		return nil, out.Err
	}
	resp := *out.Response
	return &resp, nil
}

// Attempts returns a copy of the recorded attempts.
func (s *Transport) Attempts() []Attempt {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Attempt(nil), s.attempts...)
}

// Calls returns the number of recorded attempts.
func (s *Transport) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.attempts)
}

// LastRequest returns the most recent request, or the zero value.
func (s *Transport) LastRequest() httpclient.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.attempts) == 0 {
		return httpclient.Request{}
	}
	return s.attempts[len(s.attempts)-1].Request
}
