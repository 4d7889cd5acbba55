// Package dispatch sends chat completion requests to the DeepSeek API.
//
// An Engine serializes a request, hands it to an httpclient.Transport and
// classifies the outcome into an *errors.AppError. Transient failures
// (connection errors, timeouts, HTTP 429 and 5xx) are retried with
// exponential backoff through resilience.Retry; everything else returns
// after one attempt. Each send carries one X-Request-Id across all of its
// attempts and produces one span.
package dispatch
