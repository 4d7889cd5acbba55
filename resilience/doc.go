// Package resilience implements the bounded retry loop used by the
// dispatch engine.
//
// Retry runs an operation up to MaxAttempts times, sleeping between
// attempts for a delay computed by Backoff, a pure function of the attempt
// index. Only errors accepted by RetryIf are retried, and the loop stops as
// soon as the context is done.
//
//	resp, err := resilience.Retry(ctx, cfg, func(attempt int) (*Response, error) {
//	    return send(ctx, attempt)
//	})
//
// The loop keeps no state between calls; concurrent callers each get an
// independent retry budget.
package resilience
