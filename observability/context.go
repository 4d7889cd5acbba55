package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Call tracks the span and metrics of one chat completion.
type Call struct {
	Name      string
	Model     string
	RequestID string
	StartTime time.Time
	Tracer    trace.Tracer
	Metrics   *Metrics

	span trace.Span
}

// NewCall creates a call record. A nil tracer uses the global one; nil
// metrics are skipped.
func NewCall(tracer trace.Tracer, metrics *Metrics, model, requestID string) *Call {
	if tracer == nil {
		tracer = Tracer()
	}
	return &Call{
		Name:      SpanChatCompletion,
		Model:     model,
		RequestID: requestID,
		StartTime: time.Now(),
		Tracer:    tracer,
		Metrics:   metrics,
	}
}

// Start opens the span named c.Name and counts the call as in flight.
// The returned context carries the span.
func (c *Call) Start(ctx context.Context) context.Context {
	ctx, c.span = c.Tracer.Start(ctx, c.Name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String(AttrModel, c.Model),
			attribute.String(AttrRequestID, c.RequestID),
		),
	)
	c.Metrics.RecordRequestStart(ctx)
	return ctx
}

// Retry records a retry caused by an error with the given code.
func (c *Call) Retry(ctx context.Context, attempt int, code string) {
	if c.span != nil {
		c.span.AddEvent("retry", trace.WithAttributes(
			attribute.Int(AttrAttempts, attempt),
			attribute.String(AttrErrorCode, code),
		))
	}
	c.Metrics.RecordRetry(ctx, c.Model, code)
}

// End closes the span and records the outcome. status is "ok" or the
// error code; httpStatus is 0 when no response was received.
func (c *Call) End(ctx context.Context, status string, httpStatus, attempts int, err error) {
	duration := c.Duration()

	if c.span != nil {
		c.span.SetAttributes(
			attribute.Int(AttrAttempts, attempts),
			attribute.Int64(AttrDurationMs, duration.Milliseconds()),
		)
		if httpStatus > 0 {
			c.span.SetAttributes(attribute.Int(AttrStatus, httpStatus))
		}
		if err != nil {
			c.span.SetAttributes(attribute.String(AttrErrorCode, status))
			SetSpanError(c.span, err)
		}
		c.span.End()
	}

	c.Metrics.RecordRequestEnd(ctx, c.Model, status, duration)
	if err != nil {
		c.Metrics.RecordError(ctx, c.Model, status)
	}
}

// Duration returns the elapsed time since the call was created.
func (c *Call) Duration() time.Duration {
	return time.Since(c.StartTime)
}
