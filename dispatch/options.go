package dispatch

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/deepseek/logger"
)

// Option configures an Engine.
type Option func(*options)

type options struct {
	log    *logger.Logger
	tracer trace.Tracer
	meter  metric.Meter
	sleep  func(ctx context.Context, d time.Duration) error
	rand   func() float64
	newID  func() string
	now    func() time.Time
}

// WithLogger sets the logger. Defaults to a no-op logger.
func WithLogger(l *logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTracer sets the tracer. Defaults to the global otel tracer.
func WithTracer(t trace.Tracer) Option {
	return func(o *options) { o.tracer = t }
}

// WithMeter sets the meter the engine's instruments are created on.
// Defaults to the global otel meter.
func WithMeter(m metric.Meter) Option {
	return func(o *options) { o.meter = m }
}

// WithSleep replaces the wait between attempts.
func WithSleep(fn func(ctx context.Context, d time.Duration) error) Option {
	return func(o *options) { o.sleep = fn }
}

// WithRand replaces the jitter source. fn must return values in [0, 1).
func WithRand(fn func() float64) Option {
	return func(o *options) { o.rand = fn }
}

// WithRequestIDFunc replaces the X-Request-Id generator.
func WithRequestIDFunc(fn func() string) Option {
	return func(o *options) { o.newID = fn }
}

// WithClock replaces the clock used to resolve HTTP-date Retry-After values.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}
