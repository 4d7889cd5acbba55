package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/kbukum/deepseek/logger"
	"github.com/kbukum/deepseek/version"
)

// MeterConfig configures the OpenTelemetry meter provider.
type MeterConfig struct {
	// ServiceName is the name of the service.
	ServiceName string
	// ServiceVersion is the version of the service.
	ServiceVersion string
	// Environment is the deployment environment (dev, staging, prod).
	Environment string
	// Endpoint is the OTLP HTTP endpoint host:port (e.g., "localhost:4318").
	Endpoint string
	// Insecure allows insecure connections (for development).
	Insecure bool
	// Interval is the metric export interval.
	Interval time.Duration
	// Logger receives the initialization message. Nil means silent.
	Logger *logger.Logger
}

// DefaultMeterConfig returns sensible defaults for development.
func DefaultMeterConfig(serviceName string) MeterConfig {
	return MeterConfig{
		ServiceName:    serviceName,
		ServiceVersion: version.GetVersionInfo().Version,
		Environment:    "development",
		Endpoint:       "localhost:4318",
		Insecure:       true,
		Interval:       15 * time.Second,
	}
}

// InitMeter installs an OTLP/HTTP meter provider as the global provider.
// The returned provider should be shut down on application exit.
func InitMeter(ctx context.Context, config MeterConfig) (*sdkmetric.MeterProvider, error) {
	opts := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(config.Endpoint),
	}
	if config.Insecure {
		opts = append(opts, otlpmetrichttp.WithInsecure())
	}

	exporter, err := otlpmetrichttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating metric exporter: %w", err)
	}

	res, err := newResource(config.ServiceName, config.ServiceVersion, config.Environment)
	if err != nil {
		return nil, fmt.Errorf("creating resource: %w", err)
	}

	readerOpts := []sdkmetric.PeriodicReaderOption{}
	if config.Interval > 0 {
		readerOpts = append(readerOpts, sdkmetric.WithInterval(config.Interval))
	}

	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, readerOpts...)),
		sdkmetric.WithResource(res),
	)

	otel.SetMeterProvider(mp)

	if config.Logger != nil {
		config.Logger.Info("meter initialized", logger.Fields(
			"service", config.ServiceName,
			"endpoint", config.Endpoint,
			"interval", config.Interval.String(),
		))
	}
	return mp, nil
}

// Meter returns the client's meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(InstrumentationName)
}

// Instrument names registered by NewMetrics.
const (
	MetricRequestTotal    = "deepseek.request.total"
	MetricRequestDuration = "deepseek.request.duration"
	MetricRequestActive   = "deepseek.request.active"
	MetricRetryTotal      = "deepseek.retry.total"
	MetricErrorTotal      = "deepseek.error.total"
)

// Metrics holds the instruments recorded for chat completions. A nil
// *Metrics records nothing.
type Metrics struct {
	requestTotal    metric.Int64Counter
	requestDuration metric.Float64Histogram
	requestActive   metric.Int64UpDownCounter
	retryTotal      metric.Int64Counter
	errorTotal      metric.Int64Counter
}

// NewMetrics creates metric instruments on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	requestTotal, err := meter.Int64Counter(MetricRequestTotal,
		metric.WithDescription("Total number of chat completion calls"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRequestTotal, err)
	}

	requestDuration, err := meter.Float64Histogram(MetricRequestDuration,
		metric.WithDescription("Duration of chat completion calls in seconds, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s histogram: %w", MetricRequestDuration, err)
	}

	requestActive, err := meter.Int64UpDownCounter(MetricRequestActive,
		metric.WithDescription("Number of chat completion calls in flight"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s gauge: %w", MetricRequestActive, err)
	}

	retryTotal, err := meter.Int64Counter(MetricRetryTotal,
		metric.WithDescription("Total retries by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricRetryTotal, err)
	}

	errorTotal, err := meter.Int64Counter(MetricErrorTotal,
		metric.WithDescription("Total failed chat completion calls by error code"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating %s counter: %w", MetricErrorTotal, err)
	}

	return &Metrics{
		requestTotal:    requestTotal,
		requestDuration: requestDuration,
		requestActive:   requestActive,
		retryTotal:      retryTotal,
		errorTotal:      errorTotal,
	}, nil
}

// RecordRequestStart increments the in-flight count.
func (m *Metrics) RecordRequestStart(ctx context.Context) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, 1)
}

// RecordRequestEnd decrements the in-flight count and records the finished call.
func (m *Metrics) RecordRequestEnd(ctx context.Context, model, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.requestActive.Add(ctx, -1)
	m.requestTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("status", status),
	))
	m.requestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("model", model),
	))
}

// RecordRetry counts one retry caused by an error with the given code.
func (m *Metrics) RecordRetry(ctx context.Context, model, code string) {
	if m == nil {
		return
	}
	m.retryTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("code", code),
	))
}

// RecordError counts a call that failed with the given code.
func (m *Metrics) RecordError(ctx context.Context, model, code string) {
	if m == nil {
		return
	}
	m.errorTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("model", model),
		attribute.String("code", code),
	))
}
