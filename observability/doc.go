// Package observability provides the OpenTelemetry tracing and metrics
// used by the DeepSeek client.
//
// The client records through the global otel providers unless a tracer or
// meter is injected, so it is silent until an application installs one.
// InitTracer and InitMeter are conveniences for applications that export
// over OTLP/HTTP:
//
//	tp, err := observability.InitTracer(ctx, observability.DefaultTracerConfig("my-app"))
//	defer tp.Shutdown(ctx)
//
//	mp, err := observability.InitMeter(ctx, observability.DefaultMeterConfig("my-app"))
//	defer mp.Shutdown(ctx)
//
// Every chat completion becomes one span named SpanChatCompletion and feeds
// the instruments in Metrics.
package observability
