package deepseek

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/deepseek/config"
	"github.com/kbukum/deepseek/dispatch"
	"github.com/kbukum/deepseek/httpclient"
	"github.com/kbukum/deepseek/logger"
)

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	transport httpclient.Transport
	log       *logger.Logger
	engine    []dispatch.Option
	loader    []config.LoaderOption
}

// WithTransport replaces the net/http transport, e.g. with a stub in tests.
// The client does not close a transport it did not create.
func WithTransport(t httpclient.Transport) Option {
	return func(o *clientOptions) { o.transport = t }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *logger.Logger) Option {
	return func(o *clientOptions) {
		o.log = l
		o.engine = append(o.engine, dispatch.WithLogger(l))
	}
}

// WithTracer sets the tracer for request spans. Defaults to the global otel
// tracer provider.
func WithTracer(t trace.Tracer) Option {
	return func(o *clientOptions) { o.engine = append(o.engine, dispatch.WithTracer(t)) }
}

// WithMeter sets the meter for request metrics. Defaults to the global otel
// meter provider.
func WithMeter(m metric.Meter) Option {
	return func(o *clientOptions) { o.engine = append(o.engine, dispatch.WithMeter(m)) }
}

// WithEngineOptions passes options straight to the dispatch engine.
func WithEngineOptions(opts ...dispatch.Option) Option {
	return func(o *clientOptions) { o.engine = append(o.engine, opts...) }
}

// WithLoaderOptions configures how FromEnvironment finds its files. New
// ignores it.
func WithLoaderOptions(opts ...config.LoaderOption) Option {
	return func(o *clientOptions) { o.loader = append(o.loader, opts...) }
}
