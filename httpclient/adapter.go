package httpclient

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"

	"golang.org/x/net/http2"
	"golang.org/x/net/proxy"
)

// Adapter implements Transport on net/http.
type Adapter struct {
	httpClient *http.Client
	config     Config
}

var _ Transport = (*Adapter)(nil)

// New creates a new HTTP adapter with the given configuration.
func New(cfg Config) (*Adapter, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()

	// Apply TLS configuration
	if cfg.TLS != nil {
		tlsCfg, err := cfg.TLS.Build()
		if err != nil {
			return nil, err
		}
		if tlsCfg != nil {
			transport.TLSClientConfig = tlsCfg
		}
	}

	if cfg.Proxy != "" {
		if err := applyProxy(transport, cfg.Proxy); err != nil {
			return nil, err
		}
	}

	if cfg.DisableHTTP2 {
		transport.ForceAttemptHTTP2 = false
		transport.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	} else {
		h2, err := http2.ConfigureTransports(transport)
		if err != nil {
			return nil, fmt.Errorf("httpclient: configure http2: %w", err)
		}
		h2.ReadIdleTimeout = cfg.ReadIdleTimeout
		h2.PingTimeout = cfg.PingTimeout
	}

	return &Adapter{
		// Timeouts are applied per request through the context.
		httpClient: &http.Client{Transport: transport},
		config:     cfg,
	}, nil
}

// applyProxy routes the transport through an http(s) or socks5 proxy.
func applyProxy(transport *http.Transport, raw string) error {
	u, err := parseProxy(raw)
	if err != nil {
		return err
	}
	switch u.Scheme {
	case "http", "https":
		transport.Proxy = http.ProxyURL(u)
		return nil
	}

	dialer, err := proxy.FromURL(u, &net.Dialer{Timeout: defaultTimeout, KeepAlive: defaultTimeout})
	if err != nil {
		return fmt.Errorf("httpclient: socks proxy: %w", err)
	}
	contextDialer, ok := dialer.(proxy.ContextDialer)
	if !ok {
		return fmt.Errorf("httpclient: socks proxy dialer does not support contexts")
	}
	transport.Proxy = nil
	transport.DialContext = contextDialer.DialContext
	return nil
}

// Execute sends the request and reads the full response body. Any status
// code yields a response; errors are always *Error.
func (c *Adapter) Execute(ctx context.Context, req Request) (*Response, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	attemptCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := buildRequest(attemptCtx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("read response body: %w", err))
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Headers:    flattenHeaders(resp.Header),
		Body:       body,
	}, nil
}

// classifyError separates caller cancellation from timeouts and
// connection failures. parent is the caller's context, not the attempt's.
func classifyError(parent context.Context, err error) *Error {
	if errors.Is(parent.Err(), context.Canceled) {
		return NewCanceledError(err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return NewTimeoutError(err)
	}
	return NewConnectionError(err)
}

// buildRequest constructs an *http.Request from the request.
func buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, NewInvalidRequestError(fmt.Errorf("create request: %w", err))
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	return httpReq, nil
}

// Unwrap returns the underlying *http.Client for advanced use cases.
func (c *Adapter) Unwrap() *http.Client {
	return c.httpClient
}

// Close releases idle connections.
func (c *Adapter) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
