package httpclient

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/deepseek/security"
)

const (
	defaultTimeout         = 30 * time.Second
	defaultReadIdleTimeout = 30 * time.Second
	defaultPingTimeout     = 15 * time.Second
)

// Config configures the HTTP adapter.
type Config struct {
	// Timeout is the default per-request timeout. Defaults to 30s.
	Timeout time.Duration

	// TLS configures TLS settings for the HTTP transport.
	TLS *security.TLSConfig

	// Proxy is an optional http, https or socks5 proxy URL. When empty the
	// standard HTTP_PROXY/HTTPS_PROXY/NO_PROXY variables apply.
	Proxy string

	// DisableHTTP2 keeps connections on HTTP/1.1.
	DisableHTTP2 bool

	// ReadIdleTimeout is how long an HTTP/2 connection may be idle before a
	// health-check ping is sent. Defaults to 30s.
	ReadIdleTimeout time.Duration

	// PingTimeout closes an HTTP/2 connection whose ping is not answered in
	// time. Defaults to 15s.
	PingTimeout time.Duration
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.ReadIdleTimeout <= 0 {
		c.ReadIdleTimeout = defaultReadIdleTimeout
	}
	if c.PingTimeout <= 0 {
		c.PingTimeout = defaultPingTimeout
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("httpclient: timeout must be positive")
	}
	if c.Proxy != "" {
		if _, err := parseProxy(c.Proxy); err != nil {
			return err
		}
	}
	return nil
}

func parseProxy(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("httpclient: invalid proxy URL: %w", err)
	}
	switch u.Scheme {
	case "http", "https", "socks5", "socks5h":
	default:
		return nil, fmt.Errorf("httpclient: unsupported proxy scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("httpclient: proxy URL %q has no host", raw)
	}
	return u, nil
}
