package config

import (
	"math"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/kbukum/deepseek/errors"
	"github.com/kbukum/deepseek/security"
	"github.com/kbukum/deepseek/validation"
	"github.com/kbukum/deepseek/version"
)

// proxySchemes are the proxy URL schemes the transport can dial.
var proxySchemes = []string{"http", "https", "socks5", "socks5h"}

// Defaults applied by New.
const (
	DefaultBaseURL        = "https://api.deepseek.com"
	DefaultTimeout        = 30 * time.Second
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 500 * time.Millisecond
	DefaultMaxBackoff     = 10 * time.Second
	DefaultBackoffFactor  = 2.0
	DefaultJitter         = 0.1
)

// Config is the immutable client configuration. Setters return modified
// copies; a Client copies the value at construction.
type Config struct {
	// APIKey authenticates every request. It never appears in logs or output.
	APIKey security.Secret
	// BaseURL is the API root, e.g. https://api.deepseek.com.
	BaseURL string
	// Timeout bounds each individual attempt.
	Timeout time.Duration
	// MaxAttempts is the total number of attempts per send, including the first.
	MaxAttempts int
	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// BackoffFactor multiplies the delay after each attempt.
	BackoffFactor float64
	// Jitter randomizes each delay by up to this fraction.
	Jitter float64
	// InsecureSkipVerify disables server certificate verification.
	InsecureSkipVerify bool
	// CAFile adds a PEM bundle to the trusted roots.
	CAFile string
	// Proxy is an optional http, https or socks5 proxy URL.
	Proxy string
	// UserAgent is sent with every request.
	UserAgent string
}

// New returns a Config with defaults for everything but the API key.
func New(apiKey string) Config {
	c := Config{APIKey: security.NewSecret(apiKey), Jitter: DefaultJitter}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills unset fields with their defaults. Jitter is left
// alone since zero is a meaningful value.
func (c *Config) ApplyDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = DefaultMaxAttempts
	}
	if c.InitialBackoff == 0 {
		c.InitialBackoff = DefaultInitialBackoff
	}
	if c.MaxBackoff == 0 {
		c.MaxBackoff = DefaultMaxBackoff
	}
	if c.BackoffFactor == 0 {
		c.BackoffFactor = DefaultBackoffFactor
	}
	if c.UserAgent == "" {
		c.UserAgent = version.UserAgent()
	}
}

// WithBaseURL sets the API root. Trailing slashes are dropped.
func (c Config) WithBaseURL(u string) Config {
	c.BaseURL = strings.TrimRight(u, "/")
	return c
}

// WithTimeout sets the per-attempt timeout.
func (c Config) WithTimeout(d time.Duration) Config {
	c.Timeout = d
	return c
}

// WithMaxAttempts sets the total attempt count per send.
func (c Config) WithMaxAttempts(n int) Config {
	c.MaxAttempts = n
	return c
}

// WithBackoff sets the initial and maximum delay between attempts.
func (c Config) WithBackoff(initial, maxDelay time.Duration) Config {
	c.InitialBackoff = initial
	c.MaxBackoff = maxDelay
	return c
}

// WithJitter sets the jitter fraction. Zero disables jitter.
func (c Config) WithJitter(j float64) Config {
	c.Jitter = j
	return c
}

// WithProxy routes requests through an http, https or socks5 proxy.
func (c Config) WithProxy(proxyURL string) Config {
	c.Proxy = proxyURL
	return c
}

// WithValidateCerts toggles server certificate verification.
func (c Config) WithValidateCerts(validate bool) Config {
	c.InsecureSkipVerify = !validate
	return c
}

// WithCAFile trusts the certificates in a PEM bundle in addition to the
// system roots.
func (c Config) WithCAFile(path string) Config {
	c.CAFile = path
	return c
}

// WithUserAgent overrides the User-Agent header.
func (c Config) WithUserAgent(ua string) Config {
	c.UserAgent = ua
	return c
}

// TLS returns the transport TLS settings derived from the config.
func (c Config) TLS() *security.TLSConfig {
	return &security.TLSConfig{
		SkipVerify: c.InsecureSkipVerify,
		CAFile:     c.CAFile,
	}
}

// Validate checks the configuration and returns a ConfigError describing
// every invalid field.
func (c Config) Validate() error {
	v := validation.New()
	v.Custom(!c.APIKey.IsEmpty(), "api_key", "is required")
	v.URL("base_url", c.BaseURL)
	v.Positive("timeout", int64(c.Timeout))
	v.Min("max_attempts", c.MaxAttempts, 1)
	v.Positive("initial_backoff", int64(c.InitialBackoff))
	v.Custom(c.MaxBackoff >= c.InitialBackoff, "max_backoff", "must not be less than initial_backoff")
	v.FloatRange("jitter", c.Jitter, 0, 0.5)
	// Delays must never shrink: the smallest next delay has to cover the
	// largest current one.
	v.Custom(!math.IsInf(c.BackoffFactor, 0) && c.BackoffFactor*(1-c.Jitter) >= 1+c.Jitter,
		"backoff_factor", "is too small for the configured jitter")
	if c.Proxy != "" {
		u, err := url.Parse(c.Proxy)
		ok := err == nil && u.Host != "" && slices.Contains(proxySchemes, u.Scheme)
		v.Custom(ok, "proxy", "must be an http, https, socks5 or socks5h URL")
	}

	if appErr := v.Validate(); appErr != nil {
		return errors.Config("invalid configuration: " + appErr.Message).
			WithDetails(appErr.Details)
	}
	return nil
}
