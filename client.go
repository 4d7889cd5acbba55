package deepseek

import (
	"context"

	"github.com/kbukum/deepseek/config"
	"github.com/kbukum/deepseek/dispatch"
	"github.com/kbukum/deepseek/errors"
	"github.com/kbukum/deepseek/httpclient"
	"github.com/kbukum/deepseek/logger"
	"github.com/kbukum/deepseek/models"
)

// Client talks to the DeepSeek API. It is safe for concurrent use; the
// builders it hands out are not.
type Client struct {
	cfg    config.Config
	engine *dispatch.Engine
	// adapter is set only when the client created its own transport.
	adapter *httpclient.Adapter
	log     *logger.Logger
}

// New validates cfg and creates a client. Unless WithTransport is given,
// requests go through a net/http adapter honoring the configured timeout,
// proxy and certificate settings.
func New(cfg config.Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.NewNop()
	}

	c := &Client{cfg: cfg, log: o.log.WithComponent("client")}

	transport := o.transport
	if transport == nil {
		adapter, err := httpclient.New(httpclient.Config{
			Timeout: cfg.Timeout,
			TLS:     cfg.TLS(),
			Proxy:   cfg.Proxy,
		})
		if err != nil {
			return nil, errors.Config("could not create HTTP transport").WithCause(err)
		}
		c.adapter = adapter
		transport = adapter
	}

	engine, err := dispatch.New(cfg, transport, o.engine...)
	if err != nil {
		_ = c.closeAdapter()
		return nil, err
	}
	c.engine = engine

	c.log.Debug("client created", logger.Fields(
		"base_url", cfg.BaseURL,
		"max_attempts", cfg.MaxAttempts,
		"timeout_ms", cfg.Timeout.Milliseconds(),
	))
	return c, nil
}

// FromEnvironment creates a client from DEEPSEEK_* environment variables
// and the standard .env files. WithLoaderOptions tunes where they are read.
func FromEnvironment(opts ...Option) (*Client, error) {
	var o clientOptions
	for _, opt := range opts {
		opt(&o)
	}
	cfg, err := config.FromEnvironment(o.loader...)
	if err != nil {
		return nil, err
	}
	return New(cfg, opts...)
}

// Chat starts a new conversation for the default model.
func (c *Client) Chat() *ChatBuilder {
	return newChatBuilder(c.engine)
}

// ChatCompletion validates and sends a hand-built request.
func (c *Client) ChatCompletion(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	if req.Model == "" {
		req.Model = models.DefaultModel
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.engine.Send(ctx, req.Clone())
}

// ListModels returns the models available to the API key.
func (c *Client) ListModels(ctx context.Context) (*models.ModelList, error) {
	var list models.ModelList
	if err := c.engine.Get(ctx, dispatch.PathModels, &list); err != nil {
		return nil, err
	}
	return &list, nil
}

// TestConnection checks that the API is reachable and accepts the key.
func (c *Client) TestConnection(ctx context.Context) error {
	return c.engine.Get(ctx, dispatch.PathModels, nil)
}

// Config returns a copy of the client's configuration.
func (c *Client) Config() config.Config { return c.cfg }

// Close releases idle connections of the client's own transport.
func (c *Client) Close() error {
	return c.closeAdapter()
}

func (c *Client) closeAdapter() error {
	if c.adapter == nil {
		return nil
	}
	return c.adapter.Close()
}
