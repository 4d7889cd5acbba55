package dispatch

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/deepseek/config"
	"github.com/kbukum/deepseek/errors"
	"github.com/kbukum/deepseek/httpclient"
	"github.com/kbukum/deepseek/logger"
	"github.com/kbukum/deepseek/models"
	"github.com/kbukum/deepseek/observability"
	"github.com/kbukum/deepseek/resilience"
)

// API paths relative to the configured base URL.
const (
	PathChatCompletions = "/chat/completions"
	PathModels          = "/models"
)

// HeaderRequestID carries the per-send request ID.
const HeaderRequestID = "X-Request-Id"

// Engine delivers requests with bounded retries. It holds no per-send
// state and is safe for concurrent use.
type Engine struct {
	cfg       config.Config
	transport httpclient.Transport
	log       *logger.Logger
	tracer    trace.Tracer
	metrics   *observability.Metrics
	retry     resilience.RetryConfig
	newID     func() string
	now       func() time.Time
}

// New creates an engine for cfg that sends through transport.
func New(cfg config.Config, transport httpclient.Transport, opts ...Option) (*Engine, error) {
	if transport == nil {
		return nil, errors.Config("transport is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.NewNop()
	}
	if o.tracer == nil {
		o.tracer = observability.Tracer()
	}
	if o.meter == nil {
		o.meter = observability.Meter()
	}
	if o.newID == nil {
		o.newID = uuid.NewString
	}
	if o.now == nil {
		o.now = time.Now
	}

	metrics, err := observability.NewMetrics(o.meter)
	if err != nil {
		return nil, errors.Config("could not create metric instruments").WithCause(err)
	}

	// Config literals may bypass WithBaseURL.
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	return &Engine{
		cfg:       cfg,
		transport: transport,
		log:       o.log.WithComponent("dispatch"),
		tracer:    o.tracer,
		metrics:   metrics,
		retry: resilience.RetryConfig{
			MaxAttempts:    cfg.MaxAttempts,
			InitialBackoff: cfg.InitialBackoff,
			MaxBackoff:     cfg.MaxBackoff,
			BackoffFactor:  cfg.BackoffFactor,
			Jitter:         cfg.Jitter,
			RetryIf:        errors.IsRetryable,
			Sleep:          o.sleep,
			Rand:           o.rand,
		},
		newID: o.newID,
		now:   o.now,
	}, nil
}

// Config returns the engine's configuration.
func (e *Engine) Config() config.Config { return e.cfg }

// Send posts req to the chat completions endpoint. req is not mutated.
func (e *Engine) Send(ctx context.Context, req models.ChatCompletionRequest) (*models.ChatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, errors.InvalidParameter("", "request could not be serialized").WithCause(err)
	}
	op := operation{
		span:   observability.SpanChatCompletion,
		method: http.MethodPost,
		path:   PathChatCompletions,
		body:   body,
		model:  req.Model.String(),
	}
	return execute(ctx, e, op, decodeCompletion)
}

// Get sends a GET to path and decodes the JSON body into out.
func (e *Engine) Get(ctx context.Context, path string, out any) error {
	op := operation{span: observability.SpanGet, method: http.MethodGet, path: path}
	_, err := execute(ctx, e, op, func(body []byte) (struct{}, error) {
		if out == nil {
			return struct{}{}, nil
		}
		if err := json.Unmarshal(body, out); err != nil {
			return struct{}{}, errors.Decode(err).WithDetail(errors.DetailBody, truncateBody(body))
		}
		return struct{}{}, nil
	})
	return err
}

type operation struct {
	span   string
	method string
	path   string
	body   []byte
	model  string
}

func execute[T any](ctx context.Context, e *Engine, op operation, decode func([]byte) (T, error)) (T, error) {
	requestID := e.newID()

	call := observability.NewCall(e.tracer, e.metrics, op.model, requestID)
	call.Name = op.span
	ctx = call.Start(ctx)
	ctx = logger.ContextWithRequestID(ctx, requestID)

	log := e.log.WithContext(ctx)
	if op.model != "" {
		log = log.WithFields(logger.Fields(logger.FieldModel, op.model))
	}

	headers := e.headers(requestID, op.body != nil)
	var attempts, lastStatus int

	retry := e.retry
	retry.OnRetry = func(attempt int, err error, backoff time.Duration) {
		code := codeOf(err)
		log.Warn("retrying request", logger.MergeWithError(logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldBackoff, backoff.Milliseconds(),
			logger.FieldCode, code,
		), err))
		call.Retry(ctx, attempt, code)
	}

	result, err := resilience.Retry(ctx, retry, func(attempt int) (T, error) {
		var zero T
		attempts = attempt

		log.Debug("sending request", logger.Fields(logger.FieldAttempt, attempt))
		start := time.Now()
		resp, err := e.transport.Execute(ctx, httpclient.Request{
			Method:  op.method,
			URL:     e.cfg.BaseURL + op.path,
			Headers: maps.Clone(headers),
			Body:    op.body,
			Timeout: e.cfg.Timeout,
		})
		if err != nil {
			return zero, classifyTransport(err)
		}
		if resp == nil {
			return zero, errors.Transport(errNoResponse)
		}

		lastStatus = resp.StatusCode
		log.Debug("response received", logger.MergeWithDuration(logger.Fields(
			logger.FieldAttempt, attempt,
			logger.FieldStatus, resp.StatusCode,
		), time.Since(start)))

		if !resp.IsSuccess() {
			return zero, classifyStatus(resp, e.now())
		}
		return decode(resp.Body)
	})

	status := "ok"
	if err != nil {
		err = normalize(err)
		status = codeOf(err)
		log.Error("request failed", logger.MergeWithError(logger.MergeWithDuration(logger.Fields(
			logger.FieldAttempt, attempts,
			logger.FieldCode, status,
			logger.FieldStatus, lastStatus,
		), call.Duration()), err))
	} else {
		log.Debug("request completed", logger.MergeWithDuration(logger.Fields(
			logger.FieldAttempt, attempts,
			logger.FieldStatus, lastStatus,
		), call.Duration()))
	}
	call.End(ctx, status, lastStatus, attempts, err)
	return result, err
}

func (e *Engine) headers(requestID string, hasBody bool) map[string]string {
	h := map[string]string{
		"Accept":        "application/json",
		"User-Agent":    e.cfg.UserAgent,
		HeaderRequestID: requestID,
	}
	if hasBody {
		h["Content-Type"] = "application/json"
	}
	httpclient.BearerAuth(e.cfg.APIKey.Expose()).Apply(h)
	return h
}

func decodeCompletion(body []byte) (*models.ChatCompletionResponse, error) {
	var resp models.ChatCompletionResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, errors.Decode(err).WithDetail(errors.DetailBody, truncateBody(body))
	}
	if len(resp.Choices) == 0 {
		return nil, errors.EmptyResponse()
	}
	return &resp, nil
}
