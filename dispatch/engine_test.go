package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/kbukum/deepseek/config"
	"github.com/kbukum/deepseek/errors"
	"github.com/kbukum/deepseek/httpclient/testutil"
	"github.com/kbukum/deepseek/logger"
	"github.com/kbukum/deepseek/models"
	"github.com/kbukum/deepseek/observability"
	"github.com/kbukum/deepseek/util"
)

const okBody = `{"id":"cmpl-1","object":"chat.completion","created":1700000000,"model":"deepseek-chat",
"choices":[{"index":0,"message":{"role":"assistant","content":"hello"},"finish_reason":"stop"}],
"usage":{"prompt_tokens":3,"completion_tokens":1,"total_tokens":4}}`

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
}

func (s *sleepRecorder) sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	s.delays = append(s.delays, d)
	s.mu.Unlock()
	return ctx.Err()
}

func (s *sleepRecorder) recorded() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]time.Duration(nil), s.delays...)
}

func testConfig() config.Config {
	return config.New("sk-test-key").
		WithBaseURL("https://api.test").
		WithBackoff(100*time.Millisecond, time.Second)
}

func newEngine(t *testing.T, cfg config.Config, stub *testutil.Transport, opts ...Option) (*Engine, *sleepRecorder) {
	t.Helper()
	rec := &sleepRecorder{}
	base := []Option{
		WithSleep(rec.sleep),
		WithRand(func() float64 { return 0.5 }), // no jitter
		WithRequestIDFunc(func() string { return "req-fixed" }),
	}
	e, err := New(cfg, stub, append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e, rec
}

func chatRequest() models.ChatCompletionRequest {
	return models.NewChatCompletionRequest(models.UserMessage("hi"))
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(testConfig(), nil); !stderrors.Is(err, errors.ErrConfig) {
		t.Errorf("nil transport: expected ConfigError, got %v", err)
	}
	if _, err := New(config.New(""), testutil.NewTransport()); !stderrors.Is(err, errors.ErrConfig) {
		t.Errorf("missing key: expected ConfigError, got %v", err)
	}
}

func TestSend_Success(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK, okBody))
	e, rec := newEngine(t, testConfig(), stub)

	resp, err := e.Send(context.Background(), chatRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content, ok := resp.Content(); !ok || content != "hello" {
		t.Errorf("Content() = %q, %v", content, ok)
	}
	if stub.Calls() != 1 || len(rec.recorded()) != 0 {
		t.Errorf("expected one attempt and no waits, got %d calls, %v", stub.Calls(), rec.recorded())
	}
}

func TestSend_BaseURLTrailingSlash(t *testing.T) {
	cfg := testConfig()
	cfg.BaseURL = "https://api.test/v1//"
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK, okBody), testutil.Reply(http.StatusOK, `{"data":[]}`))
	e, _ := newEngine(t, cfg, stub)

	if _, err := e.Send(context.Background(), chatRequest()); err != nil {
		t.Fatal(err)
	}
	if got := stub.LastRequest().URL; got != "https://api.test/v1/chat/completions" {
		t.Errorf("chat URL = %s", got)
	}
	if err := e.Get(context.Background(), PathModels, nil); err != nil {
		t.Fatal(err)
	}
	if got := stub.LastRequest().URL; got != "https://api.test/v1/models" {
		t.Errorf("models URL = %s", got)
	}
}

func TestSend_RequestWire(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK, okBody))
	e, _ := newEngine(t, testConfig().WithTimeout(7*time.Second).WithUserAgent("test-agent/1"), stub)

	req := chatRequest()
	req.Model = models.Reasoner
	req.MaxTokens = util.Ptr(32)
	if _, err := e.Send(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	sent := stub.LastRequest()
	if sent.Method != http.MethodPost || sent.URL != "https://api.test/chat/completions" {
		t.Errorf("unexpected target %s %s", sent.Method, sent.URL)
	}
	if sent.Timeout != 7*time.Second {
		t.Errorf("timeout = %v", sent.Timeout)
	}
	want := map[string]string{
		"Authorization": "Bearer sk-test-key",
		"Content-Type":  "application/json",
		"Accept":        "application/json",
		"User-Agent":    "test-agent/1",
		HeaderRequestID: "req-fixed",
	}
	for k, v := range want {
		if sent.Headers[k] != v {
			t.Errorf("header %s = %q, want %q", k, sent.Headers[k], v)
		}
	}

	var body map[string]any
	if err := json.Unmarshal(sent.Body, &body); err != nil {
		t.Fatalf("body is not JSON: %v", err)
	}
	if body["model"] != "deepseek-reasoner" || body["max_tokens"] != float64(32) {
		t.Errorf("unexpected body %v", body)
	}
	if _, ok := body["temperature"]; ok {
		t.Error("unset temperature must be omitted")
	}
}

func TestSend_RetriesTransientThenSucceeds(t *testing.T) {
	stub := testutil.NewTransport(
		testutil.ConnectionRefused(),
		testutil.Reply(http.StatusServiceUnavailable, `{"error":{"message":"busy"}}`),
		testutil.Reply(http.StatusOK, okBody),
	)
	e, rec := newEngine(t, testConfig(), stub, WithRequestIDFunc(newIDCounter()))

	if _, err := e.Send(context.Background(), chatRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.Calls() != 3 {
		t.Fatalf("expected exactly 3 attempts, got %d", stub.Calls())
	}

	delays := rec.recorded()
	if len(delays) != 2 {
		t.Fatalf("expected 2 waits, got %v", delays)
	}
	if delays[0] != 100*time.Millisecond || delays[1] != 200*time.Millisecond {
		t.Errorf("unexpected delays %v", delays)
	}
	for i := 1; i < len(delays); i++ {
		if delays[i] < delays[i-1] {
			t.Errorf("delays decreased: %v", delays)
		}
	}

	id := stub.Attempts()[0].Request.Headers[HeaderRequestID]
	for _, a := range stub.Attempts() {
		if a.Request.Headers[HeaderRequestID] != id {
			t.Errorf("request id changed across retries: %q vs %q", a.Request.Headers[HeaderRequestID], id)
		}
	}
}

func TestSend_NonDecreasingDelaysWithJitter(t *testing.T) {
	stub := testutil.NewTransport(testutil.TimedOut())
	rolls := []float64{0.99, 0.0, 0.99, 0.0}
	var mu sync.Mutex
	next := func() float64 {
		mu.Lock()
		defer mu.Unlock()
		r := rolls[0]
		rolls = rolls[1:]
		return r
	}
	cfg := testConfig().WithMaxAttempts(5).WithBackoff(100*time.Millisecond, 10*time.Second)
	e, rec := newEngine(t, cfg, stub, WithRand(next))

	_, err := e.Send(context.Background(), chatRequest())
	if !errors.IsTimeout(err) {
		t.Fatalf("expected timeout, got %v", err)
	}
	delays := rec.recorded()
	if len(delays) != 4 {
		t.Fatalf("expected 4 waits, got %v", delays)
	}
	for i := 1; i < len(delays); i++ {
		if delays[i] < delays[i-1] {
			t.Errorf("delays decreased: %v", delays)
		}
	}
}

func TestSend_ExhaustsOnServerError(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusInternalServerError, `{"error":{"message":"internal","type":"server_error"}}`))
	e, rec := newEngine(t, testConfig().WithMaxAttempts(4), stub)

	_, err := e.Send(context.Background(), chatRequest())
	if stub.Calls() != 4 {
		t.Errorf("expected 4 attempts, got %d", stub.Calls())
	}
	if len(rec.recorded()) != 3 {
		t.Errorf("expected 3 waits, got %v", rec.recorded())
	}
	if stderrors.Is(err, errors.ErrDecode) {
		t.Fatal("exhaustion must return the classified error, not a decode error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeAPI || appErr.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected API 500, got %v", err)
	}
	if appErr.Message != "internal" || appErr.ErrorType != "server_error" {
		t.Errorf("unexpected API error %+v", appErr)
	}
}

func TestSend_RateLimit(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusTooManyRequests,
		`{"error":{"message":"Rate limit reached","type":"rate_limit_error"}}`, "Retry-After", "2"))
	e, _ := newEngine(t, testConfig().WithMaxAttempts(1), stub)

	_, err := e.Send(context.Background(), chatRequest())
	if !stderrors.Is(err, errors.ErrRateLimitExceeded) {
		t.Fatalf("expected RateLimitExceeded, got %v", err)
	}
	if stderrors.Is(err, errors.ErrAPI) {
		t.Error("rate limit must be distinct from a generic API error")
	}
	if d, ok := errors.RetryAfter(err); !ok || d != 2*time.Second {
		t.Errorf("RetryAfter = %v, %v", d, ok)
	}
	if !strings.Contains(err.Error(), "Rate limit reached") {
		t.Errorf("expected API message in %q", err.Error())
	}
}

func TestSend_RateLimitIsRetried(t *testing.T) {
	stub := testutil.NewTransport(
		testutil.Reply(http.StatusTooManyRequests, ""),
		testutil.Reply(http.StatusOK, okBody),
	)
	e, _ := newEngine(t, testConfig(), stub)

	if _, err := e.Send(context.Background(), chatRequest()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.Calls() != 2 {
		t.Errorf("expected 2 attempts, got %d", stub.Calls())
	}
}

func TestSend_PermanentFailuresAreNotRetried(t *testing.T) {
	tests := []struct {
		name    string
		outcome testutil.Outcome
		code    errors.ErrorCode
	}{
		{"unparsable body", testutil.Reply(http.StatusOK, `{"choices": "nope"`), errors.ErrCodeDecode},
		{"html body", testutil.Reply(http.StatusOK, `<html>ok</html>`), errors.ErrCodeDecode},
		{"empty choices", testutil.Reply(http.StatusOK, `{"id":"x","choices":[]}`), errors.ErrCodeDecode},
		{"bad request", testutil.Reply(http.StatusBadRequest, `{"error":{"message":"bad","type":"invalid_request_error"}}`), errors.ErrCodeAPI},
		{"unauthorized", testutil.Reply(http.StatusUnauthorized, `{"error":{"message":"Authentication Fails"}}`), errors.ErrCodeAPI},
		{"payment required", testutil.Reply(http.StatusPaymentRequired, `{"error":{"message":"Insufficient Balance"}}`), errors.ErrCodeAPI},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stub := testutil.NewTransport(tc.outcome)
			e, rec := newEngine(t, testConfig(), stub)

			_, err := e.Send(context.Background(), chatRequest())
			appErr, ok := errors.AsAppError(err)
			if !ok || appErr.Code != tc.code {
				t.Fatalf("expected %s, got %v", tc.code, err)
			}
			if stub.Calls() != 1 || len(rec.recorded()) != 0 {
				t.Errorf("expected exactly one attempt, got %d", stub.Calls())
			}
		})
	}
}

func TestSend_EmptyChoicesMessage(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK, `{"choices":[]}`))
	e, _ := newEngine(t, testConfig(), stub)

	_, err := e.Send(context.Background(), chatRequest())
	if err == nil || !strings.Contains(err.Error(), "received empty response from API") {
		t.Errorf("unexpected error %v", err)
	}
}

func TestSend_APIErrorDetails(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusUnprocessableEntity,
		`{"error":{"message":"Invalid model","type":"invalid_request_error","code":"model_not_found","param":"model"}}`))
	e, _ := newEngine(t, testConfig(), stub)

	_, err := e.Send(context.Background(), chatRequest())
	appErr, _ := errors.AsAppError(err)
	if appErr == nil || appErr.Details[errors.DetailAPICode] != "model_not_found" || appErr.Details[errors.DetailParam] != "model" {
		t.Fatalf("unexpected error %+v", appErr)
	}
	if errors.IsRetryable(err) {
		t.Error("422 is permanent")
	}
}

func TestSend_RawErrorBodyTruncated(t *testing.T) {
	long := strings.Repeat("x", 2000)
	stub := testutil.NewTransport(testutil.Reply(http.StatusBadGateway, long))
	e, _ := newEngine(t, testConfig().WithMaxAttempts(1), stub)

	_, err := e.Send(context.Background(), chatRequest())
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.HTTPStatus != http.StatusBadGateway {
		t.Fatalf("expected API 502, got %v", err)
	}
	if len(appErr.Message) != maxErrorBody {
		t.Errorf("message length = %d, want %d", len(appErr.Message), maxErrorBody)
	}
	if appErr.Details[errors.DetailBody] != appErr.Message {
		t.Error("expected raw body in details")
	}
}

func TestSend_ContextCanceledBeforeSend(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK, okBody))
	e, _ := newEngine(t, testConfig(), stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Send(ctx, chatRequest())
	if !stderrors.Is(err, errors.ErrTransport) || !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled transport error, got %v", err)
	}
	if errors.IsRetryable(err) {
		t.Error("cancellation must not be retryable")
	}
	if stub.Calls() != 0 {
		t.Errorf("expected no attempts, got %d", stub.Calls())
	}
}

func TestSend_ContextCanceledDuringBackoff(t *testing.T) {
	stub := testutil.NewTransport(testutil.ConnectionRefused())
	ctx, cancel := context.WithCancel(context.Background())
	cancelOnSleep := func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}
	e, _ := newEngine(t, testConfig(), stub, WithSleep(cancelOnSleep))

	_, err := e.Send(ctx, chatRequest())
	if !stderrors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
	if stub.Calls() != 1 {
		t.Errorf("expected the loop to stop after one attempt, got %d", stub.Calls())
	}
}

func TestSend_DeadlineDuringBackoff(t *testing.T) {
	stub := testutil.NewTransport(testutil.ConnectionRefused())
	expire := func(context.Context, time.Duration) error { return context.DeadlineExceeded }
	e, _ := newEngine(t, testConfig(), stub, WithSleep(expire))

	_, err := e.Send(context.Background(), chatRequest())
	if !errors.IsTimeout(err) || errors.IsRetryable(err) {
		t.Errorf("expected a final timeout, got %v", err)
	}
}

func TestSend_Logs(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(&logger.Config{Level: "debug", Format: "json", Writer: &buf}, "test")
	stub := testutil.NewTransport(testutil.TimedOut(), testutil.Reply(http.StatusOK, okBody))
	e, _ := newEngine(t, testConfig(), stub, WithLogger(log))

	if _, err := e.Send(context.Background(), chatRequest()); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{`"message":"retrying request"`, `"code":"TRANSPORT_FAILURE"`, `"request_id":"req-fixed"`, `"model":"deepseek-chat"`, `"message":"request completed"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %s in logs:\n%s", want, out)
		}
	}
	if strings.Contains(out, "sk-test-key") {
		t.Error("logs leaked the API key")
	}
}

func TestSend_SpanAndMetrics(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	stub := testutil.NewTransport(testutil.ConnectionRefused(), testutil.ConnectionRefused(), testutil.Reply(http.StatusOK, okBody))
	e, _ := newEngine(t, testConfig(), stub, WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))

	if _, err := e.Send(context.Background(), chatRequest()); err != nil {
		t.Fatal(err)
	}

	spans := sr.Ended()
	if len(spans) != 1 || spans[0].Name() != observability.SpanChatCompletion {
		t.Fatalf("expected one %s span, got %v", observability.SpanChatCompletion, spans)
	}
	if n := len(spans[0].Events()); n != 2 {
		t.Errorf("expected 2 retry events, got %d", n)
	}

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatal(err)
	}
	var retries int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if sum, ok := m.Data.(metricdata.Sum[int64]); ok && m.Name == observability.MetricRetryTotal {
				for _, dp := range sum.DataPoints {
					retries += dp.Value
				}
			}
		}
	}
	if retries != 2 {
		t.Errorf("retry total = %d, want 2", retries)
	}
}

func TestSend_ConcurrentSendsShareNothing(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK, okBody))
	e, _ := newEngine(t, testConfig(), stub, WithRequestIDFunc(newIDCounter()))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := e.Send(context.Background(), chatRequest()); err != nil {
				t.Error(err)
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, a := range stub.Attempts() {
		seen[a.Request.Headers[HeaderRequestID]] = true
	}
	if len(seen) != 8 {
		t.Errorf("expected 8 distinct request ids, got %d", len(seen))
	}
}

func TestGet_ModelList(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK,
		`{"object":"list","data":[{"id":"deepseek-chat","object":"model","owned_by":"deepseek"}]}`))
	e, _ := newEngine(t, testConfig(), stub)

	var list models.ModelList
	if err := e.Get(context.Background(), PathModels, &list); err != nil {
		t.Fatal(err)
	}
	if ids := list.IDs(); len(ids) != 1 || ids[0] != "deepseek-chat" {
		t.Errorf("IDs() = %v", ids)
	}
	sent := stub.LastRequest()
	if sent.Method != http.MethodGet || sent.URL != "https://api.test/models" || sent.Body != nil {
		t.Errorf("unexpected request %+v", sent)
	}
	if _, ok := sent.Headers["Content-Type"]; ok {
		t.Error("GET must not declare a content type")
	}
}

func TestGet_Errors(t *testing.T) {
	stub := testutil.NewTransport(testutil.Reply(http.StatusOK, `not json`))
	e, _ := newEngine(t, testConfig(), stub)
	var list models.ModelList
	if err := e.Get(context.Background(), PathModels, &list); !stderrors.Is(err, errors.ErrDecode) {
		t.Errorf("expected decode error, got %v", err)
	}

	stub = testutil.NewTransport(testutil.Reply(http.StatusUnauthorized, `{"error":{"message":"Authentication Fails"}}`))
	e, _ = newEngine(t, testConfig(), stub)
	if err := e.Get(context.Background(), PathModels, nil); !errors.IsAuth(err) {
		t.Errorf("expected auth error, got %v", err)
	}
}

func newIDCounter() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "req-" + strings.Repeat("x", n)
	}
}
