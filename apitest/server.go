package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/kbukum/deepseek/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// Reply is one scripted HTTP response.
type Reply struct {
	Status  int
	Body    string
	Headers map[string]string
	// Delay holds the response back. The handler gives up early when the
	// client goes away.
	Delay time.Duration
}

// Recorded is a request received by the server.
type Recorded struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
	// Chat is the decoded body of a chat completion request.
	Chat *models.ChatCompletionRequest
}

// Server is a fake DeepSeek API. It is safe for concurrent use.
type Server struct {
	mu       sync.Mutex
	ts       *httptest.Server
	apiKey   string
	chat     []Reply
	models   Reply
	requests []Recorded
}

// Option configures a Server.
type Option func(*Server)

// WithAPIKey makes the server reject requests whose bearer token differs
// from key with a DeepSeek-style 401.
func WithAPIKey(key string) Option {
	return func(s *Server) { s.apiKey = key }
}

// New starts a server and closes it when the test ends.
func New(t testing.TB, opts ...Option) *Server {
	t.Helper()
	s := &Server{models: JSON(http.StatusOK, DefaultModels())}
	for _, opt := range opts {
		opt(s)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), s.record(), s.authenticate())
	engine.POST("/chat/completions", s.handleChat)
	engine.GET("/models", s.handleModels)

	s.ts = httptest.NewServer(engine)
	t.Cleanup(s.ts.Close)
	return s
}

// URL returns the base URL to configure the client with.
func (s *Server) URL() string { return s.ts.URL }

// EnqueueChat appends replies for POST /chat/completions, served in order.
func (s *Server) EnqueueChat(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chat = append(s.chat, replies...)
}

// SetModels sets the reply for GET /models.
func (s *Server) SetModels(r Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.models = r
}

// Requests returns a copy of the recorded requests.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// ChatRequests returns the recorded chat completion requests.
func (s *Server) ChatRequests() []Recorded {
	var out []Recorded
	for _, r := range s.Requests() {
		if r.Chat != nil {
			out = append(out, r)
		}
	}
	return out
}

// requestID echoes X-Request-Id, generating one when absent.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-Id")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-Id", id)
		c.Next()
	}
}

const recordKey = "apitest.record"

func (s *Server) record() gin.HandlerFunc {
	return func(c *gin.Context) {
		body, _ := io.ReadAll(c.Request.Body)
		rec := Recorded{
			Method: c.Request.Method,
			Path:   c.Request.URL.Path,
			Header: c.Request.Header.Clone(),
			Body:   body,
		}
		if c.Request.Method == http.MethodPost && c.Request.URL.Path == "/chat/completions" {
			var req models.ChatCompletionRequest
			if json.Unmarshal(body, &req) == nil {
				rec.Chat = &req
			}
		}
		s.mu.Lock()
		s.requests = append(s.requests, rec)
		s.mu.Unlock()
		c.Set(recordKey, rec)
		c.Next()
	}
}

func (s *Server) authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.apiKey == "" {
			c.Next()
			return
		}
		token, ok := strings.CutPrefix(c.GetHeader("Authorization"), "Bearer ")
		if !ok || token != s.apiKey {
			write(c, Error(http.StatusUnauthorized, "Authentication Fails, Your api key is invalid", "authentication_error"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func (s *Server) handleChat(c *gin.Context) {
	s.mu.Lock()
	var reply Reply
	scripted := len(s.chat) > 0
	if scripted {
		reply = s.chat[0]
		s.chat = s.chat[1:]
	}
	s.mu.Unlock()

	if !scripted {
		rec, _ := c.Get(recordKey)
		r, _ := rec.(Recorded)
		reply = echo(r.Chat)
	}
	write(c, reply)
}

func (s *Server) handleModels(c *gin.Context) {
	s.mu.Lock()
	reply := s.models
	s.mu.Unlock()
	write(c, reply)
}

// echo answers with the content of the last user message.
func echo(req *models.ChatCompletionRequest) Reply {
	if req == nil {
		return Error(http.StatusBadRequest, "Failed to deserialize the JSON body", "invalid_request_error")
	}
	content := ""
	for _, m := range req.Messages {
		if m.Role == models.RoleUser {
			content = m.Content
		}
	}
	resp := CompletionResponse(content)
	resp.Model = req.Model.String()
	return JSON(http.StatusOK, resp)
}

func write(c *gin.Context, r Reply) {
	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-c.Request.Context().Done():
			return
		}
	}
	for k, v := range r.Headers {
		c.Header(k, v)
	}
	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	c.Data(status, "application/json", []byte(r.Body))
}
