// Package apitest provides an in-process fake of the DeepSeek HTTP API for
// tests.
//
// The server is a gin engine behind httptest. It serves
// POST /chat/completions from a queue of scripted replies (echoing the
// last user message once the queue is empty) and GET /models from a
// configurable reply, and records every request it receives.
//
//	srv := apitest.New(t, apitest.WithAPIKey("sk-test"))
//	srv.EnqueueChat(apitest.Status(http.StatusServiceUnavailable), apitest.Completion("hi"))
//	cfg := config.New("sk-test").WithBaseURL(srv.URL())
package apitest
