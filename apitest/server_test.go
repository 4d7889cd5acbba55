package apitest

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/kbukum/deepseek/models"
)

func post(t *testing.T, url, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url+"/chat/completions", strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestServer_EchoesLastUserMessage(t *testing.T) {
	s := New(t)
	resp := post(t, s.URL(), "", `{"model":"deepseek-chat","messages":[`+
		`{"role":"user","content":"first"},{"role":"assistant","content":"ok"},{"role":"user","content":"second"}]}`)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode)
	}
	if resp.Header.Get("X-Request-Id") == "" {
		t.Error("expected a generated request id")
	}
	var out models.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if content, _ := out.Content(); content != "second" {
		t.Errorf("content = %q", content)
	}
	reqs := s.ChatRequests()
	if len(reqs) != 1 || len(reqs[0].Chat.Messages) != 3 {
		t.Fatalf("recorded = %+v", reqs)
	}
}

func TestServer_ScriptedRepliesInOrder(t *testing.T) {
	s := New(t)
	s.EnqueueChat(RateLimited(0), Raw(http.StatusOK, `{"choices":[]}`))

	first := post(t, s.URL(), "", `{}`)
	if first.StatusCode != http.StatusTooManyRequests {
		t.Errorf("first status = %d", first.StatusCode)
	}
	if first.Header.Get("Retry-After") != "0" {
		t.Errorf("Retry-After = %q", first.Header.Get("Retry-After"))
	}
	second := post(t, s.URL(), "", `{}`)
	body, _ := io.ReadAll(second.Body)
	if string(body) != `{"choices":[]}` {
		t.Errorf("second body = %s", body)
	}
}

func TestServer_RejectsWrongKey(t *testing.T) {
	s := New(t, WithAPIKey("sk-good"))
	if resp := post(t, s.URL(), "sk-bad", `{}`); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong key status = %d", resp.StatusCode)
	}
	if resp := post(t, s.URL(), "", `{}`); resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("missing key status = %d", resp.StatusCode)
	}
	if len(s.Requests()) != 2 {
		t.Errorf("requests = %d, want both recorded", len(s.Requests()))
	}
}

func TestServer_Models(t *testing.T) {
	s := New(t)
	s.SetModels(JSON(http.StatusOK, models.ModelList{Object: "list", Data: []models.ModelInfo{{ID: "deepseek-coder"}}}))

	resp, err := http.Get(s.URL() + "/models")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var list models.ModelList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		t.Fatal(err)
	}
	if ids := list.IDs(); len(ids) != 1 || ids[0] != "deepseek-coder" {
		t.Errorf("ids = %v", ids)
	}
}
