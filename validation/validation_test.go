package validation

import (
	stderrors "errors"
	"math"
	"strings"
	"testing"

	"github.com/kbukum/deepseek/errors"
)

func TestValidatorRequired(t *testing.T) {
	v := New()
	v.Required("content", "hello")
	if v.HasErrors() {
		t.Error("expected no errors for valid input")
	}

	v2 := New()
	v2.Required("content", "")
	if !v2.HasErrors() {
		t.Error("expected error for empty required field")
	}

	v3 := New()
	v3.Required("content", "   ")
	if !v3.HasErrors() {
		t.Error("expected error for whitespace-only required field")
	}
}

func TestValidatorFloatRange(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		ok    bool
	}{
		{"lower bound", 0.0, true},
		{"upper bound", 2.0, true},
		{"middle", 0.7, true},
		{"below", -0.1, false},
		{"above", 2.1, false},
		{"nan", math.NaN(), false},
		{"inf", math.Inf(1), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := New().FloatRange("temperature", tc.value, 0, 2)
			if v.HasErrors() == tc.ok {
				t.Errorf("FloatRange(%v): HasErrors = %v", tc.value, v.HasErrors())
			}
		})
	}
}

func TestValidatorFloatRange_Message(t *testing.T) {
	v := New().FloatRange("temperature", 3, 0, 2)
	got := v.Errors()[0].Message
	if got != "must be between 0.0 and 2.0, got 3" {
		t.Errorf("message = %q", got)
	}
}

func TestValidatorRange(t *testing.T) {
	v := New()
	v.Range("n", 5, 1, 10)
	if v.HasErrors() {
		t.Error("expected no error for value in range")
	}

	v2 := New()
	v2.Range("n", 0, 1, 10)
	if !v2.HasErrors() {
		t.Error("expected error for value below range")
	}

	v3 := New()
	v3.Range("n", 11, 1, 10)
	if !v3.HasErrors() {
		t.Error("expected error for value above range")
	}
}

func TestValidatorMin(t *testing.T) {
	if New().Min("max_tokens", 1, 1).HasErrors() {
		t.Error("expected no error at minimum")
	}
	if !New().Min("max_tokens", 0, 1).HasErrors() {
		t.Error("expected error below minimum")
	}
}

func TestValidatorPositive(t *testing.T) {
	if New().Positive("timeout", 1).HasErrors() {
		t.Error("expected no error for positive value")
	}
	if !New().Positive("timeout", 0).HasErrors() {
		t.Error("expected error for zero")
	}
}

func TestValidatorURL(t *testing.T) {
	tests := []struct {
		in string
		ok bool
	}{
		{"https://api.deepseek.com", true},
		{"http://localhost:8080/v1", true},
		{"not a url", false},
		{"ftp://example.com", false},
		{"https://", false},
		{"", false},
	}
	for _, tc := range tests {
		v := New().URL("base_url", tc.in)
		if v.HasErrors() == tc.ok {
			t.Errorf("URL(%q): HasErrors = %v", tc.in, v.HasErrors())
		}
	}
}

func TestValidatorOneOf(t *testing.T) {
	v := New()
	v.OneOf("role", "user", []string{"system", "user", "assistant"})
	if v.HasErrors() {
		t.Error("expected no error for valid oneOf value")
	}

	v2 := New()
	v2.OneOf("role", "tool", []string{"system", "user", "assistant"})
	if !v2.HasErrors() {
		t.Error("expected error for invalid oneOf value")
	}

	// Empty should be skipped
	v3 := New()
	v3.OneOf("role", "", []string{"user"})
	if v3.HasErrors() {
		t.Error("expected no error for empty oneOf value")
	}
}

func TestValidatorCustom(t *testing.T) {
	v := New()
	v.Custom(true, "field", "should pass")
	if v.HasErrors() {
		t.Error("expected no error for true condition")
	}

	v2 := New()
	v2.Custom(false, "field", "custom error")
	if !v2.HasErrors() {
		t.Error("expected error for false condition")
	}
	if v2.Errors()[0].Message != "custom error" {
		t.Errorf("expected 'custom error', got %q", v2.Errors()[0].Message)
	}
}

func TestValidatorValidate(t *testing.T) {
	if appErr := New().Required("api_key", "sk").Validate(); appErr != nil {
		t.Error("expected nil for valid input")
	}

	v := New()
	v.Required("api_key", "")
	v.URL("base_url", "nope")
	appErr := v.Validate()
	if appErr == nil {
		t.Fatal("expected error")
	}
	if !stderrors.Is(appErr, errors.ErrInvalidParameter) {
		t.Errorf("expected InvalidParameter, got %v", appErr.Code)
	}
	if appErr.Details[errors.DetailField] != "api_key" {
		t.Errorf("expected first field in details, got %v", appErr.Details[errors.DetailField])
	}
	if !strings.Contains(appErr.Message, "api_key") || !strings.Contains(appErr.Message, "base_url") {
		t.Errorf("expected both fields in message, got %q", appErr.Message)
	}
}

func TestValidatorChaining(t *testing.T) {
	v := New()
	result := v.Required("model", "deepseek-chat").Range("n", 1, 1, 10).Min("max_tokens", 25, 1)
	if result != v {
		t.Error("expected chaining to return same validator")
	}
	if v.HasErrors() {
		t.Error("expected no errors for valid chained validation")
	}
}

type message struct {
	Role    string `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

type request struct {
	Model       string    `json:"model" validate:"required"`
	Messages    []message `json:"messages" validate:"min=1,dive"`
	Temperature *float64  `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens   *int      `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
}

func TestStructValidateValid(t *testing.T) {
	temp := 0.7
	err := Validate(request{
		Model:       "deepseek-chat",
		Messages:    []message{{Role: "user", Content: "hi"}},
		Temperature: &temp,
	})
	if err != nil {
		t.Errorf("expected no error, got %v", err)
	}
}

func TestStructValidateEmptyMessages(t *testing.T) {
	err := Validate(request{Model: "deepseek-chat"})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "messages: must contain at least 1 item(s)") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestStructValidateNestedField(t *testing.T) {
	err := Validate(request{
		Model:    "deepseek-chat",
		Messages: []message{{Role: "user", Content: "ok"}, {Role: "bot", Content: "x"}},
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if !strings.Contains(err.Error(), "messages[1].role") {
		t.Errorf("expected nested path in %q", err.Error())
	}
}

func TestStructValidateRanges(t *testing.T) {
	temp := 2.5
	zero := 0
	err := Validate(request{
		Model:       "deepseek-chat",
		Messages:    []message{{Role: "user", Content: "hi"}},
		Temperature: &temp,
		MaxTokens:   &zero,
	})
	if err == nil {
		t.Fatal("expected validation error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "temperature: must be at most 2") {
		t.Errorf("expected temperature message in %q", msg)
	}
	if !strings.Contains(msg, "max_tokens: must be greater than 0") {
		t.Errorf("expected max_tokens message in %q", msg)
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := map[string]string{
		"MaxTokens": "max_tokens",
		"TopP":      "top_p",
		"model":     "model",
	}
	for in, want := range tests {
		if got := toSnakeCase(in); got != want {
			t.Errorf("toSnakeCase(%q) = %q, want %q", in, got, want)
		}
	}
}
