package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// ChatCompletionResponse is the decoded body of a successful completion.
type ChatCompletionResponse struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	Choices           []Choice `json:"choices"`
	Usage             *Usage   `json:"usage,omitempty"`
	SystemFingerprint string   `json:"system_fingerprint,omitempty"`
}

// Content returns the first choice's content.
func (r *ChatCompletionResponse) Content() (string, bool) {
	if len(r.Choices) == 0 || r.Choices[0].Message.Content == nil {
		return "", false
	}
	return *r.Choices[0].Message.Content, true
}

// Reasoning returns the first choice's reasoning trace.
func (r *ChatCompletionResponse) Reasoning() (string, bool) {
	if len(r.Choices) == 0 || r.Choices[0].Message.ReasoningContent == nil {
		return "", false
	}
	return *r.Choices[0].Message.ReasoningContent, true
}

// IsFinished reports whether the first choice stopped naturally.
func (r *ChatCompletionResponse) IsFinished() bool {
	return len(r.Choices) > 0 && r.Choices[0].FinishReason != nil &&
		*r.Choices[0].FinishReason == FinishReasonStop
}

// TotalTokens returns the total token count when usage was reported.
func (r *ChatCompletionResponse) TotalTokens() (int, bool) {
	if r.Usage == nil {
		return 0, false
	}
	return r.Usage.TotalTokens, true
}

// Choice is one completion alternative.
type Choice struct {
	Index        int             `json:"index"`
	Message      ResponseMessage `json:"message"`
	FinishReason *FinishReason   `json:"finish_reason,omitempty"`
	Logprobs     json.RawMessage `json:"logprobs,omitempty"`
}

// FinishReason says why generation stopped.
type FinishReason string

const (
	FinishReasonStop                       FinishReason = "stop"
	FinishReasonLength                     FinishReason = "length"
	FinishReasonContentFilter              FinishReason = "content_filter"
	FinishReasonToolCalls                  FinishReason = "tool_calls"
	FinishReasonInsufficientSystemResource FinishReason = "insufficient_system_resource"
)

// ResponseMessage is the assistant's reply. Reasoning models may return
// ReasoningContent with no Content.
type ResponseMessage struct {
	Role             Role    `json:"role"`
	Content          *string `json:"content,omitempty"`
	ReasoningContent *string `json:"reasoning_content,omitempty"`
}

// HasContent reports whether Content is present and non-empty.
func (m ResponseMessage) HasContent() bool { return m.Content != nil && *m.Content != "" }

// HasReasoning reports whether ReasoningContent is present and non-empty.
func (m ResponseMessage) HasReasoning() bool {
	return m.ReasoningContent != nil && *m.ReasoningContent != ""
}

// TotalLength is the combined byte length of content and reasoning.
func (m ResponseMessage) TotalLength() int {
	n := 0
	if m.Content != nil {
		n += len(*m.Content)
	}
	if m.ReasoningContent != nil {
		n += len(*m.ReasoningContent)
	}
	return n
}

// Usage reports token consumption.
type Usage struct {
	PromptTokens          int  `json:"prompt_tokens"`
	CompletionTokens      int  `json:"completion_tokens"`
	TotalTokens           int  `json:"total_tokens"`
	ReasoningTokens       *int `json:"reasoning_tokens,omitempty"`
	PromptCacheHitTokens  *int `json:"prompt_cache_hit_tokens,omitempty"`
	PromptCacheMissTokens *int `json:"prompt_cache_miss_tokens,omitempty"`
}

// Pricing is a price list in currency units per million tokens.
type Pricing struct {
	PromptPerMillion       float64
	CachedPromptPerMillion float64
	CompletionPerMillion   float64
}

// EstimateCost prices the usage. When the API reports cache hits and the
// price list has a cached rate, hit tokens are billed at that rate.
func (u Usage) EstimateCost(p Pricing) float64 {
	prompt := float64(u.PromptTokens) * p.PromptPerMillion
	if u.PromptCacheHitTokens != nil && p.CachedPromptPerMillion > 0 {
		hits := float64(*u.PromptCacheHitTokens)
		prompt = (float64(u.PromptTokens)-hits)*p.PromptPerMillion + hits*p.CachedPromptPerMillion
	}
	return (prompt + float64(u.CompletionTokens)*p.CompletionPerMillion) / 1e6
}

// APIErrorResponse is the body of a non-2xx response.
type APIErrorResponse struct {
	Error APIErrorDetail `json:"error"`
}

// APIErrorDetail describes an API error.
type APIErrorDetail struct {
	Message string       `json:"message"`
	Type    string       `json:"type,omitempty"`
	Code    APIErrorCode `json:"code,omitempty"`
	Param   string       `json:"param,omitempty"`
}

// APIErrorCode accepts both string and numeric codes.
type APIErrorCode string

// UnmarshalJSON implements json.Unmarshaler.
func (c *APIErrorCode) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*c = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*c = APIErrorCode(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	if _, err := strconv.ParseFloat(n.String(), 64); err != nil {
		return err
	}
	*c = APIErrorCode(n.String())
	return nil
}

// DecodeAPIError parses an error body. ok is false when the body does not
// have the {"error":{"message":...}} shape.
func DecodeAPIError(body []byte) (APIErrorDetail, bool) {
	var resp APIErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil || resp.Error.Message == "" {
		return APIErrorDetail{}, false
	}
	return resp.Error, true
}

// ModelList is the body of GET /models.
type ModelList struct {
	Object string      `json:"object"`
	Data   []ModelInfo `json:"data"`
}

// ModelInfo describes one available model.
type ModelInfo struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	OwnedBy string `json:"owned_by"`
}

// IDs returns the model identifiers.
func (l *ModelList) IDs() []string {
	ids := make([]string, len(l.Data))
	for i, m := range l.Data {
		ids[i] = m.ID
	}
	return ids
}
