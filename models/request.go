package models

import (
	"fmt"
	"slices"

	"github.com/kbukum/deepseek/errors"
	"github.com/kbukum/deepseek/util"
	"github.com/kbukum/deepseek/validation"
)

// Parameter ranges accepted by the API.
const (
	MinTopP    = 0.0
	MaxTopP    = 1.0
	MinPenalty = -2.0
	MaxPenalty = 2.0
	MinN       = 1
	MaxN       = 10
)

// ChatCompletionRequest is the body of POST /chat/completions. Optional
// parameters are nil when unset and omitted from the JSON.
type ChatCompletionRequest struct {
	Model            Model     `json:"model" validate:"required,oneof=deepseek-chat deepseek-reasoner deepseek-coder"`
	Messages         []Message `json:"messages" validate:"min=1,dive"`
	Temperature      *float64  `json:"temperature,omitempty" validate:"omitempty,gte=0,lte=2"`
	MaxTokens        *int      `json:"max_tokens,omitempty" validate:"omitempty,gt=0"`
	TopP             *float64  `json:"top_p,omitempty" validate:"omitempty,gte=0,lte=1"`
	FrequencyPenalty *float64  `json:"frequency_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	PresencePenalty  *float64  `json:"presence_penalty,omitempty" validate:"omitempty,gte=-2,lte=2"`
	Stop             []string  `json:"stop,omitempty"`
	N                *int      `json:"n,omitempty" validate:"omitempty,gte=1,lte=10"`
	User             string    `json:"user,omitempty"`
}

// NewChatCompletionRequest creates a request for the default model.
func NewChatCompletionRequest(messages ...Message) ChatCompletionRequest {
	return ChatCompletionRequest{Model: DefaultModel, Messages: slices.Clone(messages)}
}

// Validate checks the request before it is sent.
func (r ChatCompletionRequest) Validate() error {
	if len(r.Messages) == 0 {
		return errors.InvalidParameter("messages", "at least one message is required")
	}
	for i, m := range r.Messages {
		if m.IsEmpty() {
			return errors.InvalidParameter(fmt.Sprintf("messages[%d].content", i),
				fmt.Sprintf("message at index %d is empty", i))
		}
	}
	return validation.Validate(r)
}

// Clone returns a deep copy.
func (r ChatCompletionRequest) Clone() ChatCompletionRequest {
	c := r
	c.Messages = slices.Clone(r.Messages)
	c.Stop = slices.Clone(r.Stop)
	c.Temperature = util.Clone(r.Temperature)
	c.MaxTokens = util.Clone(r.MaxTokens)
	c.TopP = util.Clone(r.TopP)
	c.FrequencyPenalty = util.Clone(r.FrequencyPenalty)
	c.PresencePenalty = util.Clone(r.PresencePenalty)
	c.N = util.Clone(r.N)
	return c
}
