package deepseek

import (
	"context"
	"slices"

	"github.com/kbukum/deepseek/dispatch"
	"github.com/kbukum/deepseek/errors"
	"github.com/kbukum/deepseek/models"
	"github.com/kbukum/deepseek/util"
	"github.com/kbukum/deepseek/validation"
)

// ChatBuilder accumulates a conversation and its parameters. Methods that
// validate return (builder, error); on error the builder is unchanged and
// can still be used. A ChatBuilder must not be shared between goroutines.
type ChatBuilder struct {
	engine  *dispatch.Engine
	request models.ChatCompletionRequest
}

func newChatBuilder(engine *dispatch.Engine) *ChatBuilder {
	return &ChatBuilder{
		engine:  engine,
		request: models.ChatCompletionRequest{Model: models.DefaultModel},
	}
}

// AddSystemMessage appends a system message.
func (b *ChatBuilder) AddSystemMessage(content string) (*ChatBuilder, error) {
	return b.AddMessage(models.SystemMessage(content))
}

// AddUserMessage appends a user message.
func (b *ChatBuilder) AddUserMessage(content string) (*ChatBuilder, error) {
	return b.AddMessage(models.UserMessage(content))
}

// AddAssistantMessage appends an assistant message, e.g. a previous answer.
func (b *ChatBuilder) AddAssistantMessage(content string) (*ChatBuilder, error) {
	return b.AddMessage(models.AssistantMessage(content))
}

// AddMessage appends m. Empty or whitespace-only content is rejected.
func (b *ChatBuilder) AddMessage(m models.Message) (*ChatBuilder, error) {
	if m.IsEmpty() {
		return b, errors.InvalidParameter("content", "message content cannot be empty")
	}
	if err := validation.Validate(m); err != nil {
		return b, err
	}
	b.request.Messages = append(b.request.Messages, m)
	return b, nil
}

// WithModel selects the model. Build rejects models other than Chat,
// Reasoner and Coder.
func (b *ChatBuilder) WithModel(m models.Model) *ChatBuilder {
	b.request.Model = m
	return b
}

// WithTemperature sets the sampling temperature, in [0.0, 2.0].
func (b *ChatBuilder) WithTemperature(v float64) (*ChatBuilder, error) {
	t, err := models.NewTemperature(v)
	if err != nil {
		return b, err
	}
	b.request.Temperature = util.Ptr(t.Float64())
	return b, nil
}

// WithMaxTokens caps the completion length. n must be positive.
func (b *ChatBuilder) WithMaxTokens(n int) (*ChatBuilder, error) {
	if err := check(validation.New().Min("max_tokens", n, 1)); err != nil {
		return b, err
	}
	b.request.MaxTokens = util.Ptr(n)
	return b, nil
}

// WithTopP sets nucleus sampling, in [0.0, 1.0].
func (b *ChatBuilder) WithTopP(v float64) (*ChatBuilder, error) {
	if err := check(validation.New().FloatRange("top_p", v, models.MinTopP, models.MaxTopP)); err != nil {
		return b, err
	}
	b.request.TopP = util.Ptr(v)
	return b, nil
}

// WithFrequencyPenalty sets the frequency penalty, in [-2.0, 2.0].
func (b *ChatBuilder) WithFrequencyPenalty(v float64) (*ChatBuilder, error) {
	if err := check(validation.New().FloatRange("frequency_penalty", v, models.MinPenalty, models.MaxPenalty)); err != nil {
		return b, err
	}
	b.request.FrequencyPenalty = util.Ptr(v)
	return b, nil
}

// WithPresencePenalty sets the presence penalty, in [-2.0, 2.0].
func (b *ChatBuilder) WithPresencePenalty(v float64) (*ChatBuilder, error) {
	if err := check(validation.New().FloatRange("presence_penalty", v, models.MinPenalty, models.MaxPenalty)); err != nil {
		return b, err
	}
	b.request.PresencePenalty = util.Ptr(v)
	return b, nil
}

// WithN asks for n choices, in [1, 10].
func (b *ChatBuilder) WithN(n int) (*ChatBuilder, error) {
	if err := check(validation.New().Range("n", n, models.MinN, models.MaxN)); err != nil {
		return b, err
	}
	b.request.N = util.Ptr(n)
	return b, nil
}

// WithStop sets the stop sequences. Calling it again replaces them.
func (b *ChatBuilder) WithStop(stop ...string) *ChatBuilder {
	b.request.Stop = slices.Clone(stop)
	return b
}

// WithUser tags the request with an end-user identifier.
func (b *ChatBuilder) WithUser(user string) *ChatBuilder {
	b.request.User = user
	return b
}

// Messages returns a copy of the conversation so far.
func (b *ChatBuilder) Messages() []models.Message {
	return slices.Clone(b.request.Messages)
}

// Model returns the selected model.
func (b *ChatBuilder) Model() models.Model { return b.request.Model }

// Temperature returns the temperature, if set.
func (b *ChatBuilder) Temperature() (float64, bool) {
	return util.Deref(b.request.Temperature), b.request.Temperature != nil
}

// MaxTokens returns the token cap, if set.
func (b *ChatBuilder) MaxTokens() (int, bool) {
	return util.Deref(b.request.MaxTokens), b.request.MaxTokens != nil
}

// Build returns the finished request. Later changes to the builder do not
// affect it.
func (b *ChatBuilder) Build() (models.ChatCompletionRequest, error) {
	if err := b.request.Validate(); err != nil {
		return models.ChatCompletionRequest{}, err
	}
	return b.request.Clone(), nil
}

// Send builds the request and sends it. An invalid builder fails here
// without touching the network.
func (b *ChatBuilder) Send(ctx context.Context) (*models.ChatCompletionResponse, error) {
	req, err := b.Build()
	if err != nil {
		return nil, err
	}
	if b.engine == nil {
		return nil, errors.Config("builder is not attached to a client")
	}
	return b.engine.Send(ctx, req)
}

func check(v *validation.Validator) error {
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}
