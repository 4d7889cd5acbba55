package models

import (
	"strings"

	"github.com/kbukum/deepseek/validation"
)

// Message is one conversation turn.
type Message struct {
	Role    Role   `json:"role" validate:"required,oneof=system user assistant"`
	Content string `json:"content" validate:"required"`
}

// NewMessage creates a message with the given role.
func NewMessage(role Role, content string) Message {
	return Message{Role: role, Content: content}
}

// SystemMessage creates a system message.
func SystemMessage(content string) Message { return NewMessage(RoleSystem, content) }

// UserMessage creates a user message.
func UserMessage(content string) Message { return NewMessage(RoleUser, content) }

// AssistantMessage creates an assistant message.
func AssistantMessage(content string) Message { return NewMessage(RoleAssistant, content) }

// Len returns the content length in bytes.
func (m Message) Len() int { return len(m.Content) }

// IsEmpty reports whether the content is empty or whitespace.
func (m Message) IsEmpty() bool { return strings.TrimSpace(m.Content) == "" }

// Temperature controls sampling randomness, in [0.0, 2.0].
type Temperature float64

// Temperature presets.
const (
	TemperatureVeryLow  Temperature = 0.1
	TemperatureLow      Temperature = 0.3
	TemperatureMedium   Temperature = 0.7
	TemperatureHigh     Temperature = 1.0
	TemperatureVeryHigh Temperature = 1.5

	MinTemperature Temperature = 0.0
	MaxTemperature Temperature = 2.0
)

// NewTemperature validates v.
func NewTemperature(v float64) (Temperature, error) {
	if err := validation.New().
		FloatRange("temperature", v, float64(MinTemperature), float64(MaxTemperature)).
		Validate(); err != nil {
		return 0, err
	}
	return Temperature(v), nil
}

// Float64 returns the raw value.
func (t Temperature) Float64() float64 { return float64(t) }
