package models

import (
	"fmt"
	"strings"

	"github.com/kbukum/deepseek/errors"
)

// Model identifies a DeepSeek model variant.
type Model string

const (
	// Chat is the general conversation model.
	Chat Model = "deepseek-chat"
	// Reasoner returns a reasoning trace alongside the answer.
	Reasoner Model = "deepseek-reasoner"
	// Coder is tuned for programming tasks.
	Coder Model = "deepseek-coder"

	// DefaultModel is used when none is selected.
	DefaultModel = Chat
)

// String returns the wire identifier.
func (m Model) String() string { return string(m) }

// Valid reports whether m is one of the known models.
func (m Model) Valid() bool {
	switch m {
	case Chat, Reasoner, Coder:
		return true
	}
	return false
}

// SupportsReasoning reports whether responses carry reasoning_content.
func (m Model) SupportsReasoning() bool { return m == Reasoner }

// ParseModel maps a wire identifier or short name ("chat", "reasoner",
// "coder") to a Model.
func ParseModel(s string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deepseek-chat", "chat":
		return Chat, nil
	case "deepseek-reasoner", "reasoner":
		return Reasoner, nil
	case "deepseek-coder", "coder":
		return Coder, nil
	default:
		return "", errors.InvalidParameter("model", fmt.Sprintf("unknown model %q", s))
	}
}

// Role is the author of a message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the wire identifier.
func (r Role) String() string { return string(r) }
