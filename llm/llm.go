package llm

import (
	"context"
)

// LLM represents a text-generation backend. The core is backend-agnostic
// beyond this call shape; the concrete backend is selected by
// configuration at startup.
type LLM interface {
	// Chat generates a response to the given messages
	Chat(ctx context.Context, messages []Message, opts ...Option) (*Message, error)

	// Complete generates a completion for a single prompt
	Complete(ctx context.Context, prompt string, opts ...Option) (string, error)
}

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)
