package llm

import (
	"context"
)

// LLMProvider defines the interface that all LLM providers must implement.
type LLMProvider interface {
	// StreamResponse starts generation and returns a channel of events.
	// The channel is closed when generation ends. A terminal event carries
	// either Metadata (success) or Error.
	StreamResponse(ctx context.Context, req *GenerateRequest) (<-chan StreamEvent, error)

	// Name returns the provider name (e.g., "openrouter", "lorem")
	Name() string

	// SupportsModel returns true if the provider supports the given model.
	SupportsModel(model string) bool
}

// GenerateRequest contains the parameters for an LLM generation request.
type GenerateRequest struct {
	// Model is the provider-local model identifier (e.g., "x-ai/grok-4.1-fast:free")
	Model string

	// SystemMessage is sent ahead of the transcript. Never empty once the
	// streaming service has applied its default.
	SystemMessage string

	// Messages contains the conversation history, oldest first.
	Messages []Message
}

// Message represents a single message in the conversation.
type Message struct {
	// Role is either "user" or "assistant"
	Role string

	// Content is the plain text of the message
	Content string
}

// StreamEvent is emitted by a provider while generating.
// Exactly one of TextDelta, Metadata or Error is set.
type StreamEvent struct {
	TextDelta string
	Metadata  *StreamMetadata
	Error     error
}

// StreamMetadata closes a successful generation.
type StreamMetadata struct {
	Model        string
	InputTokens  int
	OutputTokens int
	StopReason   string
}
