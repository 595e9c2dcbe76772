package llm

import (
	"context"

	"promptchat/internal/domain/models/chat"
)

// StreamingService turns a chat request into a UI message stream.
type StreamingService interface {
	// StreamChat validates the request and starts generation.
	// Validation failures are returned synchronously (wrapping domain.ErrValidation).
	// Once started, the returned channel yields chunks in order and is closed
	// after a terminal chunk (finish or error).
	StreamChat(ctx context.Context, req *ChatRequest) (<-chan chat.StreamChunk, error)
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	ChatID        string         `json:"chatId,omitempty"`
	Messages      []chat.Message `json:"messages"`
	SystemMessage string         `json:"systemMessage,omitempty"`
	Model         string         `json:"model,omitempty"`
}
