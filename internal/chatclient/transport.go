package chatclient

import (
	"context"

	"promptchat/internal/domain/models/chat"
)

// Chunk is one event of the UI message stream.
type Chunk = chat.StreamChunk

// Trigger says why a request was sent.
type Trigger string

const (
	TriggerSubmit     Trigger = "submit-message"
	TriggerRegenerate Trigger = "regenerate-message"
)

// Request is what a session sends for one turn: the full transcript and
// the system message the session is bound to.
type Request struct {
	ChatID        string         `json:"chatId,omitempty"`
	SystemMessage string         `json:"systemMessage,omitempty"`
	Model         string         `json:"model,omitempty"`
	Messages      []chat.Message `json:"messages"`
	Trigger       Trigger        `json:"trigger"`
}

// Transport starts a streamed assistant response.
type Transport interface {
	Send(ctx context.Context, req *Request) (Stream, error)
}

// Stream yields chunks in arrival order.
//
//	for stream.Next() {
//		chunk := stream.Chunk()
//	}
//	if err := stream.Err(); err != nil { ... }
type Stream interface {
	Next() bool
	Chunk() Chunk
	Err() error
	Close() error
}
