package chat

import (
	"encoding/json"
	"fmt"
)

// ChunkType names a UI message stream event.
type ChunkType string

const (
	ChunkStart     ChunkType = "start"      // Assistant message begins
	ChunkTextStart ChunkType = "text-start" // Text part begins
	ChunkTextDelta ChunkType = "text-delta" // Text increment
	ChunkTextEnd   ChunkType = "text-end"   // Text part ends
	ChunkFinish    ChunkType = "finish"     // Terminal success
	ChunkError     ChunkType = "error"      // Terminal failure
)

// StreamDone is the sentinel data line that closes a UI message stream.
const StreamDone = "[DONE]"

// StreamChunk is one event of the UI message stream, sent as a single
// JSON object per SSE data line.
//
//	data: {"type":"text-delta","id":"txt_1","delta":"Hel","seq":1}
//
// Seq numbers text increments per message starting at 1, so a consumer can
// detect gaps or replays.
type StreamChunk struct {
	Type         ChunkType `json:"type"`
	MessageID    string    `json:"messageId,omitempty"`
	ID           string    `json:"id,omitempty"`
	Delta        string    `json:"delta,omitempty"`
	Seq          int       `json:"seq,omitempty"`
	FinishReason string    `json:"finishReason,omitempty"`
	ErrorText    string    `json:"errorText,omitempty"`
}

// IsTerminal reports whether the chunk ends the stream.
func (c StreamChunk) IsTerminal() bool {
	return c.Type == ChunkFinish || c.Type == ChunkError
}

// FormatSSE renders the chunk as an SSE data frame.
func (c StreamChunk) FormatSSE() (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal stream chunk: %w", err)
	}
	return fmt.Sprintf("data: %s\n\n", data), nil
}

// FormatDone renders the closing sentinel frame.
func FormatDone() string {
	return "data: " + StreamDone + "\n\n"
}
