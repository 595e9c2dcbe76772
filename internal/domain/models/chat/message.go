package chat

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Role identifies the author of a chat message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem is accepted on the wire but never sent to a provider as a
	// transcript entry; the system prompt travels separately.
	RoleSystem Role = "system"
)

// PartType tags a message part.
type PartType string

const (
	PartTypeText PartType = "text"
)

// Part is one element of a message body.
// Only text parts carry meaning. Parts with any other tag are kept verbatim
// so they survive a decode/encode cycle, and are skipped everywhere else.
type Part struct {
	Type PartType
	Text string

	raw json.RawMessage
}

// TextPart builds a text part.
func TextPart(text string) Part {
	return Part{Type: PartTypeText, Text: text}
}

// IsText reports whether the part is a text part.
func (p Part) IsText() bool {
	return p.Type == PartTypeText
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Part) UnmarshalJSON(data []byte) error {
	var head struct {
		Type PartType `json:"type"`
		Text string   `json:"text"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return err
	}

	p.Type = head.Type
	p.Text = ""
	p.raw = nil
	if head.Type == PartTypeText {
		p.Text = head.Text
		return nil
	}
	p.raw = append(json.RawMessage(nil), bytes.TrimSpace(data)...)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (p Part) MarshalJSON() ([]byte, error) {
	if p.Type != PartTypeText && len(p.raw) > 0 {
		return p.raw, nil
	}
	if p.Type == PartTypeText {
		return json.Marshal(struct {
			Type PartType `json:"type"`
			Text string   `json:"text"`
		}{p.Type, p.Text})
	}
	return json.Marshal(struct {
		Type PartType `json:"type"`
	}{p.Type})
}

// Message is a single transcript entry in the UI message shape.
type Message struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Parts []Part `json:"parts"`
}

// Text concatenates the message's text parts in order.
func (m Message) Text() string {
	var sb strings.Builder
	for _, part := range m.Parts {
		if part.IsText() {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// Clone returns a deep copy of the message.
func (m Message) Clone() Message {
	out := m
	if m.Parts != nil {
		out.Parts = make([]Part, len(m.Parts))
		for i, part := range m.Parts {
			out.Parts[i] = part
			if part.raw != nil {
				out.Parts[i].raw = append(json.RawMessage(nil), part.raw...)
			}
		}
	}
	return out
}

// CloneMessages deep-copies a transcript.
func CloneMessages(messages []Message) []Message {
	out := make([]Message, len(messages))
	for i, msg := range messages {
		out[i] = msg.Clone()
	}
	return out
}
