package streaming

import (
	"strings"

	"promptchat/internal/domain/models/chat"
	domainllm "promptchat/internal/domain/services/llm"
)

// BuildProviderMessages converts UI messages into provider messages.
// System-role entries and non-text parts are skipped, as are messages that
// end up with no text.
func BuildProviderMessages(messages []chat.Message) []domainllm.Message {
	out := make([]domainllm.Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role != chat.RoleUser && msg.Role != chat.RoleAssistant {
			continue
		}
		text := msg.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, domainllm.Message{Role: string(msg.Role), Content: text})
	}
	return out
}
