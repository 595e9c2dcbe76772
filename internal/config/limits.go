package config

const (
	// MaxChatIDLength is the maximum length for conversation ids.
	// Ids are UUIDs in practice; 255 fits a VARCHAR(255) and leaves room
	// for client-chosen ids.
	MaxChatIDLength = 255

	// MaxSystemMessageLength caps the stored system message (bytes),
	// few-shot examples included.
	MaxSystemMessageLength = 64 << 10

	// MaxChatMessages caps the transcript accepted by the chat endpoint.
	MaxChatMessages = 500
)
