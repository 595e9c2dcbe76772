package models

import "time"

// SystemMessage is the persisted system prompt for one conversation.
// At most one record exists per ChatID; clearing stores an empty Message.
type SystemMessage struct {
	ChatID    string    `json:"chatId" db:"chat_id" bson:"chatId"`
	Message   string    `json:"message" db:"message" bson:"message"`
	CreatedAt time.Time `json:"createdAt" db:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at" bson:"updatedAt"`
}

// IsEmpty reports whether the record carries no prompt text.
func (m *SystemMessage) IsEmpty() bool {
	return m == nil || m.Message == ""
}

// SaveSystemMessageRequest replaces the system message for a conversation.
// An empty Message is a valid clear.
type SaveSystemMessageRequest struct {
	ChatID  string `json:"chatId"`
	Message string `json:"message"`
}
