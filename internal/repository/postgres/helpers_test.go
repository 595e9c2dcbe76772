package postgres

import (
	"time"

	"promptchat/internal/domain/models"
)

func newRecord(chatID, message string, at time.Time) *models.SystemMessage {
	return &models.SystemMessage{ChatID: chatID, Message: message, CreatedAt: at, UpdatedAt: at}
}
