package repositories

import (
	"context"

	"promptchat/internal/domain/models"
)

// SystemMessageRepository defines the interface for system message data access
type SystemMessageRepository interface {
	// GetByChatID retrieves the system message for a conversation
	// Returns nil, nil if no record exists yet
	GetByChatID(ctx context.Context, chatID string) (*models.SystemMessage, error)

	// Upsert creates or replaces the system message for a conversation
	// CreatedAt is preserved on update; UpdatedAt comes from the caller
	Upsert(ctx context.Context, msg *models.SystemMessage) error
}
