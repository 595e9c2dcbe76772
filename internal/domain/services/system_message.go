package services

import (
	"context"

	"promptchat/internal/domain/models"
)

// SystemMessageService defines the business logic for per-conversation system messages
type SystemMessageService interface {
	// Get returns the stored system message.
	// An absent record is not an error: an empty message with zero timestamps is returned.
	Get(ctx context.Context, chatID string) (*models.SystemMessage, error)

	// Save replaces the system message (last write wins).
	// An empty message clears it.
	Save(ctx context.Context, req *models.SaveSystemMessageRequest) (*models.SystemMessage, error)

	// Clear is Save with an empty message.
	Clear(ctx context.Context, chatID string) (*models.SystemMessage, error)
}
