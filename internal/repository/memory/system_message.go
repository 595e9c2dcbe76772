// Package memory provides in-process repositories for development and tests.
package memory

import (
	"context"
	"sync"

	"promptchat/internal/domain/models"
	"promptchat/internal/domain/repositories"
)

// SystemMessageRepository keeps system messages in a map.
type SystemMessageRepository struct {
	mu      sync.RWMutex
	records map[string]models.SystemMessage
}

// NewSystemMessageRepository creates an empty repository.
func NewSystemMessageRepository() *SystemMessageRepository {
	return &SystemMessageRepository{records: make(map[string]models.SystemMessage)}
}

var _ repositories.SystemMessageRepository = (*SystemMessageRepository)(nil)

// GetByChatID returns a copy of the stored record, or nil, nil when absent.
func (r *SystemMessageRepository) GetByChatID(ctx context.Context, chatID string) (*models.SystemMessage, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	msg, ok := r.records[chatID]
	if !ok {
		return nil, nil
	}
	return &msg, nil
}

// Upsert stores msg, keeping the original CreatedAt on update.
func (r *SystemMessageRepository) Upsert(ctx context.Context, msg *models.SystemMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[msg.ChatID]; ok {
		msg.CreatedAt = existing.CreatedAt
	}
	r.records[msg.ChatID] = *msg
	return nil
}

// Len returns the number of stored records.
func (r *SystemMessageRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}
