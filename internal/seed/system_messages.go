// Package seed loads demo conversations for local development.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"promptchat/internal/domain/models"
	"promptchat/internal/domain/services"
	"promptchat/internal/examples"
)

// Conversation is one demo chat with its system message.
type Conversation struct {
	ChatID   string
	Base     string
	Examples []examples.Pair
}

// DemoConversations are stable ids so reseeding overwrites instead of duplicating.
var DemoConversations = []Conversation{
	{
		ChatID: "11111111-1111-1111-1111-111111111111",
		Base:   "You are a pirate. Answer every question in pirate speak.",
		Examples: []examples.Pair{
			examples.NewPair("How are you?", "Arr, fair winds and full sails, matey!"),
			examples.NewPair("What time is it?", "Time to hoist the mainsail, ye landlubber!"),
		},
	},
	{
		ChatID: "22222222-2222-2222-2222-222222222222",
		Base:   "You are a terse assistant. Reply in at most one sentence.",
	},
	{
		ChatID: "33333333-3333-3333-3333-333333333333",
		Examples: []examples.Pair{
			examples.NewPair("Translate 'cat' to French.", "chat"),
		},
	},
}

// Seeder writes demo conversations through the system message service
type Seeder struct {
	service services.SystemMessageService
	logger  *slog.Logger
}

// NewSeeder creates a new seeder
func NewSeeder(service services.SystemMessageService, logger *slog.Logger) *Seeder {
	return &Seeder{service: service, logger: logger}
}

// Seed saves each conversation's composed system message.
func (s *Seeder) Seed(ctx context.Context, conversations []Conversation) error {
	for _, conv := range conversations {
		text := examples.Compose(conv.Base, conv.Examples)
		if _, err := s.service.Save(ctx, &models.SaveSystemMessageRequest{ChatID: conv.ChatID, Message: text}); err != nil {
			return fmt.Errorf("seed %s: %w", conv.ChatID, err)
		}
		s.logger.Info("seeded conversation",
			"chat_id", conv.ChatID,
			"examples", len(conv.Examples),
		)
	}
	return nil
}

// Clear empties the system message of each conversation.
func (s *Seeder) Clear(ctx context.Context, conversations []Conversation) error {
	for _, conv := range conversations {
		if _, err := s.service.Clear(ctx, conv.ChatID); err != nil {
			return fmt.Errorf("clear %s: %w", conv.ChatID, err)
		}
	}
	return nil
}
