// Package systemmessage implements the per-conversation system message store.
package systemmessage

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"promptchat/internal/config"
	"promptchat/internal/domain"
	"promptchat/internal/domain/models"
	"promptchat/internal/domain/repositories"
	"promptchat/internal/domain/services"
	"promptchat/internal/notify"
)

// Service implements services.SystemMessageService
type Service struct {
	repo     repositories.SystemMessageRepository
	notifier *notify.Notifier
	now      func() time.Time
	logger   *slog.Logger
}

// NewService creates a new system message service.
// notifier may be nil when nobody listens for changes.
func NewService(
	repo repositories.SystemMessageRepository,
	notifier *notify.Notifier,
	logger *slog.Logger,
) *Service {
	return &Service{
		repo:     repo,
		notifier: notifier,
		now:      time.Now,
		logger:   logger,
	}
}

var _ services.SystemMessageService = (*Service)(nil)

// Get returns the stored system message, or an empty one if none was saved.
func (s *Service) Get(ctx context.Context, chatID string) (*models.SystemMessage, error) {
	chatID = strings.TrimSpace(chatID)
	if err := validateChatID(chatID); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	msg, err := s.repo.GetByChatID(ctx, chatID)
	if err != nil {
		return nil, fmt.Errorf("get system message: %w", err)
	}

	if msg == nil {
		s.logger.Debug("no system message stored, returning empty", "chat_id", chatID)
		return &models.SystemMessage{ChatID: chatID}, nil
	}

	return msg, nil
}

// Save replaces the system message for a conversation.
func (s *Service) Save(ctx context.Context, req *models.SaveSystemMessageRequest) (*models.SystemMessage, error) {
	req.ChatID = strings.TrimSpace(req.ChatID)
	if err := s.validateSaveRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	now := s.now().UTC()
	msg := &models.SystemMessage{
		ChatID:    req.ChatID,
		Message:   req.Message,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Upsert(ctx, msg); err != nil {
		s.logger.Error("failed to save system message",
			"chat_id", req.ChatID,
			"error", err,
		)
		return nil, fmt.Errorf("save system message: %w", err)
	}

	kind := notify.KindFor(msg.Message)
	s.logger.Info("system message saved",
		"chat_id", msg.ChatID,
		"kind", kind,
		"length", len(msg.Message),
	)

	if s.notifier != nil {
		s.notifier.Publish(notify.Event{ChatID: msg.ChatID, Kind: kind, At: msg.UpdatedAt})
	}

	return msg, nil
}

// Clear stores an empty system message.
func (s *Service) Clear(ctx context.Context, chatID string) (*models.SystemMessage, error) {
	return s.Save(ctx, &models.SaveSystemMessageRequest{ChatID: chatID, Message: ""})
}

func (s *Service) validateSaveRequest(req *models.SaveSystemMessageRequest) error {
	return validation.ValidateStruct(req,
		validation.Field(&req.ChatID,
			validation.Required,
			validation.RuneLength(1, config.MaxChatIDLength),
		),
		// Empty is a valid clear
		validation.Field(&req.Message, validation.Length(0, config.MaxSystemMessageLength)),
	)
}

func validateChatID(chatID string) error {
	return validation.Validate(chatID,
		validation.Required.Error("chatId is required"),
		validation.RuneLength(1, config.MaxChatIDLength),
	)
}
