package streaming

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"promptchat/internal/config"
	"promptchat/internal/domain"
	"promptchat/internal/domain/models/chat"
	domainllm "promptchat/internal/domain/services/llm"
)

// ProviderResolver maps a model string to a provider and its local model id.
type ProviderResolver interface {
	Resolve(model string) (domainllm.LLMProvider, string, error)
}

// Service implements domainllm.StreamingService
type Service struct {
	providers     ProviderResolver
	defaultModel  string
	defaultSystem string
	maxDuration   time.Duration
	logger        *slog.Logger
}

// NewService creates a streaming service.
func NewService(providers ProviderResolver, cfg *config.Config, logger *slog.Logger) *Service {
	return &Service{
		providers:     providers,
		defaultModel:  cfg.DefaultModel,
		defaultSystem: cfg.DefaultSystemMessage,
		maxDuration:   cfg.ChatMaxDuration,
		logger:        logger,
	}
}

var _ domainllm.StreamingService = (*Service)(nil)

// StreamChat validates req, starts the provider and returns the UI chunk stream.
func (s *Service) StreamChat(ctx context.Context, req *domainllm.ChatRequest) (<-chan chat.StreamChunk, error) {
	if err := validateChatRequest(req); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.defaultModel
	}
	system := strings.TrimSpace(req.SystemMessage)
	if system == "" {
		system = s.defaultSystem
	}

	provider, providerModel, err := s.providers.Resolve(model)
	if err != nil {
		return nil, fmt.Errorf("%w: model %q: %v", domain.ErrValidation, model, err)
	}

	messages := BuildProviderMessages(req.Messages)
	if len(messages) == 0 {
		return nil, fmt.Errorf("%w: no text to send", domain.ErrValidation)
	}

	streamCtx := ctx
	cancel := context.CancelFunc(func() {})
	if s.maxDuration > 0 {
		streamCtx, cancel = context.WithTimeout(ctx, s.maxDuration)
	}

	events, err := provider.StreamResponse(streamCtx, &domainllm.GenerateRequest{
		Model:         providerModel,
		SystemMessage: system,
		Messages:      messages,
	})
	if err != nil {
		cancel()
		s.logger.Error("provider stream failed to start",
			"chat_id", req.ChatID,
			"provider", provider.Name(),
			"model", providerModel,
			"error", err,
		)
		return nil, &domain.ProviderError{Provider: provider.Name(), Err: err}
	}

	s.logger.Info("chat stream started",
		"chat_id", req.ChatID,
		"provider", provider.Name(),
		"model", providerModel,
		"messages", len(messages),
	)

	out := make(chan chat.StreamChunk, 16)
	go func() {
		defer close(out)
		defer cancel()
		s.pump(ctx, streamCtx, req.ChatID, events, out)
	}()

	return out, nil
}

// pump forwards provider events as UI chunks until a terminal event.
// Sends give up when the caller's ctx is done; streamCtx only bounds generation.
func (s *Service) pump(ctx, streamCtx context.Context, chatID string, events <-chan domainllm.StreamEvent, out chan<- chat.StreamChunk) {
	messageID := "msg_" + uuid.NewString()
	textID := "txt_" + uuid.NewString()
	seq := 0
	started := time.Now()

	emit := func(chunk chat.StreamChunk) bool {
		select {
		case out <- chunk:
			return true
		case <-ctx.Done():
			return false
		}
	}

	fail := func(err error) {
		s.logger.Warn("chat stream failed",
			"chat_id", chatID,
			"message_id", messageID,
			"deltas", seq,
			"error", err,
		)
		emit(chat.StreamChunk{Type: chat.ChunkError, ErrorText: errorText(err)})
	}

	if !emit(chat.StreamChunk{Type: chat.ChunkStart, MessageID: messageID}) {
		return
	}

	for {
		select {
		case <-streamCtx.Done():
			fail(streamCtx.Err())
			return

		case ev, ok := <-events:
			if !ok {
				fail(fmt.Errorf("%w: provider stream ended without completion", domain.ErrTransport))
				return
			}

			switch {
			case ev.Error != nil:
				fail(ev.Error)
				return

			case ev.Metadata != nil:
				if seq > 0 && !emit(chat.StreamChunk{Type: chat.ChunkTextEnd, ID: textID}) {
					return
				}
				emit(chat.StreamChunk{Type: chat.ChunkFinish, FinishReason: ev.Metadata.StopReason})
				s.logger.Info("chat stream completed",
					"chat_id", chatID,
					"message_id", messageID,
					"deltas", seq,
					"stop_reason", ev.Metadata.StopReason,
					"duration_ms", time.Since(started).Milliseconds(),
				)
				return

			case ev.TextDelta != "":
				if seq == 0 && !emit(chat.StreamChunk{Type: chat.ChunkTextStart, ID: textID}) {
					return
				}
				seq++
				if !emit(chat.StreamChunk{Type: chat.ChunkTextDelta, ID: textID, Delta: ev.TextDelta, Seq: seq}) {
					return
				}
			}
		}
	}
}

func errorText(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "response exceeded the maximum duration"
	case errors.Is(err, context.Canceled):
		return "response cancelled"
	default:
		return err.Error()
	}
}

func validateChatRequest(req *domainllm.ChatRequest) error {
	err := validation.ValidateStruct(req,
		validation.Field(&req.ChatID, validation.RuneLength(0, config.MaxChatIDLength)),
		validation.Field(&req.Messages,
			validation.Required.Error("at least one message is required"),
			validation.Length(1, config.MaxChatMessages),
		),
		validation.Field(&req.SystemMessage, validation.Length(0, config.MaxSystemMessageLength)),
	)
	if err != nil {
		return err
	}

	last := req.Messages[len(req.Messages)-1]
	if last.Role != chat.RoleUser {
		return fmt.Errorf("last message must be a user message")
	}
	if strings.TrimSpace(last.Text()) == "" {
		return fmt.Errorf("last message has no text")
	}
	return nil
}
