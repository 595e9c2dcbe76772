package handler

import (
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"promptchat/internal/domain/models/chat"
	llmSvc "promptchat/internal/domain/services/llm"
	"promptchat/internal/handler/sse"
	"promptchat/internal/httputil"
)

// ChatHandler handles chat HTTP requests
type ChatHandler struct {
	streamingService llmSvc.StreamingService
	sseConfig        *sse.Config
	logger           *slog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(
	streamingService llmSvc.StreamingService,
	sseConfig *sse.Config,
	logger *slog.Logger,
) *ChatHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &ChatHandler{
		streamingService: streamingService,
		sseConfig:        sseConfig,
		logger:           logger,
	}
}

// NewChatResponse carries a freshly minted conversation id.
type NewChatResponse struct {
	ChatID string `json:"chatId"`
}

// NewChat mints a conversation id. Nothing is persisted until a system
// message is saved for it.
// GET /api/chats/new
func (h *ChatHandler) NewChat(w http.ResponseWriter, r *http.Request) {
	httputil.RespondJSON(w, http.StatusOK, NewChatResponse{ChatID: uuid.NewString()})
}

// StreamChat generates an assistant reply and streams it as a UI message stream
// POST /api/chat
//
// Validation failures are reported as a regular JSON error before the stream
// starts. Once streaming, failures arrive as an error chunk.
func (h *ChatHandler) StreamChat(w http.ResponseWriter, r *http.Request) {
	var req llmSvc.ChatRequest
	if err := httputil.ParseJSON(w, r, &req); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	chunks, err := h.streamingService.StreamChat(r.Context(), &req)
	if err != nil {
		handleError(w, h.logger, err, "Failed to start chat")
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		// Drain so the producer can exit
		go func() {
			for range chunks {
			}
		}()
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	keepAlive.Start(writer, h.logger)
	defer func() {
		keepAlive.Stop()
		keepAlive.Wait()
	}()

	logger := h.logger.With("chat_id", req.ChatID)
	logger.Debug("chat stream started", "messages", len(req.Messages))

	writeFailed := false
	for chunk := range chunks {
		if writeFailed {
			// Client is gone; keep draining until the producer sees the
			// cancelled request context and closes the channel.
			continue
		}

		frame, err := chunk.FormatSSE()
		if err != nil {
			logger.Error("failed to format chunk", "error", err)
			continue
		}
		if err := writer.WriteFrame(frame); err != nil {
			logger.Debug("client disconnected mid-stream", "error", err)
			writeFailed = true
			continue
		}

		switch chunk.Type {
		case chat.ChunkError:
			logger.Warn("chat stream failed", "error", chunk.ErrorText)
		case chat.ChunkFinish:
			logger.Debug("chat stream finished", "finish_reason", chunk.FinishReason)
		}
	}

	if !writeFailed {
		_ = writer.WriteFrame(chat.FormatDone())
	}
}
