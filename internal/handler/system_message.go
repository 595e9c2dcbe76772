package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"promptchat/internal/domain/models"
	"promptchat/internal/domain/services"
	"promptchat/internal/handler/sse"
	"promptchat/internal/httputil"
	"promptchat/internal/notify"
)

// SystemMessageHandler handles the per-conversation system message API
type SystemMessageHandler struct {
	service   services.SystemMessageService
	notifier  *notify.Notifier
	sseConfig *sse.Config
	logger    *slog.Logger
}

// NewSystemMessageHandler creates a new system message handler
func NewSystemMessageHandler(
	service services.SystemMessageService,
	notifier *notify.Notifier,
	sseConfig *sse.Config,
	logger *slog.Logger,
) *SystemMessageHandler {
	if sseConfig == nil {
		sseConfig = sse.DefaultConfig()
	}
	return &SystemMessageHandler{
		service:   service,
		notifier:  notifier,
		sseConfig: sseConfig,
		logger:    logger,
	}
}

// saveSystemMessageBody distinguishes an absent or null message (rejected)
// from an empty one (a valid clear).
type saveSystemMessageBody struct {
	ChatID  string                  `json:"chatId"`
	Message httputil.OptionalString `json:"message"`
}

// SaveResponse is the success body of POST and DELETE.
type SaveResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// GetResponse is the body of GET. UpdatedAt is omitted when nothing was stored.
type GetResponse struct {
	Message   string     `json:"message"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Save upserts the system message for a conversation
// POST /api/system-message
func (h *SystemMessageHandler) Save(w http.ResponseWriter, r *http.Request) {
	var body saveSystemMessageBody
	if err := httputil.ParseJSON(w, r, &body); err != nil {
		httputil.RespondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(body.ChatID) == "" || !body.Message.IsSet() {
		httputil.RespondError(w, http.StatusBadRequest, "chatId and message are required")
		return
	}

	_, err := h.service.Save(r.Context(), &models.SaveSystemMessageRequest{
		ChatID:  body.ChatID,
		Message: body.Message.String(),
	})
	if err != nil {
		handleError(w, h.logger, err, "Failed to save system message")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, SaveResponse{
		Success: true,
		Message: "System message saved successfully",
	})
}

// Get returns the system message for a conversation
// GET /api/system-message?chatId=
func (h *SystemMessageHandler) Get(w http.ResponseWriter, r *http.Request) {
	chatID, ok := QueryParam(w, r, "chatId")
	if !ok {
		return
	}

	msg, err := h.service.Get(r.Context(), chatID)
	if err != nil {
		handleError(w, h.logger, err, "Failed to fetch system message")
		return
	}

	resp := GetResponse{Message: msg.Message}
	if !msg.UpdatedAt.IsZero() {
		updatedAt := msg.UpdatedAt
		resp.UpdatedAt = &updatedAt
	}

	httputil.RespondJSON(w, http.StatusOK, resp)
}

// Clear empties the system message for a conversation
// DELETE /api/system-message?chatId=
func (h *SystemMessageHandler) Clear(w http.ResponseWriter, r *http.Request) {
	chatID, ok := QueryParam(w, r, "chatId")
	if !ok {
		return
	}

	if _, err := h.service.Clear(r.Context(), chatID); err != nil {
		handleError(w, h.logger, err, "Failed to clear system message")
		return
	}

	httputil.RespondJSON(w, http.StatusOK, SaveResponse{
		Success: true,
		Message: "System message cleared successfully",
	})
}

// Events streams change notifications for one conversation until the
// client disconnects. Each event only says that the record changed;
// clients refetch through GET.
// GET /api/system-message/events?chatId=
func (h *SystemMessageHandler) Events(w http.ResponseWriter, r *http.Request) {
	chatID, ok := QueryParam(w, r, "chatId")
	if !ok {
		return
	}
	if h.notifier == nil {
		httputil.RespondError(w, http.StatusNotImplemented, "change events are not enabled")
		return
	}

	writer, err := sse.NewWriter(w)
	if err != nil {
		httputil.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Buffered so Publish never blocks on a slow client; excess events are
	// dropped since one pending refetch hint is enough.
	events := make(chan notify.Event, 8)
	unsubscribe := h.notifier.Subscribe(chatID, func(ev notify.Event) {
		select {
		case events <- ev:
		default:
		}
	})
	defer unsubscribe()

	keepAlive := sse.NewTickerKeepAlive(h.sseConfig.KeepAliveInterval)
	keepAliveStopped := keepAlive.Start(writer, h.logger)
	defer func() {
		keepAlive.Stop()
		keepAlive.Wait()
	}()

	h.logger.Debug("system message subscriber connected", "chat_id", chatID)

	for {
		select {
		case <-r.Context().Done():
			h.logger.Debug("system message subscriber disconnected", "chat_id", chatID)
			return
		case <-keepAliveStopped:
			return
		case ev := <-events:
			if err := writer.WriteEvent(notify.EventName, ev); err != nil {
				h.logger.Debug("event write failed", "chat_id", chatID, "error", err)
				return
			}
		}
	}
}
