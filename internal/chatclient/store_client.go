package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/openai/openai-go/v3/packages/ssestream"

	"promptchat/internal/domain/models"
	"promptchat/internal/notify"
)

// Record is the client view of a stored system message.
// UpdatedAt is nil when nothing was ever saved.
type Record struct {
	Text      string
	UpdatedAt *time.Time
}

// StoreClient reads and writes system messages through the HTTP API and
// announces successful writes on its notifier.
type StoreClient struct {
	baseURL  string
	http     *http.Client
	notifier *notify.Notifier
}

// StoreOption configures a StoreClient.
type StoreOption func(*StoreClient)

// WithStoreHTTPClient overrides the HTTP client.
func WithStoreHTTPClient(client *http.Client) StoreOption {
	return func(c *StoreClient) { c.http = client }
}

// WithNotifier shares a notifier between store clients and views.
func WithNotifier(n *notify.Notifier) StoreOption {
	return func(c *StoreClient) { c.notifier = n }
}

// NewStoreClient creates a client for the server at baseURL.
func NewStoreClient(baseURL string, opts ...StoreOption) *StoreClient {
	c := &StoreClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.notifier == nil {
		c.notifier = notify.New()
	}
	return c
}

// Notifier returns the notifier writes are announced on.
func (c *StoreClient) Notifier() *notify.Notifier {
	return c.notifier
}

// Fetch returns the stored system message. An absent record is an empty Record.
func (c *StoreClient) Fetch(ctx context.Context, chatID string) (Record, error) {
	endpoint := c.baseURL + "/api/system-message?chatId=" + url.QueryEscape(chatID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Record{}, fmt.Errorf("build fetch request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return Record{}, transportError("fetch system message", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Record{}, readAPIError(resp)
	}

	var body struct {
		Message   string     `json:"message"`
		UpdatedAt *time.Time `json:"updatedAt"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Record{}, transportError("decode system message", err)
	}

	return Record{Text: body.Message, UpdatedAt: body.UpdatedAt}, nil
}

// Save replaces the system message. Subscribers are notified only after the
// server confirms the write.
func (c *StoreClient) Save(ctx context.Context, chatID, text string) error {
	payload, err := json.Marshal(models.SaveSystemMessageRequest{ChatID: chatID, Message: text})
	if err != nil {
		return fmt.Errorf("marshal save request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/system-message", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build save request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return transportError("save system message", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return readAPIError(resp)
	}

	c.notifier.Publish(notify.Event{ChatID: chatID, Kind: notify.KindFor(text)})
	return nil
}

// Clear saves an empty system message.
func (c *StoreClient) Clear(ctx context.Context, chatID string) error {
	return c.Save(ctx, chatID, "")
}

// NewChatID asks the server for a fresh conversation id.
func (c *StoreClient) NewChatID(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/chats/new", nil)
	if err != nil {
		return "", fmt.Errorf("build new chat request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", transportError("new chat", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", readAPIError(resp)
	}

	var body struct {
		ChatID string `json:"chatId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", transportError("decode new chat", err)
	}
	return body.ChatID, nil
}

// Watch follows the server's change events for chatID and republishes them
// on the local notifier until ctx is done. The request is made without the
// client's timeout so the stream can stay open.
func (c *StoreClient) Watch(ctx context.Context, chatID string) error {
	endpoint := c.baseURL + "/api/system-message/events?chatId=" + url.QueryEscape(chatID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build watch request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	streamClient := &http.Client{Transport: c.http.Transport}
	resp, err := streamClient.Do(req)
	if err != nil {
		return transportError("watch system message", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return readAPIError(resp)
	}

	decoder := ssestream.NewDecoder(resp)
	defer decoder.Close()

	for decoder.Next() {
		event := decoder.Event()
		if event.Type != notify.EventName || len(bytes.TrimSpace(event.Data)) == 0 {
			continue
		}

		var ev notify.Event
		if err := json.Unmarshal(event.Data, &ev); err != nil {
			continue
		}
		if ev.ChatID == "" {
			ev.ChatID = chatID
		}
		c.notifier.Publish(ev)
	}

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err := decoder.Err(); err != nil {
		return transportError("read change events", err)
	}
	return nil
}
