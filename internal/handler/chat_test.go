package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"promptchat/internal/domain"
	"promptchat/internal/domain/models/chat"
	llmSvc "promptchat/internal/domain/services/llm"
)

type fakeStreaming struct {
	chunks []chat.StreamChunk
	err    error
	got    *llmSvc.ChatRequest
}

func (f *fakeStreaming) StreamChat(ctx context.Context, req *llmSvc.ChatRequest) (<-chan chat.StreamChunk, error) {
	f.got = req
	if f.err != nil {
		return nil, f.err
	}
	out := make(chan chat.StreamChunk, len(f.chunks))
	for _, c := range f.chunks {
		out <- c
	}
	close(out)
	return out, nil
}

func TestChatHandler_StreamChat(t *testing.T) {
	streaming := &fakeStreaming{chunks: []chat.StreamChunk{
		{Type: chat.ChunkStart, MessageID: "msg_1"},
		{Type: chat.ChunkTextStart, ID: "txt_1"},
		{Type: chat.ChunkTextDelta, ID: "txt_1", Delta: "Hi", Seq: 1},
		{Type: chat.ChunkTextEnd, ID: "txt_1"},
		{Type: chat.ChunkFinish, FinishReason: "stop"},
	}}
	h := NewChatHandler(streaming, nil, testLogger())

	body := `{"chatId":"c1","systemMessage":"Be brief.","messages":[{"id":"u1","role":"user","parts":[{"type":"text","text":"hello"}]}]}`
	rec := httptest.NewRecorder()
	h.StreamChat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d (%s)", rec.Code, rec.Body.String())
	}
	if streaming.got.SystemMessage != "Be brief." || len(streaming.got.Messages) != 1 {
		t.Errorf("request not decoded: %+v", streaming.got)
	}

	var types []string
	var sawDone bool
	for _, line := range strings.Split(rec.Body.String(), "\n") {
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == chat.StreamDone {
			sawDone = true
			continue
		}
		var chunk chat.StreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			t.Fatalf("decode chunk %q: %v", data, err)
		}
		types = append(types, string(chunk.Type))
	}

	want := "start,text-start,text-delta,text-end,finish"
	if got := strings.Join(types, ","); got != want {
		t.Errorf("chunk order = %s, want %s", got, want)
	}
	if !sawDone {
		t.Error("missing [DONE] sentinel")
	}
}

func TestChatHandler_ValidationError(t *testing.T) {
	streaming := &fakeStreaming{err: fmt.Errorf("%w: messages: cannot be blank", domain.ErrValidation)}
	h := NewChatHandler(streaming, nil, testLogger())

	rec := httptest.NewRecorder()
	h.StreamChat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"messages":[]}`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "messages") {
		t.Errorf("validation detail missing: %s", rec.Body.String())
	}
}

func TestChatHandler_ProviderFailure(t *testing.T) {
	streaming := &fakeStreaming{err: &domain.ProviderError{Provider: "openrouter", Err: errors.New("dial tcp: connection refused")}}
	h := NewChatHandler(streaming, nil, testLogger())

	body := `{"messages":[{"id":"u1","role":"user","parts":[{"type":"text","text":"hello"}]}]}`
	rec := httptest.NewRecorder()
	h.StreamChat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(body)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	got := decodeBody(t, rec)
	if got["provider"] != "openrouter" {
		t.Errorf("provider = %v, want openrouter", got["provider"])
	}
	if got["error"] != "Failed to start chat" {
		t.Errorf("error = %v, want the generic message", got["error"])
	}
	if strings.Contains(rec.Body.String(), "connection refused") {
		t.Errorf("internal detail leaked: %s", rec.Body.String())
	}
}

func TestChatHandler_InvalidJSON(t *testing.T) {
	h := NewChatHandler(&fakeStreaming{}, nil, testLogger())

	rec := httptest.NewRecorder()
	h.StreamChat(rec, httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`not json`)))

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestChatHandler_NewChat(t *testing.T) {
	h := NewChatHandler(&fakeStreaming{}, nil, testLogger())

	first := httptest.NewRecorder()
	h.NewChat(first, httptest.NewRequest(http.MethodGet, "/api/chats/new", nil))
	second := httptest.NewRecorder()
	h.NewChat(second, httptest.NewRequest(http.MethodGet, "/api/chats/new", nil))

	a, b := decodeBody(t, first)["chatId"], decodeBody(t, second)["chatId"]
	if a == "" || a == nil || a == b {
		t.Errorf("expected two distinct ids, got %v and %v", a, b)
	}
}
