package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"promptchat/internal/config"
	"promptchat/internal/handler"
	"promptchat/internal/handler/sse"
	"promptchat/internal/notify"
	"promptchat/internal/repository/memory"
	"promptchat/internal/service/llm"
	"promptchat/internal/service/llm/providers/lorem"
	"promptchat/internal/service/llm/streaming"
	"promptchat/internal/service/systemmessage"
)

// newTestServer serves the full API over an in-memory store and an
// undelayed lorem provider.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := &config.Config{
		DefaultModel:         "lorem-fast",
		DefaultSystemMessage: "You are a helpful assistant.",
		ChatMaxDuration:      5 * time.Second,
	}

	notifier := notify.New()
	svc := systemmessage.NewService(memory.NewSystemMessageRepository(), notifier, logger)

	registry := llm.NewProviderRegistry(llm.NewProviderFactory(cfg))
	registry.Register(llm.ProviderLorem, lorem.NewProvider(lorem.WithDelay(0)))
	streamingService := streaming.NewService(registry, cfg, logger)

	sseConfig := sse.NewConfig(time.Second)
	systemHandler := handler.NewSystemMessageHandler(svc, notifier, sseConfig, logger)
	chatHandler := handler.NewChatHandler(streamingService, sseConfig, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/system-message", systemHandler.Get)
	mux.HandleFunc("POST /api/system-message", systemHandler.Save)
	mux.HandleFunc("DELETE /api/system-message", systemHandler.Clear)
	mux.HandleFunc("GET /api/system-message/events", systemHandler.Events)
	mux.HandleFunc("POST /api/chat", chatHandler.StreamChat)
	mux.HandleFunc("GET /api/chats/new", chatHandler.NewChat)

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// runCLI executes chatctl with args and returns stdout.
func runCLI(t *testing.T, srv *httptest.Server, stdin string, args ...string) (string, error) {
	t.Helper()
	opts := &cliOptions{httpClient: srv.Client()}
	cmd := newRootCmd(opts)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--server", srv.URL}, args...))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	err := cmd.ExecuteContext(ctx)
	return out.String(), err
}

func TestSystemCommands(t *testing.T) {
	srv := newTestServer(t)

	if _, err := runCLI(t, srv, "", "system", "set", "c1", "You", "are", "terse."); err != nil {
		t.Fatalf("system set: %v", err)
	}

	out, err := runCLI(t, srv, "", "system", "get", "c1")
	if err != nil {
		t.Fatalf("system get: %v", err)
	}
	if strings.TrimSpace(out) != "You are terse." {
		t.Errorf("system get = %q", out)
	}

	if _, err := runCLI(t, srv, "", "system", "clear", "c1"); err != nil {
		t.Fatalf("system clear: %v", err)
	}
	out, _ = runCLI(t, srv, "", "system", "get", "c1")
	if strings.TrimSpace(out) != "" {
		t.Errorf("system get after clear = %q", out)
	}
}

func TestExamplesCommands(t *testing.T) {
	srv := newTestServer(t)

	steps := [][]string{
		{"system", "set", "c1", "Answer in one word."},
		{"examples", "add", "c1", "--user", "Capital of France?", "--assistant", "Paris"},
		{"examples", "add", "c1", "--user", "2+2?", "--assistant", "Four"},
		{"examples", "remove", "c1", "1"},
		// Replacing the base text keeps the examples
		{"system", "set", "c1", "Answer briefly."},
	}
	for _, args := range steps {
		if _, err := runCLI(t, srv, "", args...); err != nil {
			t.Fatalf("%v: %v", args, err)
		}
	}

	out, err := runCLI(t, srv, "", "examples", "list", "c1")
	if err != nil {
		t.Fatalf("examples list: %v", err)
	}
	want := "1. user: 2+2?\n   assistant: Four\n"
	if out != want {
		t.Errorf("examples list = %q, want %q", out, want)
	}

	out, _ = runCLI(t, srv, "", "system", "get", "c1")
	if !strings.HasPrefix(out, "Answer briefly.\n\n<examples>") {
		t.Errorf("composed text = %q", out)
	}

	if _, err := runCLI(t, srv, "", "examples", "remove", "c1", "5"); err == nil {
		t.Error("removing a missing example should fail")
	}
}

func TestNewCommand(t *testing.T) {
	srv := newTestServer(t)

	out, err := runCLI(t, srv, "", "new")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if _, err := uuid.Parse(strings.TrimSpace(out)); err != nil {
		t.Errorf("new printed %q, not a uuid", out)
	}
}

func TestChatREPL(t *testing.T) {
	srv := newTestServer(t)
	if _, err := runCLI(t, srv, "", "system", "set", "c1", "Be brief."); err != nil {
		t.Fatalf("system set: %v", err)
	}

	out, err := runCLI(t, srv, "hello\n/copy\n/retry\n/system\n/share\n/quit\n", "chat", "c1")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	for _, want := range []string{
		"Conversation c1",
		"System message: Be brief.",
		"\x1b]52;c;", // OSC52 clipboard sequence
		"copied",
		srv.URL + "/chat/c1",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "error:") {
		t.Errorf("unexpected turn error:\n%s", out)
	}
	if strings.Contains(out, "nothing to regenerate") {
		t.Errorf("/retry was rejected:\n%s", out)
	}
}

func TestChatREPL_RetryAfterFailedTurn(t *testing.T) {
	srv := newTestServer(t)

	// The test server has no OpenRouter key, so every turn fails before streaming.
	out, err := runCLI(t, srv, "hello\n/retry\n/quit\n", "--model", "openai/gpt-4o-mini", "chat", "c1")
	if err != nil {
		t.Fatalf("chat: %v", err)
	}

	if got := strings.Count(out, "(use /retry to try again)"); got != 2 {
		t.Errorf("retry hint shown %d times, want 2:\n%s", got, out)
	}
	if strings.Contains(out, "nothing to regenerate") {
		t.Errorf("/retry rejected after a failed turn:\n%s", out)
	}
}

func TestShareCommand(t *testing.T) {
	srv := newTestServer(t)

	out, err := runCLI(t, srv, "", "--web-url", "https://chat.example.com", "share", "c1", "--qr=false")
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	if out != "https://chat.example.com/chat/c1\n" {
		t.Errorf("share = %q", out)
	}

	// Without --web-url the link points at the server
	out, err = runCLI(t, srv, "", "share", "c1")
	if err != nil {
		t.Fatalf("share: %v", err)
	}
	link, qr, _ := strings.Cut(out, "\n")
	if link != srv.URL+"/chat/c1" {
		t.Errorf("share link = %q, want %q", link, srv.URL+"/chat/c1")
	}
	if !strings.ContainsAny(qr, "▀▄█") {
		t.Errorf("no QR code rendered:\n%s", out)
	}
}

func TestNewCommand_Share(t *testing.T) {
	srv := newTestServer(t)

	out, err := runCLI(t, srv, "", "--web-url", "https://chat.example.com", "new", "--share")
	if err != nil {
		t.Fatalf("new --share: %v", err)
	}
	lines := strings.Split(out, "\n")
	if len(lines) < 3 {
		t.Fatalf("new --share printed too little:\n%s", out)
	}
	if _, err := uuid.Parse(lines[0]); err != nil {
		t.Errorf("first line %q is not a uuid", lines[0])
	}
	if want := "https://chat.example.com/chat/" + lines[0]; lines[1] != want {
		t.Errorf("share link = %q, want %q", lines[1], want)
	}
}
