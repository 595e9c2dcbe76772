package lorem

import (
	"context"
	"strings"
	"testing"
	"time"

	domainllm "promptchat/internal/domain/services/llm"
)

func TestGetStreamDelay(t *testing.T) {
	tests := map[string]time.Duration{
		"lorem-slow":   500 * time.Millisecond,
		"lorem-fast":   33 * time.Millisecond,
		"lorem-medium": 100 * time.Millisecond,
		"lorem-test":   100 * time.Millisecond,
	}
	for model, want := range tests {
		if got := getStreamDelay(model); got != want {
			t.Errorf("getStreamDelay(%q) = %v, want %v", model, got, want)
		}
	}
}

func TestProvider_StreamResponse(t *testing.T) {
	p := NewProvider(WithDelay(0))

	ch, err := p.StreamResponse(context.Background(), &domainllm.GenerateRequest{
		Model:    "lorem-small",
		Messages: []domainllm.Message{{Role: "user", Content: "hello there"}},
	})
	if err != nil {
		t.Fatalf("StreamResponse() error: %v", err)
	}

	var text strings.Builder
	var meta *domainllm.StreamMetadata
	for ev := range ch {
		if ev.Error != nil {
			t.Fatalf("unexpected stream error: %v", ev.Error)
		}
		if ev.Metadata != nil {
			meta = ev.Metadata
			continue
		}
		text.WriteString(ev.TextDelta)
	}

	if got := len(strings.Fields(text.String())); got != cutoffWords {
		t.Errorf("streamed %d words, want %d", got, cutoffWords)
	}
	if meta == nil || meta.StopReason != "length" || meta.InputTokens != 2 {
		t.Errorf("metadata = %+v", meta)
	}
}

func TestProvider_CancelStopsStream(t *testing.T) {
	p := NewProvider(WithDelay(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := p.StreamResponse(ctx, &domainllm.GenerateRequest{Model: "lorem-slow"})
	if err != nil {
		t.Fatalf("StreamResponse() error: %v", err)
	}

	first := <-ch
	if first.TextDelta == "" {
		t.Fatalf("expected first word, got %+v", first)
	}
	cancel()

	for range ch {
	}
}

func TestProvider_RejectsOtherModels(t *testing.T) {
	if _, err := NewProvider().StreamResponse(context.Background(), &domainllm.GenerateRequest{Model: "gpt-4"}); err == nil {
		t.Error("expected error for non-lorem model")
	}
}
