package lorem

import (
	"context"
	"fmt"
	"strings"
	"time"

	loremgen "github.com/bozaro/golorem"

	domainllm "promptchat/internal/domain/services/llm"
)

const (
	defaultWords = 60
	cutoffWords  = 20
)

// Provider is a mock LLM provider that generates lorem ipsum text.
// Used for development and tests without requiring real API keys.
type Provider struct {
	generator *loremgen.Lorem
	// delayFor picks the pause between words; overridable in tests.
	delayFor func(model string) time.Duration
}

// Option configures a Provider.
type Option func(*Provider)

// WithDelay fixes the pause between words regardless of model.
func WithDelay(d time.Duration) Option {
	return func(p *Provider) {
		p.delayFor = func(string) time.Duration { return d }
	}
}

// NewProvider creates a new lorem ipsum provider.
func NewProvider(opts ...Option) *Provider {
	p := &Provider{
		generator: loremgen.New(),
		delayFor:  getStreamDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "lorem"
}

// SupportsModel returns true if the model name starts with "lorem-".
// Example models: "lorem-fast", "lorem-slow", "lorem-small"
func (p *Provider) SupportsModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(model), "lorem-")
}

// getStreamDelay returns the delay between words based on the model name.
// - lorem-slow: 2 words/second (500ms per word)
// - lorem-fast: 30 words/second (33ms per word)
// - lorem-medium and default: 10 words/second (100ms per word)
func getStreamDelay(model string) time.Duration {
	if strings.Contains(model, "slow") {
		return 500 * time.Millisecond
	}
	if strings.Contains(model, "fast") {
		return 33 * time.Millisecond
	}
	return 100 * time.Millisecond
}

// isCutoffModel returns true if the model should simulate a max_tokens cutoff.
func isCutoffModel(model string) bool {
	return strings.Contains(model, "cutoff") || strings.Contains(model, "small")
}

// StreamResponse streams lorem ipsum one word at a time.
// Speed varies based on model name (lorem-slow, lorem-fast, lorem-medium).
func (p *Provider) StreamResponse(ctx context.Context, req *domainllm.GenerateRequest) (<-chan domainllm.StreamEvent, error) {
	if !p.SupportsModel(req.Model) {
		return nil, fmt.Errorf("model '%s' is not supported by lorem provider", req.Model)
	}

	limit := defaultWords
	stopReason := "stop"
	if isCutoffModel(req.Model) {
		limit = cutoffWords
		stopReason = "length"
	}

	words := strings.Fields(p.generateTextWords(limit))
	if len(words) > limit {
		words = words[:limit]
	}
	delay := p.delayFor(req.Model)

	eventChan := make(chan domainllm.StreamEvent, 10)

	go func() {
		defer close(eventChan)

		for i, word := range words {
			if i > 0 && delay > 0 {
				timer := time.NewTimer(delay)
				select {
				case <-ctx.Done():
					timer.Stop()
					p.emit(ctx, eventChan, domainllm.StreamEvent{Error: ctx.Err()})
					return
				case <-timer.C:
				}
			}

			delta := word
			if i < len(words)-1 {
				delta += " "
			}
			if !p.emit(ctx, eventChan, domainllm.StreamEvent{TextDelta: delta}) {
				return
			}
		}

		p.emit(ctx, eventChan, domainllm.StreamEvent{
			Metadata: &domainllm.StreamMetadata{
				Model:        req.Model,
				InputTokens:  estimateTokens(req),
				OutputTokens: len(words),
				StopReason:   stopReason,
			},
		})
	}()

	return eventChan, nil
}

func (p *Provider) emit(ctx context.Context, ch chan<- domainllm.StreamEvent, ev domainllm.StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

// generateTextWords generates lorem ipsum text with approximately targetWords words.
func (p *Provider) generateTextWords(targetWords int) string {
	var sb strings.Builder
	wordCount := 0

	for wordCount < targetWords {
		sentence := p.generator.Sentence(5, 15)
		sb.WriteString(sentence)
		sb.WriteString(" ")
		wordCount += len(strings.Fields(sentence))
	}

	return strings.TrimSpace(sb.String())
}

// estimateTokens uses word count as a rough token estimate.
func estimateTokens(req *domainllm.GenerateRequest) int {
	total := len(strings.Fields(req.SystemMessage))
	for _, msg := range req.Messages {
		total += len(strings.Fields(msg.Content))
	}
	return total
}
