// Package openrouter streams chat completions from OpenRouter through its
// OpenAI-compatible API.
package openrouter

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"promptchat/internal/domain"
	domainllm "promptchat/internal/domain/services/llm"
)

// DefaultBaseURL is OpenRouter's OpenAI-compatible endpoint.
const DefaultBaseURL = "https://openrouter.ai/api/v1"

// Config holds provider settings.
type Config struct {
	APIKey  string
	BaseURL string
	// Referer and Title are sent as HTTP-Referer and X-Title for OpenRouter attribution.
	Referer string
	Title   string
	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Provider implements domainllm.LLMProvider for OpenRouter.
type Provider struct {
	client openai.Client
}

// NewProvider creates an OpenRouter provider.
func NewProvider(cfg Config) (*Provider, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openrouter api key is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(baseURL),
		// Failures surface to the user; nothing is retried automatically.
		option.WithMaxRetries(0),
	}
	if strings.TrimSpace(cfg.Referer) != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.Referer))
	}
	if strings.TrimSpace(cfg.Title) != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.Title))
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, option.WithHTTPClient(cfg.HTTPClient))
	}

	return &Provider{client: openai.NewClient(opts...)}, nil
}

// Name returns the provider name.
func (p *Provider) Name() string {
	return "openrouter"
}

// SupportsModel accepts any non-empty model id; OpenRouter validates it.
func (p *Provider) SupportsModel(model string) bool {
	return strings.TrimSpace(model) != ""
}

// StreamResponse starts a streaming completion.
func (p *Provider) StreamResponse(ctx context.Context, req *domainllm.GenerateRequest) (<-chan domainllm.StreamEvent, error) {
	params, err := buildParams(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	stream := p.client.Chat.Completions.NewStreaming(ctx, params)
	if err := stream.Err(); err != nil {
		_ = stream.Close()
		return nil, fmt.Errorf("%w: openrouter: %v", domain.ErrTransport, err)
	}

	eventChan := make(chan domainllm.StreamEvent, 16)

	go func() {
		defer close(eventChan)
		defer stream.Close()

		var (
			model        = req.Model
			stopReason   string
			inputTokens  int
			outputTokens int
		)

		for stream.Next() {
			chunk := stream.Current()
			if chunk.Model != "" {
				model = chunk.Model
			}
			if chunk.Usage.TotalTokens > 0 {
				inputTokens = int(chunk.Usage.PromptTokens)
				outputTokens = int(chunk.Usage.CompletionTokens)
			}
			if len(chunk.Choices) == 0 {
				continue
			}

			choice := chunk.Choices[0]
			if choice.FinishReason != "" {
				stopReason = choice.FinishReason
			}
			if choice.Delta.Content == "" {
				continue
			}
			if !send(ctx, eventChan, domainllm.StreamEvent{TextDelta: choice.Delta.Content}) {
				return
			}
		}

		if err := stream.Err(); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				send(ctx, eventChan, domainllm.StreamEvent{Error: err})
				return
			}
			send(ctx, eventChan, domainllm.StreamEvent{Error: fmt.Errorf("%w: openrouter stream: %v", domain.ErrTransport, err)})
			return
		}

		if stopReason == "" {
			stopReason = "stop"
		}
		send(ctx, eventChan, domainllm.StreamEvent{Metadata: &domainllm.StreamMetadata{
			Model:        model,
			InputTokens:  inputTokens,
			OutputTokens: outputTokens,
			StopReason:   stopReason,
		}})
	}()

	return eventChan, nil
}

func buildParams(req *domainllm.GenerateRequest) (openai.ChatCompletionNewParams, error) {
	if strings.TrimSpace(req.Model) == "" {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("model is required")
	}
	if len(req.Messages) == 0 {
		return openai.ChatCompletionNewParams{}, fmt.Errorf("messages are required")
	}

	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemMessage != "" {
		messages = append(messages, openai.SystemMessage(req.SystemMessage))
	}
	for _, msg := range req.Messages {
		switch msg.Role {
		case "user":
			messages = append(messages, openai.UserMessage(msg.Content))
		case "assistant":
			messages = append(messages, openai.AssistantMessage(msg.Content))
		default:
			return openai.ChatCompletionNewParams{}, fmt.Errorf("unsupported role: %s", msg.Role)
		}
	}

	return openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(req.Model),
		Messages: messages,
	}, nil
}

// send delivers ev unless ctx is done first.
func send(ctx context.Context, ch chan<- domainllm.StreamEvent, ev domainllm.StreamEvent) bool {
	select {
	case ch <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}
