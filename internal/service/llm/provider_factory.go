package llm

import (
	"fmt"

	"promptchat/internal/config"
	domainllm "promptchat/internal/domain/services/llm"
	"promptchat/internal/service/llm/providers/lorem"
	"promptchat/internal/service/llm/providers/openrouter"
)

// ProviderFactory creates LLM provider instances from config
type ProviderFactory struct {
	config *config.Config
}

// NewProviderFactory creates a new provider factory
func NewProviderFactory(cfg *config.Config) *ProviderFactory {
	return &ProviderFactory{
		config: cfg,
	}
}

// GetProvider returns a provider instance for the given provider name
//
// Supported providers:
//   - "openrouter" - any model via OpenRouter (requires OPENROUTER_API_KEY)
//   - "lorem" - mock provider for development and tests (no API key required)
func (f *ProviderFactory) GetProvider(providerName string) (domainllm.LLMProvider, error) {
	switch providerName {
	case ProviderOpenRouter:
		return f.createOpenRouterProvider()
	case ProviderLorem:
		return lorem.NewProvider(), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", providerName)
	}
}

// IsConfigured reports whether the provider can be created with the current config.
func (f *ProviderFactory) IsConfigured(providerName string) bool {
	switch providerName {
	case ProviderOpenRouter:
		return f.config.OpenRouterAPIKey != ""
	case ProviderLorem:
		return true
	default:
		return false
	}
}

func (f *ProviderFactory) createOpenRouterProvider() (domainllm.LLMProvider, error) {
	if f.config.OpenRouterAPIKey == "" {
		return nil, fmt.Errorf("OPENROUTER_API_KEY environment variable not set")
	}

	provider, err := openrouter.NewProvider(openrouter.Config{
		APIKey:  f.config.OpenRouterAPIKey,
		BaseURL: f.config.OpenRouterBaseURL,
		Referer: f.config.OpenRouterReferer,
		Title:   f.config.OpenRouterTitle,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenRouter provider: %w", err)
	}
	return provider, nil
}
