package llm

import (
	"fmt"
	"log/slog"

	"promptchat/internal/config"
	"promptchat/internal/service/llm/streaming"
)

// SetupProviders initializes the provider factory and registry for routing.
func SetupProviders(cfg *config.Config, logger *slog.Logger) (*ProviderRegistry, error) {
	registry := NewProviderRegistry(NewProviderFactory(cfg))

	if err := registry.Validate(); err != nil {
		return nil, fmt.Errorf("provider registry validation failed: %w", err)
	}

	if cfg.OpenRouterAPIKey != "" {
		logger.Info("provider available", "name", ProviderOpenRouter, "base_url", cfg.OpenRouterBaseURL)
	} else {
		logger.Warn("OPENROUTER_API_KEY not set - OpenRouter provider not available")
	}
	logger.Info("provider available", "name", ProviderLorem, "models", "lorem-*")

	if info, err := ParseModel(cfg.DefaultModel); err == nil && !registry.IsConfigured(info.Provider) {
		logger.Warn("default model's provider is not configured",
			"default_model", cfg.DefaultModel,
			"provider", info.Provider,
		)
	}

	return registry, nil
}

// SetupStreaming wires the chat streaming service onto the provider registry.
func SetupStreaming(cfg *config.Config, registry *ProviderRegistry, logger *slog.Logger) *streaming.Service {
	return streaming.NewService(registry, cfg, logger)
}
