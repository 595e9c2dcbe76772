package llm

import (
	"fmt"
	"strings"
)

// Provider names understood by the registry
const (
	ProviderOpenRouter = "openrouter"
	ProviderLorem      = "lorem"
)

// ModelInfo contains parsed provider and model information
type ModelInfo struct {
	Provider string // Provider name: "openrouter", "lorem"
	Model    string // Model identifier for that provider
}

// ParseModel extracts provider information from a model string
//
// Supported formats:
//   - "x-ai/grok-4.1-fast:free" → {Provider: "openrouter", Model: "x-ai/grok-4.1-fast:free"}
//   - "openrouter/x-ai/grok-4.1-fast:free" → {Provider: "openrouter", Model: "x-ai/grok-4.1-fast:free"}
//   - "lorem-fast" → {Provider: "lorem", Model: "lorem-fast"}
//   - "lorem/lorem-slow" → {Provider: "lorem", Model: "lorem-slow"}
//
// OpenRouter model ids already contain "/", so only known provider prefixes
// are split off; anything else is routed to OpenRouter unchanged.
func ParseModel(modelStr string) (*ModelInfo, error) {
	modelStr = strings.TrimSpace(modelStr)
	if modelStr == "" {
		return nil, fmt.Errorf("model string cannot be empty")
	}

	if provider, model, ok := strings.Cut(modelStr, "/"); ok {
		switch provider {
		case ProviderOpenRouter, ProviderLorem:
			if model == "" {
				return nil, fmt.Errorf("model cannot be empty in model string: %s", modelStr)
			}
			return &ModelInfo{Provider: provider, Model: model}, nil
		case "":
			return nil, fmt.Errorf("provider cannot be empty in model string: %s", modelStr)
		}
	}

	return &ModelInfo{
		Provider: inferProvider(modelStr),
		Model:    modelStr,
	}, nil
}

// inferProvider infers the provider from model name prefix
func inferProvider(model string) string {
	if strings.HasPrefix(strings.ToLower(model), "lorem-") {
		return ProviderLorem
	}
	return ProviderOpenRouter
}
