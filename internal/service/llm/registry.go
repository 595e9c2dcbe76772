package llm

import (
	"fmt"
	"sync"

	domainllm "promptchat/internal/domain/services/llm"
)

// ProviderRegistry routes model requests to provider instances.
// Uses ParseModel to extract the provider from a model string, then
// ProviderFactory to create instances, which are cached for reuse.
type ProviderRegistry struct {
	factory *ProviderFactory
	cache   map[string]domainllm.LLMProvider
	mu      sync.RWMutex
}

// NewProviderRegistry creates a new provider registry.
func NewProviderRegistry(factory *ProviderFactory) *ProviderRegistry {
	return &ProviderRegistry{
		factory: factory,
		cache:   make(map[string]domainllm.LLMProvider),
	}
}

// GetProvider returns the provider for the given provider name.
func (r *ProviderRegistry) GetProvider(provider string) (domainllm.LLMProvider, error) {
	if provider == "" {
		return nil, fmt.Errorf("provider cannot be empty")
	}

	// Fast path: cache hit under read lock
	r.mu.RLock()
	if cached, exists := r.cache[provider]; exists {
		r.mu.RUnlock()
		return cached, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Another goroutine may have created it while we waited for the lock
	if cached, exists := r.cache[provider]; exists {
		return cached, nil
	}

	created, err := r.factory.GetProvider(provider)
	if err != nil {
		return nil, fmt.Errorf("failed to create provider '%s': %w", provider, err)
	}

	r.cache[provider] = created
	return created, nil
}

// Register installs a provider instance directly, replacing any cached one.
func (r *ProviderRegistry) Register(name string, provider domainllm.LLMProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache[name] = provider
}

// Resolve parses a model string and returns its provider and provider-local model id.
func (r *ProviderRegistry) Resolve(model string) (domainllm.LLMProvider, string, error) {
	info, err := ParseModel(model)
	if err != nil {
		return nil, "", err
	}
	provider, err := r.GetProvider(info.Provider)
	if err != nil {
		return nil, "", err
	}
	return provider, info.Model, nil
}

// IsConfigured reports whether a provider can be served.
func (r *ProviderRegistry) IsConfigured(provider string) bool {
	r.mu.RLock()
	_, cached := r.cache[provider]
	r.mu.RUnlock()
	return cached || (r.factory != nil && r.factory.IsConfigured(provider))
}

// Validate checks if the factory is properly configured.
// Should be called at startup to fail fast if misconfigured.
func (r *ProviderRegistry) Validate() error {
	if r.factory == nil {
		return fmt.Errorf("provider factory is not configured")
	}
	return nil
}
