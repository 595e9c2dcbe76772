package handler

import (
	"log/slog"
	"net/http"

	"promptchat/internal/capabilities"
	"promptchat/internal/httputil"
)

// ProviderChecker reports whether a provider has credentials configured.
type ProviderChecker interface {
	IsConfigured(provider string) bool
}

// ModelsHandler handles HTTP requests for the model catalog
type ModelsHandler struct {
	registry     *capabilities.Registry
	providers    ProviderChecker
	defaultModel string
	logger       *slog.Logger
}

// NewModelsHandler creates a new models handler
func NewModelsHandler(
	registry *capabilities.Registry,
	providers ProviderChecker,
	defaultModel string,
	logger *slog.Logger,
) *ModelsHandler {
	return &ModelsHandler{
		registry:     registry,
		providers:    providers,
		defaultModel: defaultModel,
		logger:       logger,
	}
}

// ModelsResponse lists selectable models
type ModelsResponse struct {
	DefaultModel string                           `json:"default_model"`
	Models       []capabilities.ModelCapabilities `json:"models"`
}

// ListModels returns the catalog entries of configured providers
// GET /api/models
func (h *ModelsHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	models := h.registry.ListModels(h.providers.IsConfigured)
	if models == nil {
		models = []capabilities.ModelCapabilities{}
	}

	httputil.RespondJSON(w, http.StatusOK, ModelsResponse{
		DefaultModel: h.defaultModel,
		Models:       models,
	})
}
