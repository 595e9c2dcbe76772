package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"promptchat/internal/domain"
	"promptchat/internal/httputil"
)

// handleError converts domain errors to HTTP responses.
// Server-side faults are logged and reported without internal detail.
func handleError(w http.ResponseWriter, logger *slog.Logger, err error, fallback string) {
	status := domain.StatusFor(err)

	switch {
	case status < http.StatusInternalServerError:
		httputil.RespondError(w, status, err.Error())
	case errors.Is(err, domain.ErrTransport):
		logger.Warn("upstream failure", "error", err)
		var provErr *domain.ProviderError
		if errors.As(err, &provErr) {
			httputil.RespondErrorWithExtras(w, status, fallback, map[string]interface{}{"provider": provErr.Provider})
			return
		}
		httputil.RespondError(w, status, fallback)
	default:
		logger.Error("request failed", "error", err)
		httputil.RespondError(w, status, fallback)
	}
}

// QueryParam extracts a required, non-blank query parameter.
// Writes a 400 and returns false when it is missing.
func QueryParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	value := strings.TrimSpace(r.URL.Query().Get(name))
	if value == "" {
		httputil.RespondError(w, http.StatusBadRequest, name+" is required")
		return "", false
	}
	return value, true
}
