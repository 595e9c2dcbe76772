package domain

import (
	"errors"
	"net/http"
)

// HTTPError defines errors that can be mapped to HTTP status codes.
type HTTPError interface {
	error
	StatusCode() int
}

// Domain error types implementing HTTPError interface
type (
	// NotFoundError indicates a resource was not found
	NotFoundError struct {
		Message string
	}

	// ValidationError indicates invalid input
	ValidationError struct {
		Message string
	}

	// PersistenceError indicates the backing store failed
	PersistenceError struct {
		Message string
		Err     error
	}

	// ProviderError is an LLM provider failure. It matches ErrTransport
	// unless the wrapped error says otherwise.
	ProviderError struct {
		Provider string
		Err      error
	}
)

func (e *NotFoundError) Error() string   { return e.Message }
func (e *ValidationError) Error() string { return e.Message }
func (e *PersistenceError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *NotFoundError) StatusCode() int    { return http.StatusNotFound }
func (e *ValidationError) StatusCode() int  { return http.StatusBadRequest }
func (e *PersistenceError) StatusCode() int { return http.StatusInternalServerError }

// Is allows errors.Is() to match typed errors against their sentinels
func (e *NotFoundError) Is(target error) bool    { return target == ErrNotFound }
func (e *ValidationError) Is(target error) bool  { return target == ErrValidation }
func (e *PersistenceError) Is(target error) bool { return target == ErrPersistence }

func (e *PersistenceError) Unwrap() error { return e.Err }

func (e *ProviderError) Error() string {
	return "provider " + e.Provider + ": " + e.Err.Error()
}
func (e *ProviderError) Is(target error) bool { return target == ErrTransport }
func (e *ProviderError) Unwrap() error        { return e.Err }

// Sentinel errors - use with errors.Is()
var (
	ErrNotFound    = errors.New("not found")
	ErrValidation  = errors.New("validation failed")
	ErrPersistence = errors.New("persistence failure")
	// ErrTransport covers network failures and stream faults between client,
	// server and the LLM provider.
	ErrTransport = errors.New("transport failure")
)

// StatusFor maps an error to the HTTP status the API reports for it.
func StatusFor(err error) int {
	var httpErr HTTPError
	switch {
	case errors.As(err, &httpErr):
		return httpErr.StatusCode()
	case errors.Is(err, ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrTransport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
