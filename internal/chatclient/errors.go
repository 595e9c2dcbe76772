package chatclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"promptchat/internal/domain"
)

var (
	// ErrOutOfOrder reports a text increment whose sequence number skips or
	// repeats. The turn fails; text already applied is kept.
	ErrOutOfOrder = errors.New("stream chunk out of order")

	// ErrIncomplete reports a stream that ended without finish or error.
	ErrIncomplete = errors.New("stream ended without a terminal event")

	// ErrStreamFailed wraps the error text sent in an error chunk.
	ErrStreamFailed = errors.New("assistant response failed")
)

// APIError is a non-2xx response from the server.
// It matches domain.ErrValidation for 4xx, domain.ErrTransport for gateway
// failures and domain.ErrPersistence for other 5xx statuses.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Is allows errors.Is() to classify the response by status
func (e *APIError) Is(target error) bool {
	switch {
	case e.Status >= 400 && e.Status < 500:
		return target == domain.ErrValidation
	case e.Status == http.StatusBadGateway, e.Status == http.StatusServiceUnavailable, e.Status == http.StatusGatewayTimeout:
		return target == domain.ErrTransport
	case e.Status >= 500:
		return target == domain.ErrPersistence
	}
	return false
}

// maxErrorBody bounds how much of an error response is read.
const maxErrorBody = 64 << 10

// readAPIError builds an APIError from a problem JSON body, falling back to
// the raw text or the status text.
func readAPIError(resp *http.Response) *APIError {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var problem struct {
		Error  string `json:"error"`
		Detail string `json:"detail"`
	}
	msg := ""
	if err := json.Unmarshal(data, &problem); err == nil {
		msg = problem.Error
		if msg == "" {
			msg = problem.Detail
		}
	}
	if msg == "" {
		msg = strings.TrimSpace(string(data))
	}
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}

	return &APIError{Status: resp.StatusCode, Message: msg}
}

// transportError wraps network failures with domain.ErrTransport.
func transportError(op string, err error) error {
	return fmt.Errorf("%w: %s: %v", domain.ErrTransport, op, err)
}
