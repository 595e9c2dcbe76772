package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/openai/openai-go/v3/packages/ssestream"
)

// HTTPTransport posts to the chat endpoint and decodes the SSE response.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	model   string
}

// HTTPOption configures an HTTPTransport.
type HTTPOption func(*HTTPTransport)

// WithHTTPClient overrides the HTTP client. The client must not set a
// total timeout shorter than a full response.
func WithHTTPClient(client *http.Client) HTTPOption {
	return func(t *HTTPTransport) { t.client = client }
}

// WithModel selects the model for requests that do not name one.
func WithModel(model string) HTTPOption {
	return func(t *HTTPTransport) { t.model = model }
}

// NewHTTPTransport creates a transport for the server at baseURL.
func NewHTTPTransport(baseURL string, opts ...HTTPOption) *HTTPTransport {
	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  http.DefaultClient,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Send implements Transport.
func (t *HTTPTransport) Send(ctx context.Context, req *Request) (Stream, error) {
	body := *req
	if body.Model == "" {
		body.Model = t.model
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/api/chat", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/event-stream")

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, transportError("send chat request", err)
	}

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		return nil, readAPIError(resp)
	}

	decoder := &dataEventDecoder{Decoder: ssestream.NewDecoder(resp)}
	return &httpStream{stream: ssestream.NewStream[Chunk](decoder, nil)}, nil
}

// dataEventDecoder drops events without data, which is what keep-alive
// comments decode to.
type dataEventDecoder struct {
	ssestream.Decoder
}

func (d *dataEventDecoder) Next() bool {
	for d.Decoder.Next() {
		if len(bytes.TrimSpace(d.Decoder.Event().Data)) > 0 {
			return true
		}
	}
	return false
}

type httpStream struct {
	stream *ssestream.Stream[Chunk]
}

func (s *httpStream) Next() bool {
	return s.stream.Next()
}

func (s *httpStream) Chunk() Chunk {
	return s.stream.Current()
}

func (s *httpStream) Err() error {
	if err := s.stream.Err(); err != nil {
		return transportError("read chat stream", err)
	}
	return nil
}

func (s *httpStream) Close() error {
	return s.stream.Close()
}
