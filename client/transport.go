package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/accordkit/accord/config"
	logger "github.com/accordkit/accord/middleware/log"
)

// Transport dispatches one REST call and returns the raw response body.
// Implementations must not retry; every failure surfaces to the caller
// on first occurrence. Cancellation and timeouts belong here, not in
// the operations built on top.
type Transport interface {
	Do(ctx context.Context, method, path string, body any) ([]byte, error)
}

// APIError is a non-2xx response passed through unmodified. The message
// pipeline never interprets status codes; callers decide what to do.
type APIError struct {
	Status  int    `json:"-"`
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d code %d: %s", e.Status, e.Code, e.Message)
}

// HTTPTransport is the default Transport over net/http.
type HTTPTransport struct {
	baseURL string
	token   string
	client  *http.Client
	logger  *logger.Logger
}

// NewHTTPTransport creates a transport from the API configuration.
func NewHTTPTransport(cfg *config.APIConfig, log *logger.Logger) *HTTPTransport {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &HTTPTransport{
		baseURL: cfg.BaseURL,
		token:   cfg.Token,
		client:  &http.Client{Timeout: timeout},
		logger:  log,
	}
}

// Do implements Transport. A nil body sends no payload; any other body
// is JSON-encoded. Responses with no content return a nil byte slice.
func (t *HTTPTransport) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, t.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+t.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s %s failed: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	t.logger.DebugContext(ctx, "rest call",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		if len(data) > 0 {
			// A body that fails to decode still yields the status code.
			_ = json.Unmarshal(data, apiErr)
		}
		return nil, apiErr
	}

	if len(data) == 0 {
		return nil, nil
	}
	return data, nil
}
