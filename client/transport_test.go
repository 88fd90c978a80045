package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/accordkit/accord/config"
)

func newTestTransport(t *testing.T, handler http.HandlerFunc) *HTTPTransport {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewHTTPTransport(&config.APIConfig{
		BaseURL: server.URL,
		Token:   "secret",
	}, nil)
}

func TestHTTPTransportDo(t *testing.T) {
	t.Run("sends bot authorization and json body", func(t *testing.T) {
		var gotAuth, gotContentType string
		var gotBody map[string]any

		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			gotAuth = r.Header.Get("Authorization")
			gotContentType = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			w.Write([]byte(`{"id":"1"}`))
		})

		data, err := transport.Do(context.Background(), http.MethodPost, "/channels/2/messages",
			map[string]any{"content": "hi"})
		require.NoError(t, err)
		assert.JSONEq(t, `{"id":"1"}`, string(data))
		assert.Equal(t, "Bot secret", gotAuth)
		assert.Equal(t, "application/json", gotContentType)
		assert.Equal(t, "hi", gotBody["content"])
	})

	t.Run("nil body sends no content type", func(t *testing.T) {
		var gotContentType string
		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			gotContentType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusNoContent)
		})

		data, err := transport.Do(context.Background(), http.MethodDelete, "/channels/2/messages/3", nil)
		require.NoError(t, err)
		assert.Nil(t, data)
		assert.Empty(t, gotContentType)
	})

	t.Run("non-2xx surfaces as APIError", func(t *testing.T) {
		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			w.Write([]byte(`{"code":50013,"message":"Missing Permissions"}`))
		})

		_, err := transport.Do(context.Background(), http.MethodDelete, "/channels/2/messages/3", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusForbidden, apiErr.Status)
		assert.Equal(t, 50013, apiErr.Code)
		assert.Equal(t, "Missing Permissions", apiErr.Message)
	})

	t.Run("undecodable error body still yields the status", func(t *testing.T) {
		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			w.Write([]byte("<html>bad gateway</html>"))
		})

		_, err := transport.Do(context.Background(), http.MethodGet, "/gateway", nil)
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	})

	t.Run("context cancellation aborts the call", func(t *testing.T) {
		transport := newTestTransport(t, func(w http.ResponseWriter, r *http.Request) {
			<-r.Context().Done()
		})

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := transport.Do(ctx, http.MethodGet, "/gateway", nil)
		assert.Error(t, err)
	})
}
