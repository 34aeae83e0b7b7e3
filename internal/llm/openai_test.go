package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var req map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req["model"])

		resp := map[string]any{
			"id":      "chatcmpl-123",
			"object":  "chat.completion",
			"created": 1677652288,
			"model":   "test-model",
			"choices": []map[string]any{
				{
					"index":         0,
					"message":       map[string]string{"role": "assistant", "content": "planned"},
					"finish_reason": "stop",
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	p := NewOpenAIProvider("sk-test", "test-model", server.URL+"/v1", server.Client())
	assert.Equal(t, "openai", p.Name())

	text, err := p.Generate(context.Background(), "plan it")
	require.NoError(t, err)
	assert.Equal(t, "planned", text)
}

func TestOpenAIProviderErrors(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		transient bool
	}{
		{"rate limited", http.StatusTooManyRequests, true},
		{"unavailable", http.StatusServiceUnavailable, true},
		{"unauthorized", http.StatusUnauthorized, false},
		{"bad request", http.StatusBadRequest, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(`{"error": {"message": "nope", "type": "error"}}`))
			}))
			defer server.Close()

			_, err := NewOpenAIProvider("sk", "m", server.URL+"/v1", server.Client()).Generate(context.Background(), "p")
			require.Error(t, err)
			assert.Equal(t, tt.transient, IsTransient(err))
			assert.Equal(t, !tt.transient, IsFatal(err))
		})
	}
}

func TestOpenAIProviderWithoutKey(t *testing.T) {
	_, err := NewOpenAIProvider("", "", "", nil).Generate(context.Background(), "p")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}
