package llmclient

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"concierge/config"
	apperrors "concierge/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testConfig(host string) *config.Config {
	return &config.Config{
		LLMHost:               host,
		LLMAPIKey:             "secret",
		LLMRequestTimeout:     5 * time.Second,
		MaxRetries:            3,
		RetryDelaySeconds:     time.Millisecond,
		LLMBackoffMaxSeconds:  5 * time.Millisecond,
		LLMBackoffJitterRatio: 0.1,
	}
}

func TestRequestMessages(t *testing.T) {
	req := Request{
		System:   "grounding",
		Examples: []Example{{User: "q1", Assistant: "a1"}},
		History:  []Message{{Role: "user", Content: "earlier"}, {Role: "assistant", Content: "reply"}},
		User:     "now",
	}

	want := []Message{
		{Role: "system", Content: "grounding"},
		{Role: "user", Content: "q1"},
		{Role: "assistant", Content: "a1"},
		{Role: "user", Content: "earlier"},
		{Role: "assistant", Content: "reply"},
		{Role: "user", Content: "now"},
	}
	assert.Equal(t, want, req.Messages())

	bare := Request{User: "only"}
	assert.Equal(t, []Message{{Role: "user", Content: "only"}}, bare.Messages())
}

func TestCompleteSuccess(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Hello there"}}]}`))
	}))
	defer srv.Close()

	client := New(testConfig(srv.URL+"/"), zap.NewNop())
	text, err := client.Complete(context.Background(), Request{Model: "m", System: "sys", User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "Hello there", text)
	assert.Equal(t, "m", got.Model)
	assert.False(t, got.Stream)
	assert.Len(t, got.Messages, 2)
}

func TestCompleteRetriesUnavailable(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"finally"}}]}`))
	}))
	defer srv.Close()

	text, err := New(testConfig(srv.URL), zap.NewNop()).Complete(context.Background(), Request{User: "hi"})

	require.NoError(t, err)
	assert.Equal(t, "finally", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "server_error", status: http.StatusInternalServerError, body: "boom"},
		{name: "malformed_body", status: http.StatusOK, body: "not json"},
		{name: "no_choices", status: http.StatusOK, body: `{"choices":[]}`},
		{name: "always_unavailable", status: http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(testConfig(srv.URL), zap.NewNop()).Complete(context.Background(), Request{User: "hi"})
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrLLMCommunication)
		})
	}
}

func TestCompleteHonoursContext(t *testing.T) {
	// The handler must return on its own: srv.Close waits for active
	// handlers, and an unread body keeps the server from noticing the
	// client went away.
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := New(testConfig(srv.URL), zap.NewNop()).Complete(ctx, Request{User: "hi"})
	assert.ErrorIs(t, err, apperrors.ErrLLMCommunication)
}
