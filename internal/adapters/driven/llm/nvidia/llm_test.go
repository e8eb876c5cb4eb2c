package nvidia

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

func newTestService(t *testing.T, handler http.HandlerFunc) *LLMService {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	svc, err := NewLLMService(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "test-model",
	})
	require.NoError(t, err)
	return svc
}

func collect(t *testing.T, events <-chan driven.StreamEvent) (string, error) {
	t.Helper()
	var out string
	for ev := range events {
		if ev.Err != nil {
			return out, ev.Err
		}
		out += ev.Token
	}
	return out, nil
}

func TestNewLLMService_RequiresConfig(t *testing.T) {
	_, err := NewLLMService(Config{Model: "m"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)

	_, err = NewLLMService(Config{APIKey: "k"})
	assert.ErrorIs(t, err, domain.ErrNotConfigured)
}

func TestChatStream(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.True(t, req.Stream)
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		w.Header().Set("Content-Type", "text/event-stream")
		for _, token := range []string{"Hello", ", ", "world"} {
			fmt.Fprintf(w, "data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", token)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	events, err := svc.ChatStream(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)

	out, err := collect(t, events)
	require.NoError(t, err)
	assert.Equal(t, "Hello, world", out)
}

func TestChatStream_SkipsEmptyDeltas(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"role\":\"assistant\"}}]}\n\n")
		fmt.Fprint(w, ": keep-alive comment\n\n")
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"ok\"}}]}\n\n")
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	events, err := svc.ChatStream(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)

	out, err := collect(t, events)
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestChatStream_RemoteError(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":"invalid key"}`))
	})

	_, err := svc.ChatStream(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatOptions{})
	require.Error(t, err)

	var apiErr *domain.RemoteAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Body, "invalid key")
}

func TestChatStream_StreamEndsWithoutDoneMarker(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, "data: {\"choices\":[{\"delta\":{\"content\":\"partial\"}}]}\n\n")
	})

	events, err := svc.ChatStream(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatOptions{})
	require.NoError(t, err)

	out, err := collect(t, events)
	require.NoError(t, err)
	assert.Equal(t, "partial", out)
}

func TestChatStream_Options(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 256, req.MaxTokens)
		assert.InDelta(t, 0.7, req.Temperature, 1e-9)
		fmt.Fprint(w, "data: [DONE]\n\n")
	})

	events, err := svc.ChatStream(context.Background(), []domain.ChatMessage{
		{Role: domain.RoleUser, Content: "hi"},
	}, driven.ChatOptions{MaxTokens: 256, Temperature: 0.7})
	require.NoError(t, err)
	_, err = collect(t, events)
	require.NoError(t, err)
}
