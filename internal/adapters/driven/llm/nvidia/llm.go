// Package nvidia provides a chat completion adapter for the NVIDIA NIM
// API (OpenAI-compatible /chat/completions endpoint with SSE streaming).
package nvidia

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// Ensure LLMService implements the interface.
var _ driven.LLMService = (*LLMService)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "https://integrate.api.nvidia.com/v1"
	DefaultTimeout = 120 * time.Second

	// providerName labels errors and metrics.
	providerName = "nvidia-chat"

	// doneMarker terminates an OpenAI-compatible SSE stream.
	doneMarker = "[DONE]"
)

// Config holds configuration for the NVIDIA chat completion service.
type Config struct {
	// APIKey is the NVIDIA API key (required).
	APIKey string

	// BaseURL is the API base URL (default: https://integrate.api.nvidia.com/v1).
	BaseURL string

	// Model is the chat model to use (required).
	Model string

	// Timeout bounds non-streaming requests such as Ping. The stream
	// itself is bounded by the request context, not this timeout.
	Timeout time.Duration
}

// LLMService streams chat completions from the NVIDIA NIM API.
type LLMService struct {
	client  *http.Client
	baseURL string
	apiKey  string
	model   string
	timeout time.Duration
}

// chatRequest is the OpenAI-compatible request format.
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Stream      bool          `json:"stream"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

// chatMessage is the wire message format.
type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// streamChunk is one SSE data payload of a streamed completion.
type streamChunk struct {
	Choices []struct {
		Delta struct {
			Content string `json:"content"`
		} `json:"delta"`
		FinishReason *string `json:"finish_reason"`
	} `json:"choices"`
}

// NewLLMService creates a new NVIDIA chat completion service.
// Missing API key or model is a configuration error.
func NewLLMService(cfg Config) (*LLMService, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("nvidia: API key: %w", domain.ErrNotConfigured)
	}
	if cfg.Model == "" {
		return nil, fmt.Errorf("nvidia: chat model: %w", domain.ErrNotConfigured)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &LLMService{
		// No client-level timeout: it would cut off long streams.
		// The stream lifetime belongs to the request context.
		client:  &http.Client{},
		baseURL: cfg.BaseURL,
		apiKey:  cfg.APIKey,
		model:   cfg.Model,
		timeout: cfg.Timeout,
	}, nil
}

// ChatStream sends the conversation and streams back token fragments.
// The returned channel closes when the provider finishes or ctx is
// cancelled; a mid-stream failure arrives as the final event's Err.
func (s *LLMService) ChatStream(
	ctx context.Context,
	messages []domain.ChatMessage,
	opts driven.ChatOptions,
) (<-chan driven.StreamEvent, error) {
	wireMessages := make([]chatMessage, len(messages))
	for i, msg := range messages {
		wireMessages[i] = chatMessage{Role: string(msg.Role), Content: msg.Content}
	}

	reqBody := chatRequest{
		Model:    s.model,
		Messages: wireMessages,
		Stream:   true,
	}
	if opts.MaxTokens > 0 {
		reqBody.MaxTokens = opts.MaxTokens
	}
	if opts.Temperature > 0 {
		reqBody.Temperature = opts.Temperature
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		s.baseURL+"/chat/completions",
		bytes.NewReader(jsonBody),
	)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		return nil, &domain.RemoteAPIError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	events := make(chan driven.StreamEvent)
	go s.relay(ctx, resp.Body, events)
	return events, nil
}

// relay reads SSE lines from the response body and forwards content
// deltas until the done marker, the body ends, or ctx is cancelled.
func (s *LLMService) relay(ctx context.Context, body io.ReadCloser, events chan<- driven.StreamEvent) {
	defer close(events)
	defer body.Close()

	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == doneMarker {
			return
		}

		var chunk streamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			// Skip malformed keep-alive or comment payloads.
			continue
		}
		if len(chunk.Choices) == 0 {
			continue
		}
		token := chunk.Choices[0].Delta.Content
		if token == "" {
			continue
		}

		select {
		case events <- driven.StreamEvent{Token: token}:
		case <-ctx.Done():
			return
		}
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		select {
		case events <- driven.StreamEvent{Err: fmt.Errorf("read stream: %w", err)}:
		case <-ctx.Done():
		}
	}
}

// ModelName returns the name of the chat model being used.
func (s *LLMService) ModelName() string {
	return s.model
}

// Ping validates the service is reachable by checking the /models endpoint.
func (s *LLMService) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/models", http.NoBody)
	if err != nil {
		return fmt.Errorf("nvidia: create ping request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("nvidia: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &domain.RemoteAPIError{
			Provider:   providerName,
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}
	return nil
}

// Close releases resources.
func (s *LLMService) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
