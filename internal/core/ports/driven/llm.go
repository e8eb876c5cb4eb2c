package driven

import (
	"context"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// ChatOptions tunes a chat completion request.
type ChatOptions struct {
	// MaxTokens caps the completion length. 0 means provider default.
	MaxTokens int

	// Temperature controls sampling randomness. 0 means provider default.
	Temperature float64
}

// StreamEvent is one element of a completion stream: either a token
// fragment or a terminal error. After an event with Err != nil, or
// after the channel closes, no further events are sent.
type StreamEvent struct {
	Token string
	Err   error
}

// LLMService streams chat completions from a remote provider.
type LLMService interface {
	// ChatStream sends the conversation and returns a channel of token
	// fragments. The channel is closed when the completion finishes.
	// Cancelling ctx aborts the upstream stream.
	ChatStream(ctx context.Context, messages []domain.ChatMessage, opts ChatOptions) (<-chan StreamEvent, error)

	// ModelName returns the name of the chat model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
