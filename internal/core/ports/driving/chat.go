package driving

import (
	"context"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// ChatService answers one chat turn with retrieval-augmented generation.
type ChatService interface {
	// Respond takes the conversation so far, retrieves context for the
	// latest user message restricted to the given user's documents, and
	// streams the completion back. Errors that occur before the stream
	// starts are returned directly; errors mid-stream arrive as the
	// final StreamEvent.
	Respond(ctx context.Context, userID string, messages []domain.ChatMessage) (<-chan driven.StreamEvent, error)
}
