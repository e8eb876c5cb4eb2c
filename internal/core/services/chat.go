package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
	"github.com/docuchat/docuchat/internal/core/ports/driving"
	"github.com/docuchat/docuchat/internal/logger"
	"github.com/docuchat/docuchat/internal/metrics"
)

// Ensure ChatService implements the interface.
var _ driving.ChatService = (*ChatService)(nil)

// DefaultTopK is the number of chunks retrieved per question.
const DefaultTopK = 5

// ChatService answers chat turns with retrieval-augmented generation:
// embed the question, retrieve the user's nearest chunks, assemble the
// prompt and stream the completion.
type ChatService struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	llm      driven.LLMService
	topK     int
}

// NewChatService creates the chat pipeline. topK <= 0 selects the default.
func NewChatService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	llm driven.LLMService,
	topK int,
) *ChatService {
	if topK <= 0 {
		topK = DefaultTopK
	}
	return &ChatService{
		embedder: embedder,
		vectors:  vectors,
		llm:      llm,
		topK:     topK,
	}
}

// Respond runs one retrieval-augmented chat turn for the given user.
// The latest message must be non-empty user content; everything before
// it becomes the rendered chat history.
func (s *ChatService) Respond(ctx context.Context, userID string, messages []domain.ChatMessage) (<-chan driven.StreamEvent, error) {
	if len(messages) == 0 {
		return nil, domain.ErrEmptyMessage
	}

	current := messages[len(messages)-1]
	question := strings.TrimSpace(current.Content)
	if question == "" {
		return nil, domain.ErrEmptyMessage
	}
	history := messages[:len(messages)-1]

	queryVector, err := s.embedder.Embed(ctx, question)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("embedding").Inc()
		return nil, fmt.Errorf("embedding question: %w", err)
	}

	// The userId filter is mandatory: retrieval must never cross user
	// boundaries even though all users share one index.
	matches, err := s.vectors.Query(ctx, queryVector, s.topK, map[string]string{"userId": userID})
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("vectorstore").Inc()
		return nil, fmt.Errorf("querying vector store: %w", err)
	}
	logger.Debug("retrieved %d chunks for user %s", len(matches), userID)

	prompt := assemblePrompt(matches, history, question)

	events, err := s.llm.ChatStream(ctx, []domain.ChatMessage{
		{Role: domain.RoleUser, Content: prompt},
	}, driven.ChatOptions{})
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("llm").Inc()
		return nil, fmt.Errorf("starting completion: %w", err)
	}

	metrics.ChatTurns.Inc()
	return events, nil
}
