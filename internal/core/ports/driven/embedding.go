package driven

import "context"

// EmbeddingService generates vector embeddings from text.
//
// Implementations wrap remote HTTP providers (NVIDIA NIM, OpenAI, or any
// OpenAI-compatible endpoint). The model and therefore the dimensionality
// are fixed at construction time and must match the VectorStore index.
type EmbeddingService interface {
	// Embed generates a vector embedding for the given text.
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch generates embeddings for multiple texts in one call.
	// The result is ordered to match the input and always has the same
	// length; a provider returning a different count is rejected with
	// domain.ErrEmbeddingCountMismatch rather than silently truncated.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the embedding vector size (e.g. 1024).
	Dimensions() int

	// ModelName returns the name of the embedding model being used.
	ModelName() string

	// Ping validates the service is reachable with a lightweight request.
	Ping(ctx context.Context) error

	// Close releases resources.
	Close() error
}
