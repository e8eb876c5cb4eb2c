package driven

import "context"

// MetricCosine is the similarity metric used for all indexes.
const MetricCosine = "cosine"

// RecordMetadata is the metadata stored alongside every vector.
// UserID is mandatory: retrieval filters on it so queries never cross
// user boundaries.
type RecordMetadata struct {
	DocumentID string `json:"documentId"`
	UserID     string `json:"userId"`
	Filename   string `json:"filename"`
	Text       string `json:"text"`
	ChunkIndex int    `json:"chunkIndex"`
}

// Value returns the metadata field for a filter key, or "" if the key
// is unknown. Used by stores that evaluate filters locally.
func (m RecordMetadata) Value(key string) string {
	switch key {
	case "userId":
		return m.UserID
	case "documentId":
		return m.DocumentID
	case "filename":
		return m.Filename
	}
	return ""
}

// VectorRecord is one embedding plus its metadata, keyed by ID.
// Upserting an existing ID overwrites the previous record.
type VectorRecord struct {
	ID       string         `json:"id"`
	Values   []float32      `json:"values"`
	Metadata RecordMetadata `json:"metadata"`
}

// VectorMatch is a similarity query hit.
type VectorMatch struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata RecordMetadata `json:"metadata"`
}

// VectorStore stores embeddings with metadata and answers nearest
// neighbour queries. Backed by a remote vector database (Pinecone) in
// production and a brute-force in-memory store in tests.
type VectorStore interface {
	// EnsureIndex creates the configured index with the given dimension
	// and metric if it does not exist, and blocks until it is ready.
	// Idempotent: calling it for an existing index is a no-op.
	EnsureIndex(ctx context.Context, dimension int, metric string) error

	// Upsert writes records keyed by ID, overwriting existing IDs.
	// Implementations split large record sets into batches; no record
	// is silently dropped.
	Upsert(ctx context.Context, records []VectorRecord) error

	// Query returns the topK nearest records under the index metric,
	// restricted to records whose metadata matches every filter entry
	// exactly. Results are ordered by descending score.
	Query(ctx context.Context, vector []float32, topK int, filter map[string]string) ([]VectorMatch, error)

	// Close releases resources.
	Close() error
}
