// Package memory implements the vector store port as a brute-force
// in-memory index. Used in tests and in single-node setups where no
// remote vector database is configured.
package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// Ensure Store implements the interface.
var _ driven.VectorStore = (*Store)(nil)

// Store keeps vector records in a map and answers queries by scanning
// all of them. Safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	records map[string]driven.VectorRecord
}

// NewStore creates an empty in-memory vector store.
func NewStore() *Store {
	return &Store{records: make(map[string]driven.VectorRecord)}
}

// EnsureIndex is a no-op: the in-memory store has no schema.
func (s *Store) EnsureIndex(_ context.Context, _ int, _ string) error {
	return nil
}

// Upsert stores records keyed by ID, overwriting existing entries.
func (s *Store) Upsert(_ context.Context, records []driven.VectorRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		s.records[rec.ID] = rec
	}
	return nil
}

// Query scans every record, keeps those matching the filter exactly,
// and returns the topK by cosine similarity in descending order.
func (s *Store) Query(_ context.Context, vector []float32, topK int, filter map[string]string) ([]driven.VectorMatch, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]driven.VectorMatch, 0, len(s.records))
	for _, rec := range s.records {
		if !matchesFilter(rec.Metadata, filter) {
			continue
		}
		matches = append(matches, driven.VectorMatch{
			ID:       rec.ID,
			Score:    cosineSimilarity(vector, rec.Values),
			Metadata: rec.Metadata,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if topK > 0 && len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close releases resources.
func (s *Store) Close() error {
	return nil
}

func matchesFilter(meta driven.RecordMetadata, filter map[string]string) bool {
	for key, want := range filter {
		if meta.Value(key) != want {
			return false
		}
	}
	return true
}

// cosineSimilarity returns the cosine of the angle between a and b,
// or 0 when either vector has zero magnitude or lengths differ.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
