// Package memory implements the document store port with an in-memory
// map. Used in tests and ephemeral setups with no data directory.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

var _ driven.DocumentStore = (*DocStore)(nil)

// DocStore keeps document records in memory. Safe for concurrent use.
type DocStore struct {
	mu   sync.RWMutex
	docs map[string]domain.Document
}

// NewDocStore creates an empty in-memory document store.
func NewDocStore() *DocStore {
	return &DocStore{docs: make(map[string]domain.Document)}
}

// SaveDocument stores or updates a document.
func (s *DocStore) SaveDocument(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now
	s.docs[doc.ID] = *doc
	return nil
}

// GetDocument retrieves a document by ID.
func (s *DocStore) GetDocument(_ context.Context, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// UpdateStatus transitions a document's lifecycle status.
func (s *DocStore) UpdateStatus(_ context.Context, id string, status domain.DocumentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = status
	doc.UpdatedAt = time.Now().UTC()
	s.docs[id] = doc
	return nil
}

// SetIndexed marks a document INDEXED and records its index grouping ID.
func (s *DocStore) SetIndexed(_ context.Context, id, indexID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.docs[id]
	if !ok {
		return domain.ErrNotFound
	}
	doc.Status = domain.StatusIndexed
	doc.IndexID = indexID
	doc.UpdatedAt = time.Now().UTC()
	s.docs[id] = doc
	return nil
}

// ListByUser returns all documents owned by a user, newest first.
func (s *DocStore) ListByUser(_ context.Context, userID string) ([]domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var docs []domain.Document //nolint:prealloc // size unknown until scanned
	for _, doc := range s.docs {
		if doc.UserID == userID {
			docs = append(docs, doc)
		}
	}
	sort.Slice(docs, func(i, j int) bool {
		if !docs[i].CreatedAt.Equal(docs[j].CreatedAt) {
			return docs[i].CreatedAt.After(docs[j].CreatedAt)
		}
		return docs[i].ID > docs[j].ID
	})
	return docs, nil
}

// Close releases resources.
func (s *DocStore) Close() error {
	return nil
}
