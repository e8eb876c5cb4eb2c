package driven

import (
	"context"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// DocumentStore persists document records and their lifecycle status.
// Backed by SQLite; the schema is owned here, not by the core.
type DocumentStore interface {
	// SaveDocument stores or updates a document.
	SaveDocument(ctx context.Context, doc *domain.Document) error

	// GetDocument retrieves a document by ID, raw content included.
	// Returns domain.ErrNotFound if it does not exist.
	GetDocument(ctx context.Context, id string) (*domain.Document, error)

	// UpdateStatus transitions a document's lifecycle status.
	// The transition is immediately visible to readers polling the record.
	UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error

	// SetIndexed marks a document INDEXED and records its index grouping ID.
	SetIndexed(ctx context.Context, id, indexID string) error

	// ListByUser returns all documents owned by a user, newest first.
	// Listed records may omit raw content; only GetDocument guarantees
	// it is loaded.
	ListByUser(ctx context.Context, userID string) ([]domain.Document, error)

	// Close releases resources.
	Close() error
}
