package driving

import (
	"context"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// IngestionService runs the upload-to-index pipeline.
type IngestionService interface {
	// IngestUpload accepts an upload, creates its document record and
	// indexes it synchronously. The returned document reflects the final
	// status: INDEXED on success, FAILED (plus a non-nil error) when any
	// pipeline step failed. The document record exists in both cases.
	IngestUpload(ctx context.Context, upload domain.Upload) (*domain.Document, error)

	// ReingestDocument re-runs the pipeline for an existing document,
	// reusing its stored content and identifier so vectors are
	// overwritten in place. Documents owned by other users are reported
	// as not found. Concurrent re-ingestions of the same document
	// coalesce into one pipeline run.
	ReingestDocument(ctx context.Context, userID, id string) (*domain.Document, error)
}
