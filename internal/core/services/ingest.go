// Package services implements the core pipelines behind the driving
// ports: document ingestion and retrieval-augmented chat.
package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
	"github.com/docuchat/docuchat/internal/core/ports/driving"
	"github.com/docuchat/docuchat/internal/logger"
	"github.com/docuchat/docuchat/internal/metrics"
	"github.com/docuchat/docuchat/internal/postprocessors/chunker"
)

// Ensure IngestionService implements the interface.
var _ driving.IngestionService = (*IngestionService)(nil)

// IngestionService runs uploads through extract, chunk, embed and
// upsert, persisting status transitions along the way.
type IngestionService struct {
	docs       driven.DocumentStore
	extractors driven.ExtractorRegistry
	chunker    *chunker.Chunker
	embedder   driven.EmbeddingService
	vectors    driven.VectorStore

	// group serializes concurrent ingestions of the same document ID.
	group singleflight.Group
}

// NewIngestionService creates the ingestion pipeline.
func NewIngestionService(
	docs driven.DocumentStore,
	extractors driven.ExtractorRegistry,
	ch *chunker.Chunker,
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
) *IngestionService {
	return &IngestionService{
		docs:       docs,
		extractors: extractors,
		chunker:    ch,
		embedder:   embedder,
		vectors:    vectors,
	}
}

// IngestUpload accepts an upload and indexes it synchronously.
// The document record is created PENDING before the pipeline starts, so
// clients polling document state observe every transition. On failure
// the record ends FAILED and the error is returned alongside it.
func (s *IngestionService) IngestUpload(ctx context.Context, upload domain.Upload) (*domain.Document, error) {
	doc := &domain.Document{
		ID:       uuid.NewString(),
		UserID:   upload.UserID,
		Filename: upload.Filename,
		MimeType: upload.MimeType,
		Size:     upload.Size,
		Content:  upload.Content,
		Status:   domain.StatusPending,
	}
	if err := s.docs.SaveDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("saving document record: %w", err)
	}

	return s.runPipeline(ctx, doc)
}

// ReingestDocument re-runs the pipeline for an existing document using
// its stored content. The identifier is reused, so every chunk vector
// overwrites its previous version in the index.
func (s *IngestionService) ReingestDocument(ctx context.Context, userID, id string) (*domain.Document, error) {
	doc, err := s.docs.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.UserID != userID {
		return nil, domain.ErrNotFound
	}

	return s.runPipeline(ctx, doc)
}

// runPipeline indexes one document under the per-document single-flight
// guard: concurrent calls for the same document ID share one pipeline
// run and its outcome.
func (s *IngestionService) runPipeline(ctx context.Context, doc *domain.Document) (*domain.Document, error) {
	_, err, _ := s.group.Do(doc.ID, func() (any, error) {
		return nil, s.index(ctx, doc)
	})
	if err != nil {
		metrics.DocumentsIngested.WithLabelValues(string(domain.StatusFailed)).Inc()
		if statusErr := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusFailed); statusErr != nil {
			logger.Error("marking document %s failed: %v", doc.ID, statusErr)
		}
		doc.Status = domain.StatusFailed
		return doc, err
	}

	metrics.DocumentsIngested.WithLabelValues(string(domain.StatusIndexed)).Inc()
	doc.Status = domain.StatusIndexed
	doc.IndexID = doc.ID
	return doc, nil
}

// index runs the INDEXING stage: extract, chunk, embed, upsert.
func (s *IngestionService) index(ctx context.Context, doc *domain.Document) error {
	if err := s.docs.UpdateStatus(ctx, doc.ID, domain.StatusIndexing); err != nil {
		return fmt.Errorf("marking document indexing: %w", err)
	}

	logger.Section(fmt.Sprintf("indexing %s (%s)", doc.ID, doc.Filename))

	extractor := s.extractors.ForMIME(doc.MimeType)
	text, err := extractor.Extract(ctx, doc.Content)
	if err != nil {
		return fmt.Errorf("extracting text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return domain.ErrEmptyContent
	}

	chunks, err := s.chunker.Split(doc.ID, text)
	if err != nil {
		return fmt.Errorf("chunking: %w", err)
	}
	if len(chunks) == 0 {
		return domain.ErrNoChunks
	}
	logger.Debug("document %s: %d chunks", doc.ID, len(chunks))

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	embeddings, err := s.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		metrics.UpstreamErrors.WithLabelValues("embedding").Inc()
		return fmt.Errorf("embedding chunks: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return fmt.Errorf("%d chunks, %d embeddings: %w",
			len(chunks), len(embeddings), domain.ErrEmbeddingCountMismatch)
	}

	records := make([]driven.VectorRecord, len(chunks))
	for i, chunk := range chunks {
		records[i] = driven.VectorRecord{
			ID:     chunk.VectorID(),
			Values: embeddings[i],
			Metadata: driven.RecordMetadata{
				DocumentID: doc.ID,
				UserID:     doc.UserID,
				Filename:   doc.Filename,
				Text:       chunk.Text,
				ChunkIndex: chunk.Index,
			},
		}
	}

	if err := s.vectors.Upsert(ctx, records); err != nil {
		metrics.UpstreamErrors.WithLabelValues("vectorstore").Inc()
		return fmt.Errorf("upserting vectors: %w", err)
	}
	metrics.ChunksUpserted.Add(float64(len(records)))

	if err := s.docs.SetIndexed(ctx, doc.ID, doc.ID); err != nil {
		return fmt.Errorf("marking document indexed: %w", err)
	}

	logger.Info("indexed document %s: %d vectors", doc.ID, len(records))
	return nil
}
