package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	storagemem "github.com/docuchat/docuchat/internal/adapters/driven/storage/memory"
	vectormem "github.com/docuchat/docuchat/internal/adapters/driven/vectorstore/memory"
	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/extractors"
	"github.com/docuchat/docuchat/internal/postprocessors/chunker"
)

// --- Mock implementations ---

// mockEmbedder implements driven.EmbeddingService for testing.
type mockEmbedder struct {
	dimensions int
	batchErr   error

	// short forces fewer embeddings than texts when > 0.
	short int

	// batchCalls counts EmbedBatch invocations.
	batchCalls atomic.Int32

	// entered, when non-nil, receives one signal per EmbedBatch call;
	// block, when non-nil, holds the call until closed.
	entered chan struct{}
	block   chan struct{}
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

func (m *mockEmbedder) EmbedBatch(_ context.Context, texts []string) ([][]float32, error) {
	m.batchCalls.Add(1)
	if m.entered != nil {
		m.entered <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	count := len(texts)
	if m.short > 0 && m.short < count {
		count = m.short
	}
	embeddings := make([][]float32, count)
	for i := range embeddings {
		embeddings[i] = []float32{float32(i), 1}
	}
	return embeddings, nil
}

func (m *mockEmbedder) Dimensions() int {
	if m.dimensions == 0 {
		return 2
	}
	return m.dimensions
}

func (m *mockEmbedder) ModelName() string            { return "mock-embed" }
func (m *mockEmbedder) Ping(_ context.Context) error { return nil }
func (m *mockEmbedder) Close() error                 { return nil }

// statusRecordingStore wraps the memory store to capture every status
// transition in order.
type statusRecordingStore struct {
	*storagemem.DocStore
	transitions []domain.DocumentStatus
}

func (s *statusRecordingStore) SaveDocument(ctx context.Context, doc *domain.Document) error {
	s.transitions = append(s.transitions, doc.Status)
	return s.DocStore.SaveDocument(ctx, doc)
}

func (s *statusRecordingStore) UpdateStatus(ctx context.Context, id string, status domain.DocumentStatus) error {
	s.transitions = append(s.transitions, status)
	return s.DocStore.UpdateStatus(ctx, id, status)
}

func (s *statusRecordingStore) SetIndexed(ctx context.Context, id, indexID string) error {
	s.transitions = append(s.transitions, domain.StatusIndexed)
	return s.DocStore.SetIndexed(ctx, id, indexID)
}

func newIngestFixture(t *testing.T, embedder *mockEmbedder) (*IngestionService, *statusRecordingStore, *vectormem.Store) {
	t.Helper()
	docs := &statusRecordingStore{DocStore: storagemem.NewDocStore()}
	vectors := vectormem.NewStore()

	svc := NewIngestionService(docs, extractors.NewDefaultRegistry(), chunker.New(), embedder, vectors)
	return svc, docs, vectors
}

func textUpload(content string) domain.Upload {
	return domain.Upload{
		UserID:   "u1",
		Filename: "notes.txt",
		MimeType: "text/plain",
		Size:     int64(len(content)),
		Content:  []byte(content),
	}
}

func TestIngestUpload(t *testing.T) {
	svc, docs, vectors := newIngestFixture(t, &mockEmbedder{})

	// 2500 characters with default size 1000 and overlap 100 gives
	// chunks starting at 0, 900 and 1800.
	content := strings.Repeat("a", 2500)
	doc, err := svc.IngestUpload(context.Background(), textUpload(content))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusIndexed, doc.Status)
	assert.Equal(t, doc.ID, doc.IndexID)
	assert.Equal(t, []domain.DocumentStatus{
		domain.StatusPending,
		domain.StatusIndexing,
		domain.StatusIndexed,
	}, docs.transitions)

	assert.Equal(t, 3, vectors.Len())
	matches, err := vectors.Query(context.Background(), []float32{0, 1}, 10, map[string]string{"userId": "u1"})
	require.NoError(t, err)
	require.Len(t, matches, 3)

	ids := make(map[string]bool)
	for _, match := range matches {
		ids[match.ID] = true
		assert.Equal(t, doc.ID, match.Metadata.DocumentID)
		assert.Equal(t, "notes.txt", match.Metadata.Filename)
	}
	for i := 0; i < 3; i++ {
		assert.True(t, ids[fmt.Sprintf("%s-chunk-%d", doc.ID, i)])
	}

	stored, err := docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, stored.Status)
}

func TestIngestUpload_EmptyContentFails(t *testing.T) {
	svc, docs, vectors := newIngestFixture(t, &mockEmbedder{})

	doc, err := svc.IngestUpload(context.Background(), textUpload("   \n\t  "))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmptyContent)

	require.NotNil(t, doc)
	assert.Equal(t, domain.StatusFailed, doc.Status)
	assert.Zero(t, vectors.Len())

	stored, err := docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestIngestUpload_EmbeddingCountMismatchFails(t *testing.T) {
	svc, docs, vectors := newIngestFixture(t, &mockEmbedder{short: 1})

	doc, err := svc.IngestUpload(context.Background(), textUpload(strings.Repeat("b", 2500)))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbeddingCountMismatch)
	assert.Equal(t, domain.StatusFailed, doc.Status)
	assert.Zero(t, vectors.Len())

	stored, err := docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestIngestUpload_EmbedderErrorFails(t *testing.T) {
	svc, docs, _ := newIngestFixture(t, &mockEmbedder{
		batchErr: &domain.RemoteAPIError{Provider: "nvidia-embedding", StatusCode: 503, Body: "down"},
	})

	doc, err := svc.IngestUpload(context.Background(), textUpload("some content"))
	require.Error(t, err)

	apiErr, ok := domain.AsRemoteAPIError(err)
	require.True(t, ok)
	assert.Equal(t, 503, apiErr.StatusCode)
	assert.Equal(t, domain.StatusFailed, doc.Status)

	stored, err := docs.GetDocument(context.Background(), doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, stored.Status)
}

func TestIngestUpload_ShortTextSingleChunk(t *testing.T) {
	svc, _, vectors := newIngestFixture(t, &mockEmbedder{})

	doc, err := svc.IngestUpload(context.Background(), textUpload("short document"))
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, doc.Status)
	assert.Equal(t, 1, vectors.Len())

	matches, err := vectors.Query(context.Background(), []float32{0, 1}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, doc.ID+"-chunk-0", matches[0].ID)
	assert.Equal(t, "short document", matches[0].Metadata.Text)
}

func TestIngestUpload_DistinctUploadsGetDistinctDocuments(t *testing.T) {
	svc, _, vectors := newIngestFixture(t, &mockEmbedder{})
	ctx := context.Background()

	first, err := svc.IngestUpload(ctx, textUpload("first version"))
	require.NoError(t, err)
	second, err := svc.IngestUpload(ctx, textUpload("second version"))
	require.NoError(t, err)

	// Distinct documents get distinct vector identifiers.
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, 2, vectors.Len())
}

func TestReingestDocument_RecoversFailedDocument(t *testing.T) {
	embedder := &mockEmbedder{
		batchErr: &domain.RemoteAPIError{Provider: "nvidia-embedding", StatusCode: 503, Body: "down"},
	}
	svc, docs, vectors := newIngestFixture(t, embedder)
	ctx := context.Background()

	doc, err := svc.IngestUpload(ctx, textUpload("recoverable content"))
	require.Error(t, err)
	assert.Equal(t, domain.StatusFailed, doc.Status)
	assert.Zero(t, vectors.Len())

	// The provider recovers; re-ingestion reuses the stored content and
	// the same document identifier.
	embedder.batchErr = nil
	again, err := svc.ReingestDocument(ctx, "u1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, again.ID)
	assert.Equal(t, domain.StatusIndexed, again.Status)
	assert.Equal(t, doc.ID, again.IndexID)
	assert.Equal(t, 1, vectors.Len())

	stored, err := docs.GetDocument(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusIndexed, stored.Status)

	// Another run overwrites the same vector identifiers.
	_, err = svc.ReingestDocument(ctx, "u1", doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, vectors.Len())
}

func TestReingestDocument_UnknownOrForeignDocument(t *testing.T) {
	svc, _, _ := newIngestFixture(t, &mockEmbedder{})
	ctx := context.Background()

	_, err := svc.ReingestDocument(ctx, "u1", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	doc, err := svc.IngestUpload(ctx, textUpload("owned by u1"))
	require.NoError(t, err)

	_, err = svc.ReingestDocument(ctx, "someone-else", doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReingestDocument_ConcurrentRunsCoalesce(t *testing.T) {
	embedder := &mockEmbedder{
		entered: make(chan struct{}, 4),
		block:   make(chan struct{}),
	}
	svc, docs, vectors := newIngestFixture(t, embedder)
	ctx := context.Background()

	require.NoError(t, docs.SaveDocument(ctx, &domain.Document{
		ID:       "doc-re",
		UserID:   "u1",
		Filename: "notes.txt",
		MimeType: "text/plain",
		Content:  []byte("stored content"),
		Status:   domain.StatusFailed,
	}))

	var wg sync.WaitGroup
	results := make([]*domain.Document, 3)
	errs := make([]error, 3)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.ReingestDocument(ctx, "u1", "doc-re")
		}(i)
	}

	// Hold the pipeline inside the embedding call so the remaining
	// callers join the in-flight run, then release it.
	<-embedder.entered
	time.Sleep(100 * time.Millisecond)
	close(embedder.block)
	wg.Wait()

	for i := range errs {
		require.NoError(t, errs[i], "caller %d", i)
		assert.Equal(t, domain.StatusIndexed, results[i].Status)
	}
	assert.Equal(t, int32(1), embedder.batchCalls.Load())
	assert.Equal(t, 1, vectors.Len())
}
