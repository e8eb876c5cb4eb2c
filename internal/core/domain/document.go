package domain

import (
	"fmt"
	"time"
)

// DocumentStatus tracks a document through the ingestion lifecycle.
// Transitions are PENDING -> INDEXING -> INDEXED or FAILED; the status
// is persisted so clients can poll ingestion progress.
type DocumentStatus string

const (
	// StatusPending means the upload was accepted but indexing has not started.
	StatusPending DocumentStatus = "PENDING"

	// StatusIndexing means the ingestion pipeline is running.
	StatusIndexing DocumentStatus = "INDEXING"

	// StatusIndexed means all chunks were embedded and upserted.
	StatusIndexed DocumentStatus = "INDEXED"

	// StatusFailed means an ingestion step failed. The document can be
	// re-ingested; its vectors are overwritten by identifier.
	StatusFailed DocumentStatus = "FAILED"
)

// Valid reports whether the status is one of the known lifecycle states.
func (s DocumentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusIndexing, StatusIndexed, StatusFailed:
		return true
	}
	return false
}

// Terminal reports whether no further transitions are expected.
func (s DocumentStatus) Terminal() bool {
	return s == StatusIndexed || s == StatusFailed
}

// Document is the persisted record of an uploaded file.
// Only Status and IndexID are written by the ingestion pipeline;
// everything else is fixed at upload time.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// UserID is the owning user. Every vector produced from this
	// document carries the same UserID in its metadata.
	UserID string

	// Filename is the original name of the uploaded file.
	Filename string

	// MimeType is the declared MIME type of the upload.
	MimeType string

	// Size is the upload size in bytes.
	Size int64

	// Content is the raw upload, kept so a failed document can be
	// re-ingested without re-uploading the file.
	Content []byte

	// Status is the current ingestion lifecycle state.
	Status DocumentStatus

	// IndexID groups this document's vectors in the vector index.
	// Set to the document ID once indexing succeeds.
	IndexID string

	// CreatedAt is when the upload was accepted.
	CreatedAt time.Time

	// UpdatedAt is when the document was last modified.
	UpdatedAt time.Time
}

// Chunk is a contiguous window of a document's extracted text.
// Chunks are ephemeral: they exist only between extraction and upsert.
type Chunk struct {
	// DocumentID links to the parent document.
	DocumentID string

	// Text is the chunk content.
	Text string

	// Index is the ordinal position within the document.
	Index int
}

// VectorID returns the identifier under which this chunk's embedding is
// stored. Re-ingesting the same document overwrites the same identifiers.
func (c Chunk) VectorID() string {
	return fmt.Sprintf("%s-chunk-%d", c.DocumentID, c.Index)
}

// Upload carries the raw bytes and metadata of a single uploaded file
// into the ingestion pipeline.
type Upload struct {
	// UserID is the authenticated owner of the upload.
	UserID string

	// Filename is the client-supplied file name.
	Filename string

	// MimeType is the declared content type. Unrecognised types fall
	// back to plain text extraction.
	MimeType string

	// Size is the upload size in bytes.
	Size int64

	// Content is the raw file content.
	Content []byte
}
