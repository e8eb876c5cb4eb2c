package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrUnauthorized indicates the request carries no valid session.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNoFile indicates an upload request without a file part.
	ErrNoFile = errors.New("no file provided")

	// ErrEmptyMessage indicates a chat request without message content.
	ErrEmptyMessage = errors.New("no message content found")

	// ErrEmptyContent indicates a document whose extracted text is empty
	// after trimming whitespace. The document is marked FAILED. The exact
	// string is part of the upload error contract; clients match on it.
	ErrEmptyContent = errors.New("Empty document content")

	// ErrNoChunks indicates the chunker produced nothing for a
	// non-empty document. Treated as an ingestion failure.
	ErrNoChunks = errors.New("could not generate chunks from document")

	// ErrEmbeddingCountMismatch indicates the embedding provider returned
	// a different number of vectors than texts sent. Silently accepting
	// this would misalign chunk-to-vector identifiers.
	ErrEmbeddingCountMismatch = errors.New("mismatch between number of chunks and embeddings")

	// ErrInvalidChunking indicates overlap >= chunk size, which would
	// make the chunker advance by zero or less.
	ErrInvalidChunking = errors.New("chunk overlap must be smaller than chunk size")

	// ErrNotConfigured indicates a required configuration value is missing.
	// Surfaces at process start, not at first use.
	ErrNotConfigured = errors.New("required configuration missing")
)

// RemoteAPIError reports a non-success response from a downstream
// provider (embedding, vector store or chat completion). It keeps the
// upstream status and body for diagnosis.
type RemoteAPIError struct {
	Provider   string
	StatusCode int
	Body       string
}

// Error implements the error interface.
func (e *RemoteAPIError) Error() string {
	return fmt.Sprintf("%s error (status %d): %s", e.Provider, e.StatusCode, e.Body)
}

// AsRemoteAPIError unwraps err into a RemoteAPIError if it is one.
func AsRemoteAPIError(err error) (*RemoteAPIError, bool) {
	var apiErr *RemoteAPIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}
