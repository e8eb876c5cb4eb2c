// Package chunker splits document text into fixed-size overlapping chunks.
package chunker

import (
	"strings"

	"github.com/docuchat/docuchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = 1000

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = 100

// Chunker produces overlapping fixed-size windows over document text.
// Each chunk after the first starts chunkSize-overlap characters after
// the previous chunk's start; the final chunk ends at the text's end.
type Chunker struct {
	chunkSize int
	overlap   int
}

// Option configures the chunker.
type Option func(*Chunker)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(c *Chunker) {
		if size > 0 {
			c.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(c *Chunker) {
		if overlap >= 0 {
			c.overlap = overlap
		}
	}
}

// New creates a chunker with the given options.
func New(opts ...Option) *Chunker {
	c := &Chunker{
		chunkSize: DefaultChunkSize,
		overlap:   DefaultChunkOverlap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Split chunks the text of a document. It returns domain.ErrEmptyContent
// for text that is empty after trimming whitespace, and
// domain.ErrInvalidChunking when overlap >= chunk size (the advance step
// would be non-positive and the loop would never terminate).
func (c *Chunker) Split(documentID, text string) ([]domain.Chunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, domain.ErrEmptyContent
	}
	if c.overlap >= c.chunkSize {
		return nil, domain.ErrInvalidChunking
	}

	// Window offsets are rune-based so multi-byte text never splits
	// mid-character.
	runes := []rune(text)

	// Text that fits in one window is a single chunk; the overlap rule
	// only applies once a second window is needed.
	if len(runes) <= c.chunkSize {
		return []domain.Chunk{{DocumentID: documentID, Text: text, Index: 0}}, nil
	}

	step := c.chunkSize - c.overlap
	estimated := (len(runes) / step) + 1
	chunks := make([]domain.Chunk, 0, estimated)

	for start, index := 0, 0; start < len(runes); start, index = start+step, index+1 {
		end := start + c.chunkSize
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, domain.Chunk{
			DocumentID: documentID,
			Text:       string(runes[start:end]),
			Index:      index,
		})
	}

	return chunks, nil
}

// ChunkSize returns the configured chunk size.
func (c *Chunker) ChunkSize() int { return c.chunkSize }

// Overlap returns the configured overlap.
func (c *Chunker) Overlap() int { return c.overlap }
