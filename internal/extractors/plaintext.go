package extractors

import (
	"context"

	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// Ensure PlainText implements the interface.
var _ driven.TextExtractor = (*PlainText)(nil)

// PlainText decodes upload bytes as UTF-8 text.
// It doubles as the fallback for unrecognised MIME types.
type PlainText struct{}

// NewPlainText creates a plain text extractor.
func NewPlainText() *PlainText {
	return &PlainText{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *PlainText) SupportedMIMETypes() []string {
	return []string{
		"text/plain",
		"text/markdown",
		"text/csv",
		"text/html",
		"application/json",
	}
}

// Extract returns the bytes as a string.
func (e *PlainText) Extract(_ context.Context, data []byte) (string, error) {
	return string(data), nil
}
