package extractors

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/ledongthuc/pdf"

	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// Ensure PDF implements the interface.
var _ driven.TextExtractor = (*PDF)(nil)

// PDF extracts plain text from PDF uploads.
type PDF struct{}

// NewPDF creates a PDF extractor.
func NewPDF() *PDF {
	return &PDF{}
}

// SupportedMIMETypes returns the MIME types this extractor handles.
func (e *PDF) SupportedMIMETypes() []string {
	return []string{"application/pdf"}
}

// Extract returns the text content of all pages.
func (e *PDF) Extract(_ context.Context, data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text: %w", err)
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return "", fmt.Errorf("read pdf text: %w", err)
	}

	return string(text), nil
}
