package extractors

import (
	"mime"
	"strings"

	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// Ensure Registry implements the interface.
var _ driven.ExtractorRegistry = (*Registry)(nil)

// Registry routes uploads to extractors by MIME type.
type Registry struct {
	byMIME   map[string]driven.TextExtractor
	fallback driven.TextExtractor
}

// NewRegistry creates a registry with the given fallback extractor.
func NewRegistry(fallback driven.TextExtractor) *Registry {
	return &Registry{
		byMIME:   make(map[string]driven.TextExtractor),
		fallback: fallback,
	}
}

// NewDefaultRegistry creates a registry with the PDF extractor
// registered and plain text as the fallback.
func NewDefaultRegistry() *Registry {
	plaintext := NewPlainText()
	r := NewRegistry(plaintext)
	r.Register(plaintext)
	r.Register(NewPDF())
	return r
}

// Register adds an extractor for all of its supported MIME types.
func (r *Registry) Register(e driven.TextExtractor) {
	for _, mt := range e.SupportedMIMETypes() {
		r.byMIME[mt] = e
	}
}

// ForMIME returns the extractor for the given MIME type. Parameters
// such as "; charset=utf-8" are stripped before lookup. Unknown types
// get the fallback, never nil.
func (r *Registry) ForMIME(mimeType string) driven.TextExtractor {
	mediaType, _, err := mime.ParseMediaType(mimeType)
	if err != nil {
		mediaType = strings.ToLower(strings.TrimSpace(mimeType))
	}
	if e, ok := r.byMIME[mediaType]; ok {
		return e
	}
	return r.fallback
}
