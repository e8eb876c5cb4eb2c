package driven

import "context"

// TextExtractor turns raw upload bytes into plain text.
// Each extractor handles a set of MIME types; a registry routes by
// MIME type and falls back to plain text decoding for unknown formats.
type TextExtractor interface {
	// SupportedMIMETypes returns the MIME types this extractor handles.
	SupportedMIMETypes() []string

	// Extract returns the text content of the document.
	Extract(ctx context.Context, data []byte) (string, error)
}

// ExtractorRegistry selects an extractor for an upload's MIME type.
type ExtractorRegistry interface {
	// ForMIME returns the extractor for the given MIME type.
	// Never returns nil: unknown types get the plain text fallback.
	ForMIME(mimeType string) TextExtractor
}
