package extractors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_ForMIME(t *testing.T) {
	r := NewDefaultRegistry()

	tests := []struct {
		name     string
		mimeType string
		wantPDF  bool
	}{
		{"pdf", "application/pdf", true},
		{"plain text", "text/plain", false},
		{"text with charset", "text/plain; charset=utf-8", false},
		{"unknown falls back to plaintext", "application/octet-stream", false},
		{"empty falls back to plaintext", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := r.ForMIME(tt.mimeType)
			require.NotNil(t, e)
			_, isPDF := e.(*PDF)
			assert.Equal(t, tt.wantPDF, isPDF)
		})
	}
}

func TestPlainText_Extract(t *testing.T) {
	e := NewPlainText()

	text, err := e.Extract(context.Background(), []byte("hello world"))
	require.NoError(t, err)
	assert.Equal(t, "hello world", text)
}

func TestPDF_Extract_InvalidData(t *testing.T) {
	e := NewPDF()

	_, err := e.Extract(context.Background(), []byte("not a pdf"))
	assert.Error(t, err)
}
