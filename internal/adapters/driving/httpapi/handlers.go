package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/logger"
)

// chatRequest is the POST /chat body.
type chatRequest struct {
	Messages []domain.ChatMessage `json:"messages"`
}

// documentResponse is the wire form of a document record.
type documentResponse struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mimetype"`
	Size      int64  `json:"size"`
	Status    string `json:"status"`
	IndexID   string `json:"indexId,omitempty"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toDocumentResponse(doc *domain.Document) documentResponse {
	return documentResponse{
		ID:        doc.ID,
		Filename:  doc.Filename,
		MimeType:  doc.MimeType,
		Size:      doc.Size,
		Status:    string(doc.Status),
		IndexID:   doc.IndexID,
		CreatedAt: doc.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt: doc.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

// handleChat runs one retrieval-augmented turn and streams the
// completion as plain text fragments.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, fmt.Errorf("%w: invalid request body", domain.ErrEmptyMessage))
		return
	}

	events, err := s.chat.Respond(r.Context(), userID(r), req.Messages)
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	w.WriteHeader(http.StatusOK)

	flusher, canFlush := w.(http.Flusher)
	for ev := range events {
		if ev.Err != nil {
			// Headers are already sent; the best we can do is abort.
			logger.Error("chat stream aborted: %v", ev.Err)
			return
		}
		if _, err := io.WriteString(w, ev.Token); err != nil {
			return
		}
		if canFlush {
			flusher.Flush()
		}
	}
}

// handleUpload accepts one multipart file and ingests it synchronously.
// The response carries the document in its terminal status.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadSize)
	if err := r.ParseMultipartForm(s.maxUploadSize); err != nil {
		writeError(w, fmt.Errorf("%w: %v", domain.ErrNoFile, err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, domain.ErrNoFile)
		return
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, fmt.Errorf("reading upload: %w", err))
		return
	}

	mimeType := header.Header.Get("Content-Type")
	doc, err := s.ingest.IngestUpload(r.Context(), domain.Upload{
		UserID:   userID(r),
		Filename: header.Filename,
		MimeType: mimeType,
		Size:     header.Size,
		Content:  content,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"document": toDocumentResponse(doc),
	})
}

// handleReingest re-runs ingestion for one of the caller's documents,
// typically after a FAILED attempt. Vectors are overwritten in place.
func (s *Server) handleReingest(w http.ResponseWriter, r *http.Request) {
	doc, err := s.ingest.ReingestDocument(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"success":  true,
		"document": toDocumentResponse(doc),
	})
}

// handleListDocuments returns the caller's documents, newest first.
func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	docs, err := s.docs.ListByUser(r.Context(), userID(r))
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]documentResponse, len(docs))
	for i := range docs {
		out[i] = toDocumentResponse(&docs[i])
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"documents": out})
}

// handleGetDocument returns one document, for status polling.
// Documents owned by other users are reported as not found.
func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.GetDocument(r.Context(), r.PathValue("id"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			writeError(w, domain.ErrNotFound)
			return
		}
		writeError(w, err)
		return
	}
	if doc.UserID != userID(r) {
		writeError(w, domain.ErrNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"document": toDocumentResponse(doc)})
}
