// Package httpapi exposes the ingestion and chat pipelines over HTTP.
// Chat completions stream as plain text fragments; everything else is
// JSON.
package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/docuchat/docuchat/internal/core/ports/driven"
	"github.com/docuchat/docuchat/internal/core/ports/driving"
)

// DefaultMaxUploadSize caps multipart upload memory and body size.
const DefaultMaxUploadSize = 32 << 20

// Server holds the HTTP surface and its collaborators.
type Server struct {
	ingest        driving.IngestionService
	chat          driving.ChatService
	docs          driven.DocumentStore
	verifier      driven.SessionVerifier
	maxUploadSize int64
	mux           *http.ServeMux
}

// Config holds the server's collaborators and tunables.
type Config struct {
	Ingest        driving.IngestionService
	Chat          driving.ChatService
	Docs          driven.DocumentStore
	Verifier      driven.SessionVerifier
	MaxUploadSize int64
}

// NewServer wires routes to handlers. All document and chat routes
// require a valid session.
func NewServer(cfg Config) *Server {
	if cfg.MaxUploadSize <= 0 {
		cfg.MaxUploadSize = DefaultMaxUploadSize
	}

	s := &Server{
		ingest:        cfg.Ingest,
		chat:          cfg.Chat,
		docs:          cfg.Docs,
		verifier:      cfg.Verifier,
		maxUploadSize: cfg.MaxUploadSize,
		mux:           http.NewServeMux(),
	}

	s.mux.HandleFunc("POST /chat", requireSession(s.verifier, s.handleChat))
	s.mux.HandleFunc("POST /documents/upload", requireSession(s.verifier, s.handleUpload))
	s.mux.HandleFunc("POST /documents/{id}/reingest", requireSession(s.verifier, s.handleReingest))
	s.mux.HandleFunc("GET /documents", requireSession(s.verifier, s.handleListDocuments))
	s.mux.HandleFunc("GET /documents/{id}", requireSession(s.verifier, s.handleGetDocument))
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
