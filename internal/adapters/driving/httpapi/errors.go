package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/logger"
)

// errorResponse is the JSON error payload for every non-success response.
type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps a domain error to an HTTP status and writes the JSON
// payload. Unclassified errors become 500 with their message exposed;
// upstream status and body ride along inside RemoteAPIError messages.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrNoFile),
		errors.Is(err, domain.ErrEmptyMessage):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed: %v", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorResponse{Error: err.Error()})
}
