package httpapi

import (
	"context"
	"net/http"
	"strings"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

// contextKey is a private type for request context values.
type contextKey int

const userIDKey contextKey = iota

// userID returns the authenticated user from the request context.
func userID(r *http.Request) string {
	id, _ := r.Context().Value(userIDKey).(string)
	return id
}

// requireSession rejects requests without a valid bearer token before
// any handler side effect runs, and stores the user ID in the context.
func requireSession(verifier driven.SessionVerifier, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			writeError(w, domain.ErrUnauthorized)
			return
		}

		id, err := verifier.Verify(r.Context(), token)
		if err != nil {
			writeError(w, domain.ErrUnauthorized)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, id)
		next(w, r.WithContext(ctx))
	}
}
