// Package auth verifies bearer session tokens.
package auth

import (
	"context"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/docuchat/docuchat/internal/core/domain"
	"github.com/docuchat/docuchat/internal/core/ports/driven"
)

var _ driven.SessionVerifier = (*JWTVerifier)(nil)

// JWTVerifier validates HMAC-signed session tokens and extracts the
// user identity from the subject claim.
type JWTVerifier struct {
	secret []byte
}

// NewJWTVerifier creates a verifier for tokens signed with the given
// shared secret. An empty secret is a configuration error.
func NewJWTVerifier(secret string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, fmt.Errorf("auth: session secret: %w", domain.ErrNotConfigured)
	}
	return &JWTVerifier{secret: []byte(secret)}, nil
}

// Verify parses and validates the token and returns the user ID from
// the subject claim. Any validation failure maps to ErrUnauthorized so
// callers never leak parser details to clients.
func (v *JWTVerifier) Verify(_ context.Context, token string) (string, error) {
	if token == "" {
		return "", domain.ErrUnauthorized
	}

	parsed, err := jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return v.secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrUnauthorized, err)
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: missing subject claim", domain.ErrUnauthorized)
	}
	return subject, nil
}
