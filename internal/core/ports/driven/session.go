package driven

import "context"

// SessionVerifier validates session tokens presented by HTTP clients.
// Token issuance (login flows) is an external concern; this port only
// maps a bearer token to the user it belongs to.
type SessionVerifier interface {
	// Verify checks the token and returns the user ID it was issued for.
	// Returns domain.ErrUnauthorized for missing, malformed or expired
	// tokens.
	Verify(ctx context.Context, token string) (string, error)
}
