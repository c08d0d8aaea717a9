package auth

import "belongings/internal/domain/models"

// TokenVerifier validates bearer tokens for the HTTP middleware.
type TokenVerifier interface {
	// VerifyToken validates a JWT and returns its claims.
	// Returns domain.ErrUnauthorized for any invalid, expired or foreign token.
	VerifyToken(tokenString string) (*models.SupabaseClaims, error)

	// Close releases resources held by the verifier.
	Close() error
}
