// Package refreshtokens stores server-issued refresh tokens. Tokens are kept
// as SHA-256 digests; the plaintext only ever exists on the wire.
package refreshtokens

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/cryptobulldev/userdash/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Find returns the token's metadata, or common.ErrorNotFound.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete revokes one token. Deleting an absent token is not an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every token issued to userID.
	DeleteByUser(ctx context.Context, userID string) error
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
