package driven

import (
	"context"

	"github.com/custodia-labs/sfcc-replicator/internal/core/domain"
)

// AccessTokenProvider issues OAuth access tokens for one client and instance.
type AccessTokenProvider interface {
	Ranked

	// AccessToken returns a valid token for userID, fetching a new one
	// when the cached token is missing or expired.
	AccessToken(ctx context.Context, userID string) (string, error)
}

// TokenStore persists protected tokens.
type TokenStore interface {
	// Get returns the stored value or domain.ErrNotFound.
	Get(ctx context.Context, key domain.TokenKey) (string, error)

	// Put stores or replaces a value.
	Put(ctx context.Context, key domain.TokenKey, value string) error

	// Delete removes a value; deleting a missing key is not an error.
	Delete(ctx context.Context, key domain.TokenKey) error
}

// SecretBox protects values at rest.
type SecretBox interface {
	Seal(plaintext string) (string, error)
	Open(sealed string) (string, error)
}
