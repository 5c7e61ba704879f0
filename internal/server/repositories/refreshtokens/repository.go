// Package refreshtokens declares the server-side repository contract for
// managing refresh tokens in persistent storage.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/server/models"
)

// Repository defines operations for issuing, retrieving, and revoking refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID with an expiry of now+validity.
	Create(ctx context.Context, userID string, token string, validity time.Duration) error

	// Consume atomically deletes a refresh token and returns its metadata, so a
	// token can be exchanged at most once. Implementations should return a
	// not-found error when the token is absent.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a refresh token by its token string. Deleting a non-existent
	// token should not be considered an error.
	Delete(ctx context.Context, token string) error

	// DeleteByUser revokes every refresh token of userID and returns how many
	// were removed.
	DeleteByUser(ctx context.Context, userID string) (int64, error)

	// DeleteExpired purges rows whose expiry is before now.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
