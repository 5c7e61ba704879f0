package services

import (
	"context"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/server/models"
)

// Mailer delivers account emails. token is the raw signed token; the
// implementation decides how to turn it into a link.
type Mailer interface {
	SendVerificationEmail(ctx context.Context, to, name, token string) error
	SendPasswordResetEmail(ctx context.Context, to, name, token string) error
}

// UserCache holds recently read users. Get returns common.ErrorNotFound on a miss.
type UserCache interface {
	Get(ctx context.Context, id string) (*models.User, error)
	Set(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
}

// ResetTokenStore remembers the single outstanding password reset token of
// each user. Consume atomically removes it when it matches token and returns
// common.ErrorNotFound otherwise.
type ResetTokenStore interface {
	Save(ctx context.Context, userID, token string, ttl time.Duration) error
	Consume(ctx context.Context, userID, token string) error
}

// AvatarStorage puts an image under key on the image host and returns its
// public URL.
type AvatarStorage interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}
