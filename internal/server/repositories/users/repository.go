// Package users declares and implements persistence for address book accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/addressbook/internal/server/models"
)

type Repository interface {
	// Create inserts user and fills its generated fields. A duplicate email
	// yields common.ErrAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
	UpdateAvatar(ctx context.Context, id string, avatarURL string) (*models.User, error)
	MarkConfirmed(ctx context.Context, id string) error
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
