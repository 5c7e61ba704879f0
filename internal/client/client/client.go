package client

import (
	"context"

	"github.com/dmitrijs2005/addressbook/internal/client/models"
)

// Client is the address book API surface used by the CLI services.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	SetTokens(access, refresh string)
	Tokens() (access, refresh string)
	OnTokens(fn func(models.TokenPair))

	Register(ctx context.Context, email, password, userName string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.TokenPair, error)
	Refresh(ctx context.Context) (*models.TokenPair, error)
	Logout(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) (string, error)
	RequestEmail(ctx context.Context, email string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token, newPassword string) (string, error)

	Me(ctx context.Context) (*models.User, error)
	UploadAvatar(ctx context.Context, fileName string, data []byte) (*models.User, error)

	ListContacts(ctx context.Context, q models.ContactQuery) ([]models.Contact, error)
	CreateContact(ctx context.Context, in models.ContactInput) (*models.Contact, error)
	GetContact(ctx context.Context, id int64) (*models.Contact, error)
	UpdateContact(ctx context.Context, id int64, in models.ContactInput) (*models.Contact, error)
	DeleteContact(ctx context.Context, id int64) error
	UpcomingBirthdays(ctx context.Context, days int) ([]models.Birthday, error)
}
