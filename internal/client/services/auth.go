// Package services contains application services for the address book CLI.
// This file defines the authentication service: account flows against the
// API and the locally persisted session.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/dmitrijs2005/addressbook/internal/client/client"
	"github.com/dmitrijs2005/addressbook/internal/client/models"
	"github.com/dmitrijs2005/addressbook/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/dbx"
)

// AuthService defines authentication operations for the CLI.
//
// Contract:
//   - Login: authenticate and persist the session (email + refresh token).
//   - Resume: restore a persisted session by rotating its refresh token.
//   - Logout: revoke the session on the server and wipe it locally.
//   - Register, VerifyEmail, ResendVerification, RequestPasswordReset and
//     ResetPassword proxy the matching API calls.
//   - Me, UploadAvatar: current account operations.
//
// All methods honor context cancellation/timeouts.
type AuthService interface {
	Register(ctx context.Context, email string, password []byte, userName string) (*models.User, error)
	Login(ctx context.Context, email string, password []byte) error
	Resume(ctx context.Context) (string, error)
	Logout(ctx context.Context) error
	VerifyEmail(ctx context.Context, token string) (string, error)
	ResendVerification(ctx context.Context, email string) (string, error)
	RequestPasswordReset(ctx context.Context, email string) (string, error)
	ResetPassword(ctx context.Context, token string, newPassword []byte) (string, error)
	Me(ctx context.Context) (*models.User, error)
	UploadAvatar(ctx context.Context, path string) (*models.User, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// maxAvatarSize mirrors the server side upload limit.
const maxAvatarSize = 5 << 20

// authService is the concrete AuthService backed by a remote Client
// and a local SQL database for the session.
type authService struct {
	client client.Client
	db     *sql.DB
}

// NewAuthService constructs an AuthService bound to the given API client and
// DB. Every token pair the client receives is written to the session store.
func NewAuthService(c client.Client, db *sql.DB) AuthService {
	s := &authService{client: c, db: db}
	c.OnTokens(s.persistRefreshToken)
	return s
}

func (a *authService) getMetadataRepo(db dbx.DBTX) metadata.Repository {
	return metadata.NewSQLiteRepository(db)
}

func (a *authService) persistRefreshToken(tp models.TokenPair) {
	// Best effort.
	_ = a.getMetadataRepo(a.db).Set(context.Background(), metadata.KeyRefreshToken, tp.RefreshToken)
}

func (a *authService) Register(ctx context.Context, email string, password []byte, userName string) (*models.User, error) {
	return a.client.Register(ctx, email, string(password), userName)
}

// Login authenticates against the server and saves the session.
func (a *authService) Login(ctx context.Context, email string, password []byte) error {
	tp, err := a.client.Login(ctx, email, string(password))
	if err != nil {
		return fmt.Errorf("login error: %w", err)
	}

	if err := a.saveSession(ctx, email, tp.RefreshToken); err != nil {
		return fmt.Errorf("session saving error: %w", err)
	}
	return nil
}

// saveSession persists email and refresh token in a single transaction.
func (a *authService) saveSession(ctx context.Context, email, refreshToken string) error {
	return dbx.WithTx(ctx, a.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := a.getMetadataRepo(tx)
		if err := repo.Set(ctx, metadata.KeyEmail, email); err != nil {
			return err
		}
		return repo.Set(ctx, metadata.KeyRefreshToken, refreshToken)
	})
}

// Resume restores the saved session and returns its email. It returns
// client.ErrNotLoggedIn when nothing is saved. A session the server rejects
// is wiped.
func (a *authService) Resume(ctx context.Context) (string, error) {
	repo := a.getMetadataRepo(a.db)

	email, err := repo.Get(ctx, metadata.KeyEmail)
	if errors.Is(err, common.ErrorNotFound) {
		return "", client.ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}
	refresh, err := repo.Get(ctx, metadata.KeyRefreshToken)
	if errors.Is(err, common.ErrorNotFound) {
		return "", client.ErrNotLoggedIn
	}
	if err != nil {
		return "", err
	}

	a.client.SetTokens("", refresh)
	if _, err := a.client.Refresh(ctx); err != nil {
		if isSessionRejected(err) {
			a.client.SetTokens("", "")
			_ = repo.Clear(ctx)
		}
		return "", err
	}
	return email, nil
}

// isSessionRejected reports whether err means the refresh token is no longer
// accepted, as opposed to a transient failure.
func isSessionRejected(err error) bool {
	return errors.Is(err, common.ErrInvalidToken) ||
		errors.Is(err, common.ErrTokenExpired) ||
		errors.Is(err, common.ErrorUnauthorized)
}

// Logout revokes the session on the server and wipes it locally. The local
// session is wiped even when the server call fails.
func (a *authService) Logout(ctx context.Context) error {
	serverErr := a.client.Logout(ctx)

	if err := a.getMetadataRepo(a.db).Clear(ctx); err != nil {
		return err
	}
	if serverErr != nil && !isSessionRejected(serverErr) {
		return serverErr
	}
	return nil
}

func (a *authService) VerifyEmail(ctx context.Context, token string) (string, error) {
	return a.client.VerifyEmail(ctx, token)
}

func (a *authService) ResendVerification(ctx context.Context, email string) (string, error) {
	return a.client.RequestEmail(ctx, email)
}

func (a *authService) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	return a.client.RequestPasswordReset(ctx, email)
}

func (a *authService) ResetPassword(ctx context.Context, token string, newPassword []byte) (string, error) {
	return a.client.ResetPassword(ctx, token, string(newPassword))
}

func (a *authService) Me(ctx context.Context) (*models.User, error) {
	return a.client.Me(ctx)
}

// UploadAvatar reads the image at path and uploads it.
func (a *authService) UploadAvatar(ctx context.Context, path string) (*models.User, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, fmt.Errorf("read avatar: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: avatar file is empty", common.ErrValidation)
	}
	if len(data) > maxAvatarSize {
		return nil, fmt.Errorf("%w: avatar exceeds %d bytes", common.ErrValidation, maxAvatarSize)
	}
	return a.client.UploadAvatar(ctx, path, data)
}

// Ping proxies a liveness check to the underlying client.
func (a *authService) Ping(ctx context.Context) error {
	return a.client.Ping(ctx)
}

// Close releases resources held by the client and the session store.
func (a *authService) Close(ctx context.Context) error {
	return errors.Join(a.client.Close(), a.db.Close())
}
