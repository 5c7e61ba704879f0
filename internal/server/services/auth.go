// Package services contains server-side business logic. This file implements
// AuthService, which handles registration, email verification, login,
// issuing/rotating JWTs with server-stored refresh tokens, and password reset.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/addressbook/internal/common"
	"github.com/dmitrijs2005/addressbook/internal/dbx"
	"github.com/dmitrijs2005/addressbook/internal/server/auth"
	"github.com/dmitrijs2005/addressbook/internal/server/config"
	"github.com/dmitrijs2005/addressbook/internal/server/models"
	"github.com/dmitrijs2005/addressbook/internal/server/repositories/repomanager"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService provides authentication-related operations:
// - Register / VerifyEmail / RequestEmail: account creation and confirmation
// - Login / RefreshToken / Logout: token lifecycle
// - RequestPasswordReset / ResetPassword: credential recovery
type AuthService struct {
	db                                *sql.DB
	repomanager                       repomanager.RepositoryManager
	mailer                            Mailer
	resets                            ResetTokenStore
	cache                             UserCache
	jwtSecret                         []byte
	accessTokenValidityDuration       time.Duration
	refreshTokenValidityDuration      time.Duration
	verificationTokenValidityDuration time.Duration
	resetTokenValidityDuration        time.Duration
}

// NewAuthService constructs an AuthService using repositories, collaborators
// and server config.
func NewAuthService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config,
	mailer Mailer, resets ResetTokenStore, cache UserCache) *AuthService {
	return &AuthService{
		db:                                db,
		repomanager:                       m,
		mailer:                            mailer,
		resets:                            resets,
		cache:                             cache,
		jwtSecret:                         []byte(cfg.SecretKey),
		accessTokenValidityDuration:       cfg.AccessTokenValidityDuration,
		refreshTokenValidityDuration:      cfg.RefreshTokenValidityDuration,
		verificationTokenValidityDuration: cfg.VerificationTokenValidityDuration,
		resetTokenValidityDuration:        cfg.ResetTokenValidityDuration,
	}
}

// Register creates an unconfirmed user and emails a verification link. When
// the email cannot be delivered the user is kept and ErrUpstream is returned;
// the client can ask for another email via RequestEmail.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	email = normalizeEmail(email)

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hash,
		UserName:     name,
		AvatarURL:    auth.GravatarURL(email),
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			return nil, fmt.Errorf("account %s: %w", email, common.ErrAlreadyExists)
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	if err := s.sendVerification(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// VerifyEmail confirms the account encoded in token. already is true when the
// account had been confirmed before.
func (s *AuthService) VerifyEmail(ctx context.Context, token string) (already bool, err error) {
	claims, err := auth.ParseToken(token, auth.PurposeEmailVerification, s.jwtSecret)
	if err != nil {
		return false, err
	}

	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByID(ctx, claims.UserID)
	if err != nil {
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}

	if err := repo.MarkConfirmed(ctx, user.ID); err != nil {
		return false, err
	}
	_ = s.cache.Delete(ctx, user.ID)
	return false, nil
}

// RequestEmail re-sends the verification email. Unknown addresses are not
// reported so the endpoint cannot be used to probe for accounts. already is
// true when the account is confirmed and nothing was sent.
func (s *AuthService) RequestEmail(ctx context.Context, email string) (already bool, err error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return false, nil
		}
		return false, err
	}
	if user.Confirmed {
		return true, nil
	}
	return false, s.sendVerification(ctx, user)
}

// Login verifies the password and, for confirmed accounts, returns a new
// TokenPair. Unknown email, wrong password and unconfirmed account all yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*TokenPair, error) {
	repo := s.repomanager.Users(s.db)
	user, err := repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrorInternal
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return nil, common.ErrorInternal
	}
	if !ok {
		return nil, common.ErrInvalidCredentials
	}
	if !user.Confirmed {
		return nil, fmt.Errorf("%w: %w", common.ErrInvalidCredentials, common.ErrEmailNotConfirmed)
	}

	return s.generateTokenPair(ctx, user.ID, s.db)
}

// RefreshToken validates a refresh JWT, consumes its server record and
// returns a fresh TokenPair in one transaction. A correctly signed token
// without a record has already been used or revoked; every session of that
// user is then revoked and ErrRefreshTokenRevoked returned.
func (s *AuthService) RefreshToken(ctx context.Context, refreshToken string) (*TokenPair, error) {
	claims, err := auth.ParseToken(refreshToken, auth.PurposeRefresh, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	var pair *TokenPair
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.RefreshTokens(tx)
		token, err := repoTx.Consume(ctx, refreshToken)
		if err != nil {
			return err
		}
		if token.UserID != claims.UserID {
			return common.ErrInvalidToken
		}
		var genErr error
		pair, genErr = s.generateTokenPair(ctx, token.UserID, tx)
		return genErr
	})

	if errors.Is(err, common.ErrorNotFound) {
		if _, delErr := s.repomanager.RefreshTokens(s.db).DeleteByUser(ctx, claims.UserID); delErr != nil {
			return nil, fmt.Errorf("error revoking refresh tokens: %w", delErr)
		}
		return nil, common.ErrRefreshTokenRevoked
	}
	if err != nil {
		return nil, err
	}
	return pair, nil
}

// Logout forgets the refresh token. Unknown or expired tokens are not an
// error; a token that was not signed by us is.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) error {
	if _, err := auth.ParseToken(refreshToken, auth.PurposeRefresh, s.jwtSecret); err != nil && !errors.Is(err, common.ErrTokenExpired) {
		return err
	}
	if err := s.repomanager.RefreshTokens(s.db).Delete(ctx, refreshToken); err != nil {
		return fmt.Errorf("error deleting refresh token: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a single-use reset token for the account,
// remembers it and emails it.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.repomanager.Users(s.db).GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return err
	}

	token, err := auth.GenerateToken(user.ID, auth.PurposePasswordReset, s.jwtSecret, s.resetTokenValidityDuration)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.resets.Save(ctx, user.ID, token, s.resetTokenValidityDuration); err != nil {
		return fmt.Errorf("error storing reset token: %w", err)
	}
	if err := s.mailer.SendPasswordResetEmail(ctx, user.Email, user.UserName, token); err != nil {
		return fmt.Errorf("%w: send password reset email: %v", common.ErrUpstream, err)
	}
	return nil
}

// ResetPassword sets a new password when token is the outstanding reset token
// of its user. All refresh tokens of the user are revoked.
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	claims, err := auth.ParseToken(token, auth.PurposePasswordReset, s.jwtSecret)
	if err != nil {
		return err
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrValidation, err)
	}

	if err := s.resets.Consume(ctx, claims.UserID, token); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrInvalidToken
		}
		return fmt.Errorf("error consuming reset token: %w", err)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.Users(tx).UpdatePassword(ctx, claims.UserID, hash); err != nil {
			return err
		}
		_, err := s.repomanager.RefreshTokens(tx).DeleteByUser(ctx, claims.UserID)
		return err
	})
	if err != nil {
		return err
	}

	_ = s.cache.Delete(ctx, claims.UserID)
	return nil
}

// --- helpers below ---

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) sendVerification(ctx context.Context, u *models.User) error {
	token, err := auth.GenerateToken(u.ID, auth.PurposeEmailVerification, s.jwtSecret, s.verificationTokenValidityDuration)
	if err != nil {
		return common.ErrorInternal
	}
	if err := s.mailer.SendVerificationEmail(ctx, u.Email, u.UserName, token); err != nil {
		return fmt.Errorf("%w: send verification email: %v", common.ErrUpstream, err)
	}
	return nil
}

func (s *AuthService) generateTokenPair(ctx context.Context, userID string, tx dbx.DBTX) (*TokenPair, error) {
	access, err := auth.GenerateToken(userID, auth.PurposeAccess, s.jwtSecret, s.accessTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refresh, err := auth.GenerateToken(userID, auth.PurposeRefresh, s.jwtSecret, s.refreshTokenValidityDuration)
	if err != nil {
		return nil, common.ErrorInternal
	}
	refreshRepo := s.repomanager.RefreshTokens(tx)
	if err := refreshRepo.Create(ctx, userID, refresh, s.refreshTokenValidityDuration); err != nil {
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
