// Package common defines shared constants and sentinel errors used across
// client and server layers of the address book. Callers should use errors.Is
// to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound    = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")

	// Service-level errors (generic/internal flow control).
	ErrorInternal         = errors.New("internal error")
	ErrorUnauthorized     = errors.New("unauthorized")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailNotConfirmed  = errors.New("email not confirmed")

	// Validation errors (malformed input).
	ErrValidation = errors.New("validation error")

	// Auth errors (invalid or malformed token, wrong purpose).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired        = errors.New("token expired")
	ErrRefreshTokenRevoked = errors.New("refresh token revoked")

	// External provider errors (email delivery, image host).
	ErrUpstream = errors.New("upstream provider error")

	// Throttling.
	ErrRateLimited = errors.New("rate limited")
)
