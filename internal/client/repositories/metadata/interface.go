// Package metadata persists the CLI session as key/value pairs in SQLite.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeyEmail        = "email"
	KeyRefreshToken = "refresh_token"
)

// Repository stores string values by key. Get reports common.ErrorNotFound
// for absent keys.
type Repository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
	Delete(ctx context.Context, key string) error
	Clear(ctx context.Context) error
}
