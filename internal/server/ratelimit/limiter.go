// Package ratelimit counts requests per key (route plus client identity) and
// decides whether the next one may proceed.
package ratelimit

import (
	"context"
	"time"
)

// Result is the outcome of a single Allow call.
type Result struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits at most limit requests per window for each key. A limit of
// zero or less disables limiting.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (Result, error)
}
