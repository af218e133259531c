package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

// Limiter is the sliding-window budget shared by the per-user interaction
// middleware and the spam heuristic; key carries the consumer prefix
// ("interaction:" or "spam:") plus the user id.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded indicates the rate limit has been reached for the key.
// Implementations may return it alongside a non-nil Result.
var ErrLimitExceeded = errors.New("rate limit exceeded")
