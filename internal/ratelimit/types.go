package ratelimit

import (
	"context"
	"time"
)

// Result describes the outcome of a throttle check.
type Result struct {
	Allowed   bool
	Remaining int
	Reset     time.Time
}

// Limiter counts hits per key inside one-second windows.
type Limiter interface {
	Allow(ctx context.Context, key string, limit int, now time.Time) (Result, error)
}
