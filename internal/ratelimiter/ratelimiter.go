package ratelimiter

import (
	"context"
	"time"
)

// Limiter admits at most a fixed number of requests per key and window.
// When a request is refused, the duration tells the client when to retry.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}
