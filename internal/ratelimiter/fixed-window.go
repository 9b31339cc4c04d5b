package ratelimiter

import (
	"context"
	"sync"
	"time"
)

type clientWindow struct {
	start time.Time
	count int
}

type FixedWindowRateLimiter struct {
	sync.Mutex
	clients map[string]*clientWindow
	limit   int
	window  time.Duration
	now     func() time.Time
}

var _ Limiter = (*FixedWindowRateLimiter)(nil)

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	return &FixedWindowRateLimiter{
		clients: make(map[string]*clientWindow),
		limit:   limit,
		window:  window,
		now:     time.Now,
	}
}

// Cleanup drops expired windows every period until ctx is done.
func (rl *FixedWindowRateLimiter) Cleanup(ctx context.Context) error {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			rl.Lock()
			now := rl.now()
			for key, w := range rl.clients {
				if now.Sub(w.start) >= rl.window {
					delete(rl.clients, key)
				}
			}
			rl.Unlock()
		}
	}
}

func (rl *FixedWindowRateLimiter) Allow(ctx context.Context, key string) (bool, time.Duration, error) {
	rl.Lock()
	defer rl.Unlock()

	now := rl.now()
	w, exists := rl.clients[key]
	if !exists || now.Sub(w.start) >= rl.window {
		rl.clients[key] = &clientWindow{start: now, count: 1}
		return true, 0, nil
	}

	if w.count < rl.limit {
		w.count++
		return true, 0, nil
	}

	return false, w.start.Add(rl.window).Sub(now), nil
}
