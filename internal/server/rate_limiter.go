package server

import (
	"sync"
	"time"
)

// maxTrackedKeys bounds the window map so a webhook replay storm spread over
// many source addresses cannot grow it forever.
const maxTrackedKeys = 10000

// rateLimiter throttles webhook ingress with a fixed window per
// provider+client key. Windows reset lazily on the next Allow.
type rateLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	windows map[string]*rateWindow
}

type rateWindow struct {
	openedAt time.Time
	hits     int
}

func newRateLimiter(limit int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		limit:   limit,
		window:  window,
		windows: make(map[string]*rateWindow),
	}
}

func (r *rateLimiter) Allow(key string) bool {
	if key == "" {
		return false
	}

	now := time.Now().UTC()
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.windows) > maxTrackedKeys {
		r.prune(now)
	}

	w := r.windows[key]
	if w == nil || now.Sub(w.openedAt) > r.window {
		w = &rateWindow{openedAt: now}
		r.windows[key] = w
	}

	if w.hits >= r.limit {
		return false
	}

	w.hits++
	return true
}

func (r *rateLimiter) prune(now time.Time) {
	for key, w := range r.windows {
		if now.Sub(w.openedAt) > r.window {
			delete(r.windows, key)
		}
	}
}
