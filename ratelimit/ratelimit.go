// Package ratelimit implements a fixed-window request counter used to guard
// outbound calls to the geocoding provider. Per-process by design: the
// limiter damps abuse, it is not a hard quota.
package ratelimit

import (
	"sync"
	"time"
)

// Limiter is the interface consumed by the resolver and the geo endpoints.
type Limiter interface {
	// Allow reports whether the client may make another request in the
	// current window and consumes one unit of budget when it may.
	Allow(clientID string) bool
}

// FixedWindow counts requests per client in non-overlapping windows.
// Safe for concurrent use.
type FixedWindow struct {
	maxRequests int
	window      time.Duration
	now         func() time.Time

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	windowStart time.Time
	count       int
}

// Option configures a FixedWindow.
type Option func(*FixedWindow)

// WithClock injects a time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(fw *FixedWindow) { fw.now = now }
}

// New creates a FixedWindow allowing maxRequests per window per client.
func New(maxRequests int, window time.Duration, opts ...Option) *FixedWindow {
	fw := &FixedWindow{
		maxRequests: maxRequests,
		window:      window,
		now:         time.Now,
		buckets:     make(map[string]*bucket),
	}

	for _, opt := range opts {
		opt(fw)
	}

	return fw
}

// Allow implements Limiter.
func (fw *FixedWindow) Allow(clientID string) bool {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	now := fw.now()

	b, ok := fw.buckets[clientID]
	if !ok || now.Sub(b.windowStart) >= fw.window {
		fw.buckets[clientID] = &bucket{windowStart: now, count: 1}
		fw.maybeSweep(now)

		return true
	}

	if b.count >= fw.maxRequests {
		return false
	}

	b.count++

	return true
}

// Remaining returns the budget left for the client in the current window.
func (fw *FixedWindow) Remaining(clientID string) int {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	b, ok := fw.buckets[clientID]
	if !ok || fw.now().Sub(b.windowStart) >= fw.window {
		return fw.maxRequests
	}

	if left := fw.maxRequests - b.count; left > 0 {
		return left
	}

	return 0
}

// maybeSweep drops expired buckets so the map does not grow without bound.
// Called with the lock held.
func (fw *FixedWindow) maybeSweep(now time.Time) {
	if len(fw.buckets) < 4096 {
		return
	}

	for id, b := range fw.buckets {
		if now.Sub(b.windowStart) >= fw.window {
			delete(fw.buckets, id)
		}
	}
}
