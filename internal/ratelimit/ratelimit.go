// Package ratelimit provides sliding window rate limiting with a
// local in-memory backend and a Redis backend for multi-instance
// deployments.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Decision is the outcome of one rate limit check.
type Decision struct {
	Allowed    bool          `json:"allowed"`
	Count      int           `json:"count"`
	Limit      int           `json:"limit"`
	Remaining  int           `json:"remaining"`
	RetryAfter time.Duration `json:"retry_after"`
}

// Limiter answers whether a keyed caller may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (*Decision, error)
	Reset(ctx context.Context, key string) error
	Close() error
}

// Config holds the shared limiter settings.
type Config struct {
	// Limit is the number of requests allowed per Window.
	Limit  int
	Window time.Duration
}

// DefaultConfig allows 120 requests per minute.
func DefaultConfig() Config {
	return Config{Limit: 120, Window: time.Minute}
}

func (c Config) normalized() Config {
	if c.Limit <= 0 {
		c.Limit = DefaultConfig().Limit
	}
	if c.Window <= 0 {
		c.Window = DefaultConfig().Window
	}
	return c
}

// LocalLimiter is an in-memory sliding window limiter. Each key keeps
// the timestamps of its requests inside the window.
type LocalLimiter struct {
	mu      sync.Mutex
	config  Config
	windows map[string][]time.Time
	now     func() time.Time
}

// NewLocalLimiter creates an in-memory limiter.
func NewLocalLimiter(config Config) *LocalLimiter {
	return &LocalLimiter{
		config:  config.normalized(),
		windows: make(map[string][]time.Time),
		now:     time.Now,
	}
}

// Allow records the request when under the limit and reports the
// decision.
func (l *LocalLimiter) Allow(ctx context.Context, key string) (*Decision, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	windowStart := now.Add(-l.config.Window)

	// Drop expired timestamps in place.
	requests := l.windows[key]
	kept := requests[:0]
	for _, t := range requests {
		if t.After(windowStart) {
			kept = append(kept, t)
		}
	}

	decision := &Decision{
		Count: len(kept),
		Limit: l.config.Limit,
	}

	if len(kept) < l.config.Limit {
		kept = append(kept, now)
		decision.Allowed = true
		decision.Count = len(kept)
	} else {
		// Retry once the oldest request in the window ages out.
		decision.RetryAfter = kept[0].Add(l.config.Window).Sub(now)
		if decision.RetryAfter < 0 {
			decision.RetryAfter = 0
		}
	}

	decision.Remaining = l.config.Limit - decision.Count
	if decision.Remaining < 0 {
		decision.Remaining = 0
	}

	if len(kept) == 0 {
		delete(l.windows, key)
	} else {
		l.windows[key] = kept
	}
	return decision, nil
}

// Reset clears the window for a key.
func (l *LocalLimiter) Reset(ctx context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.windows, key)
	return nil
}

// Close releases nothing for the local limiter.
func (l *LocalLimiter) Close() error {
	return nil
}
