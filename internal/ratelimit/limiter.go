// Package ratelimit bounds outbound provider calls per fixed time window.
// Denial is a normal outcome: callers fall back to a stale cache entry or a
// degraded result rather than treating it as a failure.
package ratelimit

import (
	"os"
	"strconv"
	"sync"
	"time"
)

// Config controls the limiter.
type Config struct {
	// Ceiling is the maximum number of admitted calls per window per scope.
	Ceiling int

	// Window is the duration of the counting window.
	Window time.Duration
}

// DefaultConfig mirrors the platform default of 30 calls per minute.
func DefaultConfig() Config {
	return Config{
		Ceiling: 30,
		Window:  time.Minute,
	}
}

// ConfigFromEnv reads NOTAPREP_RATE_CEILING and NOTAPREP_RATE_WINDOW,
// falling back to defaults for unset or invalid values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("NOTAPREP_RATE_CEILING"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Ceiling = n
		}
	}
	if v := os.Getenv("NOTAPREP_RATE_WINDOW"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Window = d
		}
	}
	return cfg
}

type window struct {
	start time.Time
	count int
}

// Limiter is a fixed-window call counter, one window per scope. Safe for
// concurrent use: the window reset and the admission check happen under a
// single lock hold, so no admission is ever lost or double-counted.
type Limiter struct {
	mu      sync.Mutex
	cfg     Config
	windows map[string]*window
	now     func() time.Time
}

// New creates a Limiter with the given config.
func New(cfg Config) *Limiter {
	return &Limiter{
		cfg:     cfg,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow reports whether a call in the given scope is admitted. Admission
// increments the window counter; denial consumes no budget. When the active
// window has elapsed, it resets atomically with the check.
func (l *Limiter) Allow(scope string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[scope]
	if !ok || now.Sub(w.start) >= l.cfg.Window {
		w = &window{start: now}
		l.windows[scope] = w
	}

	if w.count >= l.cfg.Ceiling {
		return false
	}
	w.count++
	return true
}

// RetryAfter returns how long until the scope's active window resets.
// Zero when the scope has no active window.
func (l *Limiter) RetryAfter(scope string) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[scope]
	if !ok {
		return 0
	}
	remaining := l.cfg.Window - l.now().Sub(w.start)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Remaining returns how many admissions are left in the scope's active
// window. A scope with no window (or an elapsed one) has the full ceiling.
func (l *Limiter) Remaining(scope string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	w, ok := l.windows[scope]
	if !ok || l.now().Sub(w.start) >= l.cfg.Window {
		return l.cfg.Ceiling
	}
	left := l.cfg.Ceiling - w.count
	if left < 0 {
		return 0
	}
	return left
}
