// Package respcache stores provider responses keyed by a request
// fingerprint, so repeated or concurrent identical requests reuse prior
// output instead of spending quota and latency on new calls.
package respcache

import (
	"container/list"
	"context"
	"os"
	"strconv"
	"sync"
	"time"
)

// Cache is the response cache contract. Implemented by the in-memory cache
// here (default) and by the SQLite-backed store repo (durable across
// restarts); the backend is selected at configuration time, never mixed
// within one run.
type Cache interface {
	// Get returns the cached response for key, or ok=false if the entry is
	// absent or its expiry has passed.
	Get(ctx context.Context, key string) (string, bool, error)

	// GetStale returns the cached response even if expired. Used as a
	// fallback when the rate limiter denies a fresh call.
	GetStale(ctx context.Context, key string) (string, bool, error)

	// Put stores a response with the given TTL, overwriting any existing
	// entry for the same key and resetting its expiry.
	Put(ctx context.Context, key, response string, ttl time.Duration) error
}

// Config controls the response cache.
type Config struct {
	// Enabled toggles caching entirely. When false the middleware skips
	// the cache and every request goes to the provider.
	Enabled bool

	// Backend selects the store: "memory" (default) or "sqlite" for a
	// cache that survives restarts. One backend per run, never mixed.
	Backend string

	// TTL is the lifetime of a cache entry.
	TTL time.Duration

	// Capacity bounds the number of entries in the memory backend.
	// 0 means unbounded. When set, eviction is least-recently-used by
	// last successful Get.
	Capacity int
}

// DefaultConfig mirrors the platform defaults: caching on, one hour TTL.
func DefaultConfig() Config {
	return Config{
		Enabled:  true,
		Backend:  "memory",
		TTL:      60 * time.Minute,
		Capacity: 1024,
	}
}

// ConfigFromEnv reads NOTAPREP_CACHE, NOTAPREP_CACHE_BACKEND,
// NOTAPREP_CACHE_TTL and NOTAPREP_CACHE_CAPACITY, falling back to defaults
// for unset or invalid values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()
	if v := os.Getenv("NOTAPREP_CACHE"); v != "" {
		cfg.Enabled = v != "off" && v != "false" && v != "0"
	}
	if v := os.Getenv("NOTAPREP_CACHE_BACKEND"); v == "memory" || v == "sqlite" {
		cfg.Backend = v
	}
	if v := os.Getenv("NOTAPREP_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.TTL = d
		}
	}
	if v := os.Getenv("NOTAPREP_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.Capacity = n
		}
	}
	return cfg
}

type entry struct {
	key       string
	response  string
	createdAt time.Time
	expiresAt time.Time
	hits      int
	elem      *list.Element
}

// Memory is a mutex-guarded in-memory cache with lazy expiry and optional
// LRU capacity bounding. Expired entries are retained (capacity permitting)
// so GetStale can serve them as a degraded fallback.
type Memory struct {
	mu       sync.Mutex
	entries  map[string]*entry
	lru      *list.List // front = most recently used
	capacity int
	now      func() time.Time
}

// NewMemory creates an in-memory cache. capacity 0 means unbounded.
func NewMemory(capacity int) *Memory {
	m := &Memory{
		entries:  make(map[string]*entry),
		lru:      list.New(),
		capacity: capacity,
		now:      time.Now,
	}
	return m
}

// Get returns the response for key if present and not expired. A hit
// refreshes the entry's LRU position and hit count.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	if m.now().After(e.expiresAt) {
		// Lazy expiry: the entry stays for GetStale but never serves a
		// fresh read.
		return "", false, nil
	}

	e.hits++
	m.lru.MoveToFront(e.elem)
	return e.response, true, nil
}

// GetStale returns the response for key regardless of expiry.
func (m *Memory) GetStale(_ context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[key]
	if !ok {
		return "", false, nil
	}
	return e.response, true, nil
}

// Put stores a response, overwriting any entry for the same key and
// resetting its expiry. Last writer wins on concurrent puts.
func (m *Memory) Put(_ context.Context, key, response string, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	if e, ok := m.entries[key]; ok {
		e.response = response
		e.createdAt = now
		e.expiresAt = now.Add(ttl)
		m.lru.MoveToFront(e.elem)
		return nil
	}

	e := &entry{
		key:       key,
		response:  response,
		createdAt: now,
		expiresAt: now.Add(ttl),
	}
	e.elem = m.lru.PushFront(e)
	m.entries[key] = e

	if m.capacity > 0 && len(m.entries) > m.capacity {
		m.evictOldest()
	}
	return nil
}

// ExpireAll marks every entry expired without removing it. Fresh reads
// miss afterwards, while GetStale keeps serving the old responses.
func (m *Memory) ExpireAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-time.Nanosecond)
	for _, e := range m.entries {
		e.expiresAt = cutoff
	}
}

// Len returns the number of entries currently held, expired included.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// Sweep removes expired entries and returns how many were reclaimed.
// Optional: the cache works correctly with lazy expiry alone.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			m.lru.Remove(e.elem)
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given interval until the returned stop
// function is called.
func (m *Memory) StartSweeper(interval time.Duration) (stop func()) {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.Sweep()
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}

func (m *Memory) evictOldest() {
	back := m.lru.Back()
	if back == nil {
		return
	}
	e := back.Value.(*entry)
	m.lru.Remove(back)
	delete(m.entries, e.key)
}
