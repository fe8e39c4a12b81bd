package store

import (
	"context"
	"database/sql"
	"time"
)

// CacheRepo is the durable response cache backed by the response_cache
// table. Satisfies respcache.Cache; selected instead of the in-memory cache
// when responses should survive restarts. Expired rows are kept until Sweep
// so they can serve as stale fallbacks.
type CacheRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewCacheRepo creates a cache repo over the given database.
func NewCacheRepo(db *sql.DB) *CacheRepo {
	return &CacheRepo{db: db, now: time.Now}
}

// Get returns the cached response for key if present and not expired. A hit
// bumps the row's hit counter.
func (r *CacheRepo) Get(ctx context.Context, key string) (string, bool, error) {
	var response string
	var expiresAt time.Time
	err := r.db.QueryRowContext(ctx,
		"SELECT response, expires_at FROM response_cache WHERE key = ?", key).
		Scan(&response, &expiresAt)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if r.now().After(expiresAt) {
		return "", false, nil
	}

	if _, err := r.db.ExecContext(ctx,
		"UPDATE response_cache SET hits = hits + 1 WHERE key = ?", key); err != nil {
		return "", false, err
	}
	return response, true, nil
}

// GetStale returns the cached response for key regardless of expiry.
func (r *CacheRepo) GetStale(ctx context.Context, key string) (string, bool, error) {
	var response string
	err := r.db.QueryRowContext(ctx,
		"SELECT response FROM response_cache WHERE key = ?", key).
		Scan(&response)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return response, true, nil
}

// Put stores a response, replacing any entry for the same key and resetting
// its expiry and hit count.
func (r *CacheRepo) Put(ctx context.Context, key, response string, ttl time.Duration) error {
	now := r.now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO response_cache (key, response, created_at, expires_at, hits)
		VALUES (?, ?, ?, ?, 0)
		ON CONFLICT(key) DO UPDATE SET
			response = excluded.response,
			created_at = excluded.created_at,
			expires_at = excluded.expires_at,
			hits = 0`,
		key, response, now, now.Add(ttl))
	return err
}

// Sweep deletes expired rows and returns how many were removed.
func (r *CacheRepo) Sweep(ctx context.Context) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM response_cache WHERE expires_at < ?", r.now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
