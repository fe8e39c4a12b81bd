package llm

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/notaprep/notaprep/internal/respcache"
)

// CacheProvider is a decorator that serves repeated requests from the
// response cache. On a hit no downstream call is made, so cache hits never
// consume rate-limit budget. On a miss the inner provider is called and a
// fully received response is stored. When the inner call is throttled or
// the provider is unreachable, an expired entry is served as a stale
// fallback if one exists.
type CacheProvider struct {
	inner Provider
	cache respcache.Cache
	ttl   time.Duration
}

// WithCache wraps a Provider with response caching.
func WithCache(p Provider, cache respcache.Cache, ttl time.Duration) Provider {
	return &CacheProvider{inner: p, cache: cache, ttl: ttl}
}

func (c *CacheProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	key := c.fingerprint(ctx, req)

	if cached, ok, err := c.cache.Get(ctx, key); err == nil && ok {
		return &Response{
			Content:    json.RawMessage(cached),
			Model:      c.inner.ModelID(),
			StopReason: "end",
			Cached:     true,
		}, nil
	}

	resp, err := c.inner.Generate(ctx, req)
	if err != nil {
		if stale := c.staleFallback(ctx, key, err); stale != nil {
			return stale, nil
		}
		return nil, err
	}

	// Put only after a fully received response: an abandoned or failed call
	// never leaves a partial entry. A failed write degrades to uncached
	// operation.
	_ = c.cache.Put(ctx, key, string(resp.Content), c.ttl)
	return resp, nil
}

func (c *CacheProvider) ModelID() string {
	return c.inner.ModelID()
}

// staleFallback serves an expired entry when the failure is one a reused
// prior answer can paper over: local throttling, provider-side throttling,
// or an unreachable provider. Schema-invalid responses and timeouts on
// requests we never answered before get no fallback.
func (c *CacheProvider) staleFallback(ctx context.Context, key string, genErr error) *Response {
	var throttled *ErrThrottled
	var rateLimited *ErrRateLimit
	var unavailable *ErrProviderUnavailable
	var timeout *ErrTimeout
	if !errors.As(genErr, &throttled) && !errors.As(genErr, &rateLimited) &&
		!errors.As(genErr, &unavailable) && !errors.As(genErr, &timeout) {
		return nil
	}

	stale, ok, err := c.cache.GetStale(ctx, key)
	if err != nil || !ok {
		return nil
	}
	return &Response{
		Content:    json.RawMessage(stale),
		Model:      c.inner.ModelID(),
		StopReason: "end",
		Cached:     true,
		Stale:      true,
	}
}

func (c *CacheProvider) fingerprint(ctx context.Context, req Request) string {
	msgs := make([]string, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, string(m.Role)+":"+m.Content)
	}
	schemaName := ""
	if req.Schema != nil {
		schemaName = req.Schema.Name
	}
	return respcache.Fingerprint(respcache.KeyInput{
		Model:       c.inner.ModelID(),
		Purpose:     PurposeFrom(ctx),
		System:      req.System,
		Messages:    msgs,
		SchemaName:  schemaName,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	})
}
