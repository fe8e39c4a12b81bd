package llm

import (
	"context"

	"github.com/notaprep/notaprep/internal/ratelimit"
)

// ThrottleProvider is a decorator that checks the local rate limiter before
// every outbound call. A denied call returns *ErrThrottled without reaching
// the provider, so denials consume neither budget nor quota.
type ThrottleProvider struct {
	inner   Provider
	limiter *ratelimit.Limiter
	perUser bool
}

// WithRateLimit wraps a Provider with local rate limiting. When perUser is
// set and the context carries a user id (via WithUser), each user gets an
// independent budget; otherwise the budget is shared per model.
func WithRateLimit(p Provider, limiter *ratelimit.Limiter, perUser bool) Provider {
	return &ThrottleProvider{inner: p, limiter: limiter, perUser: perUser}
}

func (t *ThrottleProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	scope := t.scope(ctx)
	if !t.limiter.Allow(scope) {
		return nil, &ErrThrottled{
			Scope:      scope,
			RetryAfter: t.limiter.RetryAfter(scope),
		}
	}
	return t.inner.Generate(ctx, req)
}

func (t *ThrottleProvider) ModelID() string {
	return t.inner.ModelID()
}

func (t *ThrottleProvider) scope(ctx context.Context) string {
	scope := t.inner.ModelID()
	if t.perUser {
		if user := UserFrom(ctx); user != "" {
			scope += ":" + user
		}
	}
	return scope
}
