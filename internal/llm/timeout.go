package llm

import (
	"context"
	"errors"
	"time"
)

// TimeoutProvider is a decorator that bounds each outbound call with a
// deadline. Expiry surfaces as *ErrTimeout; the abandoned call produces no
// response, so nothing partial ever reaches the cache.
type TimeoutProvider struct {
	inner   Provider
	timeout time.Duration
}

// WithTimeout wraps a Provider with a per-call deadline.
func WithTimeout(p Provider, timeout time.Duration) Provider {
	return &TimeoutProvider{inner: p, timeout: timeout}
}

func (t *TimeoutProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	if t.timeout <= 0 {
		return t.inner.Generate(ctx, req)
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	resp, err := t.inner.Generate(ctx, req)
	if err != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, &ErrTimeout{Err: err}
	}
	return resp, err
}

func (t *TimeoutProvider) ModelID() string {
	return t.inner.ModelID()
}
