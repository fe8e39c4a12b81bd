package llm

import (
	"context"
	"fmt"

	"github.com/notaprep/notaprep/internal/ratelimit"
	"github.com/notaprep/notaprep/internal/respcache"
)

// Deps carries the collaborators the provider middleware is wired with.
// Nil fields disable the corresponding layer.
type Deps struct {
	EventRepo EventRepo
	Cache     respcache.Cache
	CacheCfg  respcache.Config
	Limiter   *ratelimit.Limiter
}

// NewProvider creates a Provider from configuration, wrapped with the full
// middleware chain (outermost first):
//
//	cache → retry → rate limit → logging → timeout → base
//
// The ordering carries the admission semantics: a cache hit never reaches
// the limiter, every retry attempt passes the limiter again, and a throttle
// denial falls back to a stale cache entry when one exists.
func NewProvider(ctx context.Context, cfg Config, deps Deps) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "deepseek":
		base, err = NewDeepSeekProvider(cfg.DeepSeek)
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		base = NewMockProvider()
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := base
	if cfg.Timeout > 0 {
		p = WithTimeout(p, cfg.Timeout)
	}
	if deps.EventRepo != nil {
		p = WithLogging(p, deps.EventRepo)
	}
	if deps.Limiter != nil {
		p = WithRateLimit(p, deps.Limiter, true)
	}
	p = WithRetry(p, cfg.Retry)
	if deps.Cache != nil && deps.CacheCfg.Enabled {
		p = WithCache(p, deps.Cache, deps.CacheCfg.TTL)
	}

	return p, nil
}

// NewProviderFromEnv builds a provider from NOTAPREP_* configuration,
// falling back to probing the standard API key variables when no provider
// is selected explicitly.
func NewProviderFromEnv(ctx context.Context, deps Deps) (Provider, error) {
	cfg := ConfigFromEnv()
	if err := cfg.Validate(); err != nil {
		discovered, ok := DiscoverConfig()
		if !ok {
			return nil, err
		}
		cfg = discovered
	}
	return NewProvider(ctx, cfg, deps)
}
