package llm

import (
	"fmt"
	"os"
	"time"
)

// Config holds all provider configuration.
type Config struct {
	// Provider selects which text-generation provider to use.
	// Values: "openai", "deepseek", "anthropic", "gemini", "mock"
	Provider string

	OpenAI    OpenAIConfig
	DeepSeek  DeepSeekConfig
	Anthropic AnthropicConfig
	Gemini    GeminiConfig
	Retry     RetryConfig

	// Timeout is the deadline applied to a single outbound provider call.
	// Expiry surfaces as *ErrTimeout. Default: 30s.
	Timeout time.Duration
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string
	Model   string // Default: "gpt-4o-mini"
	BaseURL string // Optional. Override for compatible APIs.
}

// DeepSeekConfig holds DeepSeek-specific configuration.
// DeepSeek exposes an OpenAI-compatible API.
type DeepSeekConfig struct {
	APIKey  string
	Model   string // Default: "deepseek-chat"
	BaseURL string // Default: "https://api.deepseek.com/v1"
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string
	Model  string // Default: "claude-haiku"
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string
	Model  string // Default: "gemini-flash"
}

// RetryConfig configures retry behavior for transient failures.
type RetryConfig struct {
	MaxAttempts int
	InitialWait time.Duration
	MaxWait     time.Duration
	Multiplier  float64
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Provider: "openai",
		OpenAI: OpenAIConfig{
			Model: "gpt-4o-mini",
		},
		DeepSeek: DeepSeekConfig{
			Model: "deepseek-chat",
		},
		Anthropic: AnthropicConfig{
			Model: "claude-haiku",
		},
		Gemini: GeminiConfig{
			Model: "gemini-flash",
		},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 500 * time.Millisecond,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		Timeout: 30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from environment variables, falling back
// to defaults for unset values.
func ConfigFromEnv() Config {
	cfg := DefaultConfig()

	if p := os.Getenv("NOTAPREP_LLM_PROVIDER"); p != "" {
		cfg.Provider = p
	}

	if k := os.Getenv("NOTAPREP_OPENAI_API_KEY"); k != "" {
		cfg.OpenAI.APIKey = k
	}
	if m := os.Getenv("NOTAPREP_OPENAI_MODEL"); m != "" {
		cfg.OpenAI.Model = m
	}
	if u := os.Getenv("NOTAPREP_OPENAI_BASE_URL"); u != "" {
		cfg.OpenAI.BaseURL = u
	}

	if k := os.Getenv("NOTAPREP_DEEPSEEK_API_KEY"); k != "" {
		cfg.DeepSeek.APIKey = k
	}
	if m := os.Getenv("NOTAPREP_DEEPSEEK_MODEL"); m != "" {
		cfg.DeepSeek.Model = m
	}
	if u := os.Getenv("NOTAPREP_DEEPSEEK_BASE_URL"); u != "" {
		cfg.DeepSeek.BaseURL = u
	}

	if k := os.Getenv("NOTAPREP_ANTHROPIC_API_KEY"); k != "" {
		cfg.Anthropic.APIKey = k
	}
	if m := os.Getenv("NOTAPREP_ANTHROPIC_MODEL"); m != "" {
		cfg.Anthropic.Model = m
	}

	if k := os.Getenv("NOTAPREP_GEMINI_API_KEY"); k != "" {
		cfg.Gemini.APIKey = k
	}
	if m := os.Getenv("NOTAPREP_GEMINI_MODEL"); m != "" {
		cfg.Gemini.Model = m
	}

	if t := os.Getenv("NOTAPREP_LLM_TIMEOUT"); t != "" {
		if d, err := time.ParseDuration(t); err == nil {
			cfg.Timeout = d
		}
	}

	return cfg
}

// DiscoverConfig probes standard API key env vars in priority order
// (OpenAI → DeepSeek → Gemini → Anthropic) and returns a Config for the
// first provider whose key is found. Returns (Config{}, false) if none found.
func DiscoverConfig() (Config, bool) {
	cfg := DefaultConfig()

	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("DEEPSEEK_API_KEY"); k != "" {
		cfg.Provider = "deepseek"
		cfg.DeepSeek.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return cfg, true
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return cfg, true
	}

	return Config{}, false
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("NOTAPREP_OPENAI_API_KEY is required for the openai provider")
		}
	case "deepseek":
		if c.DeepSeek.APIKey == "" {
			return fmt.Errorf("NOTAPREP_DEEPSEEK_API_KEY is required for the deepseek provider")
		}
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("NOTAPREP_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("NOTAPREP_GEMINI_API_KEY is required for the gemini provider")
		}
	case "mock":
		// No API key needed.
	default:
		return fmt.Errorf("unknown provider: %q", c.Provider)
	}
	return nil
}
