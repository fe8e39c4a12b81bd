package llm

// deepseekModels maps friendly names to DeepSeek model IDs.
var deepseekModels = map[string]string{
	"deepseek-chat":     "deepseek-chat",
	"deepseek-reasoner": "deepseek-reasoner",
}

const deepseekBaseURL = "https://api.deepseek.com/v1"

// NewDeepSeekProvider creates a provider for the DeepSeek API.
// DeepSeek is OpenAI-compatible, so this reuses the OpenAI client with the
// DeepSeek endpoint.
func NewDeepSeekProvider(cfg DeepSeekConfig) (*OpenAIProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = deepseekBaseURL
	}
	return NewOpenAIProvider(OpenAIConfig{
		APIKey:  cfg.APIKey,
		Model:   resolveModel(cfg.Model, deepseekModels),
		BaseURL: baseURL,
	})
}
