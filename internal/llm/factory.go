package llm

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/rainier/internal/cache"
	"github.com/ppiankov/rainier/internal/model"
)

// NewProvider creates a new LLM provider based on configuration.
// An empty provider name returns nil (answering disabled).
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(config.Provider)

	switch provider {
	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "":
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}
}

// Factory hands out one provider per configuration for the life of the process
type Factory struct {
	providers *cache.Memo[Provider]
}

// NewFactory creates an empty provider factory
func NewFactory() *Factory {
	return &Factory{providers: cache.NewMemo[Provider]()}
}

// Provider returns the memoized provider for config, creating it on first use
func (f *Factory) Provider(config Config) (Provider, error) {
	if config.Provider == "" {
		return nil, nil
	}

	key := cache.Key(strings.ToLower(config.Provider), config.Model, config.BaseURL, config.APIKey)
	return f.providers.Get(key, func() (Provider, error) {
		return NewProvider(config)
	})
}

// ConfigFromModel converts model.LLMConfig to llm.Config, filling the API key
// and Ollama URL from the environment when unset
func ConfigFromModel(m model.LLMConfig) Config {
	config := Config{
		Provider:          m.Provider,
		Model:             m.Model,
		APIKey:            m.APIKey,
		BaseURL:           m.BaseURL,
		Timeout:           m.Timeout,
		MaxTokens:         m.MaxTokens,
		RequestsPerSecond: m.RequestsPerSecond,
		BurstSize:         m.BurstSize,
		HTTPProxy:         m.HTTPProxy,
		HTTPSProxy:        m.HTTPSProxy,
		NoProxy:           m.NoProxy,
	}

	if config.APIKey == "" {
		config.APIKey = APIKeyFromEnv(config.Provider)
	}
	if config.BaseURL == "" && strings.EqualFold(config.Provider, "ollama") {
		config.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}

	return config
}

// APIKeyFromEnv returns the conventional API key variable for a provider
func APIKeyFromEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "openai":
		return os.Getenv("OPENAI_API_KEY")
	case "anthropic", "claude":
		return os.Getenv("ANTHROPIC_API_KEY")
	}
	return ""
}
