package ai

import (
	"errors"
	"fmt"

	"github.com/hrygo/calassist/internal/profile"
)

// DefaultSystemPrompt frames every general chat reply.
const DefaultSystemPrompt = "You are a smart calendar assistant. Extract date, time, and purpose and confirm the booking."

// LLMConfig represents chat model configuration.
type LLMConfig struct {
	Provider     string // openai, deepseek, ollama
	Model        string // gpt-4o-mini
	APIKey       string
	BaseURL      string
	MaxTokens    int     // default: 2048
	Temperature  float32 // 0 is sent as deterministic sampling
	SystemPrompt string
}

// defaultBaseURLs maps providers to their OpenAI-compatible endpoints.
var defaultBaseURLs = map[string]string{
	"openai":   "https://api.openai.com/v1",
	"deepseek": "https://api.deepseek.com/v1",
	"ollama":   "http://localhost:11434/v1",
}

// NewConfigFromProfile creates chat model config from profile.
func NewConfigFromProfile(p *profile.Profile) *LLMConfig {
	cfg := &LLMConfig{
		Provider:     p.LLMProvider,
		Model:        p.LLMModel,
		APIKey:       p.LLMAPIKey,
		BaseURL:      p.LLMBaseURL,
		MaxTokens:    p.LLMMaxTokens,
		Temperature:  p.LLMTemperature,
		SystemPrompt: DefaultSystemPrompt,
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURLs[cfg.Provider]
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = 2048
	}

	return cfg
}

// Validate validates the configuration.
func (c *LLMConfig) Validate() error {
	if c.Provider == "" {
		return errors.New("LLM provider is required")
	}
	if _, ok := defaultBaseURLs[c.Provider]; !ok {
		return fmt.Errorf("unsupported LLM provider: %s", c.Provider)
	}
	if c.Model == "" {
		return errors.New("LLM model is required")
	}
	if c.Provider != "ollama" && c.APIKey == "" {
		return errors.New("LLM API key is required")
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		return fmt.Errorf("LLM temperature must be within [0, 2], got %v", c.Temperature)
	}
	return nil
}
