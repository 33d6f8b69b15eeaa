package llm

import (
	"context"
	"fmt"

	"github.com/teemow/inboxflow/internal/config"
)

// New creates the provider client selected by the settings. The settings
// must have been validated; a missing key still fails here with a clear
// error.
func New(ctx context.Context, cfg config.Settings) (Client, error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.ModelName)
	case config.ProviderAnthropic:
		return NewAnthropicClient(cfg.AnthropicAPIKey, cfg.ModelName)
	case config.ProviderGemini:
		return NewGeminiClient(ctx, cfg.GoogleAPIKey, cfg.ModelName)
	case config.ProviderGrok:
		return NewGrokClient(cfg.GrokAPIKey, cfg.ModelName)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}
}
