package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Supported LLM providers.
const (
	ProviderOpenAI    = "openai"
	ProviderAnthropic = "anthropic"
	ProviderGemini    = "gemini"
	ProviderGrok      = "grok"
)

// Settings holds the application configuration. Values come from the
// environment, optionally seeded from a .env file in the working directory.
type Settings struct {
	// LLM provider configuration
	LLMProvider string

	// API keys, one per provider
	OpenAIAPIKey    string
	AnthropicAPIKey string
	GoogleAPIKey    string
	GrokAPIKey      string

	// Model configuration
	ModelName   string
	Temperature float64
	MaxTokens   int

	// Database
	DatabasePath string

	// HTTP server
	HTTPAddr string
}

// Load reads settings from the environment. A .env file in the working
// directory is applied first when present; real environment variables win.
func Load() Settings {
	// Ignore missing .env: environment-only configuration is fine.
	_ = godotenv.Load()

	return Settings{
		LLMProvider:     getEnvOrDefault("LLM_PROVIDER", ProviderOpenAI),
		OpenAIAPIKey:    os.Getenv("OPENAI_API_KEY"),
		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		GoogleAPIKey:    os.Getenv("GOOGLE_API_KEY"),
		GrokAPIKey:      os.Getenv("GROK_API_KEY"),
		ModelName:       getEnvOrDefault("MODEL_NAME", "gemini-2.0-flash"),
		Temperature:     getEnvFloatOrDefault("TEMPERATURE", 0.7),
		MaxTokens:       getEnvIntOrDefault("MAX_TOKENS", 500),
		DatabasePath:    getEnvOrDefault("DATABASE_PATH", "data/inboxflow.db"),
		HTTPAddr:        getEnvOrDefault("HTTP_ADDR", ":8080"),
	}
}

// APIKey returns the API key for the configured provider.
func (s Settings) APIKey() string {
	switch s.LLMProvider {
	case ProviderOpenAI:
		return s.OpenAIAPIKey
	case ProviderAnthropic:
		return s.AnthropicAPIKey
	case ProviderGemini:
		return s.GoogleAPIKey
	case ProviderGrok:
		return s.GrokAPIKey
	}
	return ""
}

// Validate checks that the selected provider has an API key configured.
func (s Settings) Validate() error {
	switch s.LLMProvider {
	case ProviderOpenAI:
		if s.OpenAIAPIKey == "" {
			return fmt.Errorf("OpenAI API key is required: set OPENAI_API_KEY")
		}
	case ProviderAnthropic:
		if s.AnthropicAPIKey == "" {
			return fmt.Errorf("Anthropic API key is required: set ANTHROPIC_API_KEY")
		}
	case ProviderGemini:
		if s.GoogleAPIKey == "" {
			return fmt.Errorf("Google API key is required: set GOOGLE_API_KEY")
		}
	case ProviderGrok:
		if s.GrokAPIKey == "" {
			return fmt.Errorf("Grok API key is required: set GROK_API_KEY")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s (supported: openai, anthropic, gemini, grok)", s.LLMProvider)
	}
	return nil
}

// getEnvOrDefault returns the value of an environment variable or a default value.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvIntOrDefault returns the int value of an environment variable or a default value.
func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}

// getEnvFloatOrDefault returns the float64 value of an environment variable or a default value.
func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return defaultValue
		}
		return parsed
	}
	return defaultValue
}
