package llm

import (
	"fmt"
	"strings"
)

// NewProvider creates a new completion provider based on configuration
func NewProvider(config Config) (Provider, error) {
	var (
		p   Provider
		err error
	)

	// p stays nil on error; a typed nil must not escape as a Provider
	switch strings.ToLower(config.Provider) {
	case "gemini", "google":
		var g *GeminiProvider
		if g, err = NewGeminiProvider(config); err == nil {
			p = g
		}

	case "openai":
		var o *OpenAIProvider
		if o, err = NewOpenAIProvider(config); err == nil {
			p = o
		}

	case "anthropic", "claude":
		var a *AnthropicProvider
		if a, err = NewAnthropicProvider(config); err == nil {
			p = a
		}

	case "ollama":
		var o *OllamaProvider
		if o, err = NewOllamaProvider(config); err == nil {
			p = o
		}

	case "":
		// No provider configured - suggestions disabled
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: gemini, openai, anthropic, ollama)", config.Provider)
	}

	if err != nil {
		return nil, err
	}
	return p, nil
}

// APIKeyEnv returns the conventional environment variable holding the provider's key
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "gemini", "google":
		return "GEMINI_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}
