// Package llm talks to external text-completion services. Every failure on
// this boundary is reported as an error by providers and turned into "no
// suggestion" by Completer.
package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/ppiankov/flow/internal/model"
)

var (
	// ErrMissingAPIKey means the provider cannot be used without a credential
	ErrMissingAPIKey = errors.New("API key is required")

	// ErrEmptyResponse means the service answered without any candidate text
	ErrEmptyResponse = errors.New("no candidate in response")
)

// Provider defines the interface for completion providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete asks the model for a short continuation of the context
	Complete(ctx context.Context, req CompleteRequest) (*CompleteResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompleteRequest contains the input for a continuation
type CompleteRequest struct {
	// ContextText is the trailing window of the document
	ContextText string

	// Prompt overrides the default prompt built from ContextText
	Prompt string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature overrides the configured sampling temperature when set
	Temperature *float64
}

// CompleteResponse contains the raw, unsanitized candidate
type CompleteResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "gemini", "openai", "anthropic", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float64

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Timeout:     15,
		MaxTokens:   120,
		Temperature: 0.6,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		HTTPProxy:   c.HTTPProxy,
		HTTPSProxy:  c.HTTPSProxy,
		NoProxy:     c.NoProxy,
	}
}

// systemPrompt frames the model as an unobtrusive continuation engine
const systemPrompt = "You are a quiet writing assistant. Continue the user's text with ONE concise sentence."

// BuildPrompt constructs the default continuation prompt
func BuildPrompt(contextText string) string {
	return fmt.Sprintf("%s\nRules: respond with only the continuation text, no quotes, no explanations. Keep it short.\nText: %s", systemPrompt, contextText)
}

// resolved holds per-request values after falling back to configuration
type resolved struct {
	prompt      string
	model       string
	maxTokens   int
	temperature float64
}

func resolve(req CompleteRequest, config Config, defaultModel string) resolved {
	r := resolved{
		prompt:      req.Prompt,
		model:       req.Model,
		maxTokens:   req.MaxTokens,
		temperature: config.Temperature,
	}
	if r.prompt == "" {
		r.prompt = BuildPrompt(req.ContextText)
	}
	if r.model == "" {
		r.model = config.Model
	}
	if r.model == "" {
		r.model = defaultModel
	}
	if r.maxTokens == 0 {
		r.maxTokens = config.MaxTokens
	}
	if r.maxTokens == 0 {
		r.maxTokens = 120
	}
	if req.Temperature != nil {
		r.temperature = *req.Temperature
	}
	return r
}
