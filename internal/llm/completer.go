package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppiankov/flow/internal/cache"
	"github.com/ppiankov/flow/internal/suggest"
	"github.com/ppiankov/flow/internal/worker"
)

// Completer turns the document into at most one sanitized suggestion.
// It never returns an error: a missing credential, transport failure, bad
// response or rejected candidate all mean "no suggestion this round".
type Completer struct {
	provider   Provider
	config     Config
	cache      cache.Cache
	cacheTTL   time.Duration
	limiter    *worker.Limiter
	windowSize int
	logger     zerolog.Logger
}

// CompleterOption configures a Completer
type CompleterOption func(*Completer)

// WithCache stores accepted candidates keyed by context window
func WithCache(c cache.Cache, ttl time.Duration) CompleterOption {
	return func(cp *Completer) {
		cp.cache = c
		cp.cacheTTL = ttl
	}
}

// WithLimiter bounds outgoing requests per provider
func WithLimiter(l *worker.Limiter) CompleterOption {
	return func(cp *Completer) {
		cp.limiter = l
	}
}

// WithContextWindow sets how many trailing characters are sent to the provider
func WithContextWindow(size int) CompleterOption {
	return func(cp *Completer) {
		cp.windowSize = size
	}
}

// WithLogger sets the logger used for rejected or failed requests
func WithLogger(l zerolog.Logger) CompleterOption {
	return func(cp *Completer) {
		cp.logger = l
	}
}

// NewCompleter creates a completer for the configured provider.
// A provider without its API key leaves the completer disabled rather than failing.
func NewCompleter(config Config, opts ...CompleterOption) (*Completer, error) {
	provider, err := NewProvider(config)
	if err != nil && !errors.Is(err, ErrMissingAPIKey) {
		return nil, fmt.Errorf("create provider: %w", err)
	}

	c := NewCompleterWithProvider(provider, config, opts...)
	if err != nil {
		c.logger.Warn().Err(err).Str("provider", config.Provider).Msg("suggestions disabled")
	}
	return c, nil
}

// NewCompleterWithProvider wires an already constructed provider
func NewCompleterWithProvider(provider Provider, config Config, opts ...CompleterOption) *Completer {
	c := &Completer{
		provider:   provider,
		config:     config,
		windowSize: suggest.ContextWindowSize,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsEnabled returns true if a provider is configured
func (c *Completer) IsEnabled() bool {
	return c.provider != nil
}

// ProviderName returns the configured provider name, or "" when disabled
func (c *Completer) ProviderName() string {
	if c.provider == nil {
		return ""
	}
	return c.provider.Name()
}

// IsAvailable checks that the provider can be reached
func (c *Completer) IsAvailable(ctx context.Context) bool {
	return c.provider != nil && c.provider.IsAvailable(ctx)
}

// Suggest requests a continuation of text. Only the trailing context window
// is sent. The second return value is false when there is nothing to show.
func (c *Completer) Suggest(ctx context.Context, text string) (string, bool) {
	contextText := suggest.ContextWindow(text, c.windowSize)
	if strings.TrimSpace(contextText) == "" || c.provider == nil {
		return "", false
	}

	key := cache.SuggestionKey(c.provider.Name(), c.config.Model, contextText)
	if c.cache != nil {
		if hit, ok := c.cache.Get(key); ok {
			return string(hit), true
		}
	}

	if c.limiter != nil && !c.limiter.Allow(c.provider.Name()) {
		c.logger.Debug().Str("provider", c.provider.Name()).Msg("rate limited, waiting")
		if err := c.limiter.Wait(ctx, c.provider.Name()); err != nil {
			c.logger.Debug().Err(err).Msg("rate limit wait aborted")
			return "", false
		}
	}

	resp, err := c.provider.Complete(ctx, CompleteRequest{ContextText: contextText})
	if err != nil {
		c.logger.Debug().Err(err).Str("provider", c.provider.Name()).Msg("completion failed")
		return "", false
	}

	candidate, err := suggest.Check(resp.Text, contextText)
	if err != nil {
		c.logger.Debug().Err(err).Str("raw", resp.Text).Msg("candidate rejected")
		return "", false
	}

	if c.cache != nil {
		if err := c.cache.Set(key, []byte(candidate), c.cacheTTL); err != nil {
			c.logger.Debug().Err(err).Msg("cache write failed")
		}
	}

	c.logger.Debug().
		Str("provider", c.provider.Name()).
		Str("model", resp.Model).
		Int("tokens", resp.TokensUsed).
		Msg("suggestion ready")

	return candidate, true
}
