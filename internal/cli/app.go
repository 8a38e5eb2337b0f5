package cli

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/ppiankov/flow/internal/cache"
	"github.com/ppiankov/flow/internal/llm"
	"github.com/ppiankov/flow/internal/model"
	"github.com/ppiankov/flow/internal/session"
	"github.com/ppiankov/flow/internal/store"
	"github.com/ppiankov/flow/internal/worker"
)

// memoryCleanupInterval is how often expired in-memory cache entries are purged
const memoryCleanupInterval = 5 * time.Minute

// newCompleter builds the suggestion client with cache and rate limiting
func newCompleter(cfg *model.Config, logger zerolog.Logger) (*llm.Completer, error) {
	opts := []llm.CompleterOption{
		llm.WithContextWindow(cfg.Suggest.ContextWindow),
		llm.WithLimiter(worker.NewLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)),
		llm.WithLogger(logger.With().Str("component", "llm").Logger()),
	}

	if cfg.Cache.Enabled {
		layered := cache.NewLayered(
			cache.NewMemoryCache(cfg.Cache.MemoryTTL, memoryCleanupInterval),
			cache.NewDiskCache(cfg.Cache.Dir, cfg.Cache.DiskTTL),
		)
		opts = append(opts, llm.WithCache(layered, cfg.Cache.DiskTTL))
	}

	completer, err := llm.NewCompleter(llm.ConfigFromModel(cfg.LLM), opts...)
	if err != nil {
		return nil, fmt.Errorf("create completer: %w", err)
	}
	return completer, nil
}

// openStore opens the configured persistence backend
func openStore(cfg *model.Config, logger zerolog.Logger) (*store.Store, error) {
	kv, err := store.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	return store.New(kv, cfg.Store.Key, logger.With().Str("component", "store").Logger()), nil
}

// openDocument restores the stored document into a controller.
// suggester may be nil for commands that never request suggestions.
func openDocument(cfg *model.Config, suggester session.Suggester) (*session.Controller, *store.Store, error) {
	st, err := openStore(cfg, log.Logger)
	if err != nil {
		return nil, nil, err
	}

	doc := session.New(suggester, st,
		session.WithDebounce(cfg.Suggest.Debounce),
		session.WithLogger(log.Logger.With().Str("component", "session").Logger()),
	)
	doc.Restore()
	return doc, st, nil
}
