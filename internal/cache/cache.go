// Package cache stores sanitized suggestions keyed by the context they were generated from.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache defines the interface for caching
type Cache interface {
	Get(key string) ([]byte, bool)
	Set(key string, value []byte, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// SuggestionKey derives a cache key from the provider, model and context window.
// The same context sent to a different model must not share an entry.
func SuggestionKey(provider, model, contextText string) string {
	h := sha256.New()
	h.Write([]byte(provider))
	h.Write([]byte{0})
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(contextText))
	return "flow:v1:" + hex.EncodeToString(h.Sum(nil))
}
