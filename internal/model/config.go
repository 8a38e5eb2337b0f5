package model

import (
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Config holds the complete Flow configuration
type Config struct {
	LLM       LLMConfig       `yaml:"llm" mapstructure:"llm"`
	Suggest   SuggestConfig   `yaml:"suggest" mapstructure:"suggest"`
	Cache     CacheConfig     `yaml:"cache" mapstructure:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	Server    ServerConfig    `yaml:"server" mapstructure:"server"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the external completion service
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // gemini, openai, anthropic, ollama, "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float64 `yaml:"temperature" mapstructure:"temperature"`
	HTTPProxy   string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// SuggestConfig controls when and how suggestions are requested
type SuggestConfig struct {
	Debounce      time.Duration `yaml:"debounce" mapstructure:"debounce"`
	ContextWindow int           `yaml:"context_window" mapstructure:"context_window"`
}

// CacheConfig controls the suggestion cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// RateLimitConfig bounds outgoing completion requests per provider
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	Burst             int     `yaml:"burst" mapstructure:"burst"`
}

// StoreConfig selects where the document snapshot is persisted
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // file, sqlite
	Path   string `yaml:"path" mapstructure:"path"`
	Key    string `yaml:"key" mapstructure:"key"`
}

// ServerConfig configures the HTTP surface
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// Address returns host:port
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LogConfig configures logging
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// Store drivers
const (
	StoreDriverFile   = "file"
	StoreDriverSQLite = "sqlite"
)

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "gemini",
			Model:       "gemini-1.5-flash",
			Timeout:     15,
			MaxTokens:   120,
			Temperature: 0.6,
		},
		Suggest: SuggestConfig{
			Debounce:      700 * time.Millisecond,
			ContextWindow: 300,
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       ".flow-cache",
			MemoryTTL: 10 * time.Minute,
			DiskTTL:   24 * time.Hour,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 2,
			Burst:             2,
		},
		Store: StoreConfig{
			Driver: StoreDriverFile,
			Path:   ".flow",
			Key:    "flow-v0",
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8787,
		},
		Log: LogConfig{
			Level: "warn",
		},
	}
}

// Validate checks the configuration for values the runtime cannot work with
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LLM),
		validation.Field(&c.Suggest),
		validation.Field(&c.Cache),
		validation.Field(&c.RateLimit),
		validation.Field(&c.Store),
		validation.Field(&c.Server),
		validation.Field(&c.Log),
	)
}

func (c LLMConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Provider, validation.In("", "gemini", "google", "openai", "anthropic", "claude", "ollama")),
		validation.Field(&c.Timeout, validation.Min(0)),
		validation.Field(&c.MaxTokens, validation.Min(0)),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
	)
}

func (c SuggestConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Debounce, validation.Min(time.Duration(0))),
		validation.Field(&c.ContextWindow, validation.Required, validation.Min(1)),
	)
}

func (c CacheConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Dir, validation.When(c.Enabled, validation.Required)),
	)
}

func (c RateLimitConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.RequestsPerSecond, validation.Min(0.0)),
		validation.Field(&c.Burst, validation.Min(0)),
	)
}

func (c StoreConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Driver, validation.Required, validation.In(StoreDriverFile, StoreDriverSQLite)),
		validation.Field(&c.Path, validation.Required),
		validation.Field(&c.Key, validation.Required),
	)
}

func (c ServerConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

func (c LogConfig) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Level, validation.In("trace", "debug", "info", "warn", "error", "disabled")),
	)
}
