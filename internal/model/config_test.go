package model

import (
	"testing"
	"time"
)

func TestDefaultConfig_Validates(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Suggest.Debounce != 700*time.Millisecond {
		t.Errorf("debounce = %v, want 700ms", cfg.Suggest.Debounce)
	}
	if cfg.Store.Key != "flow-v0" {
		t.Errorf("store key = %q, want flow-v0", cfg.Store.Key)
	}
}

func TestConfig_ValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown provider", func(c *Config) { c.LLM.Provider = "eliza" }},
		{"temperature too high", func(c *Config) { c.LLM.Temperature = 3 }},
		{"negative debounce", func(c *Config) { c.Suggest.Debounce = -time.Second }},
		{"zero context window", func(c *Config) { c.Suggest.ContextWindow = 0 }},
		{"cache without dir", func(c *Config) { c.Cache.Dir = "" }},
		{"negative rate", func(c *Config) { c.RateLimit.RequestsPerSecond = -1 }},
		{"unknown store driver", func(c *Config) { c.Store.Driver = "redis" }},
		{"empty store key", func(c *Config) { c.Store.Key = "" }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}
}

func TestConfig_ValidateAccepts(t *testing.T) {
	cfg := DefaultConfig()
	cfg.LLM.Provider = ""
	cfg.Cache.Enabled = false
	cfg.Cache.Dir = ""
	cfg.Store.Driver = StoreDriverSQLite
	if err := cfg.Validate(); err != nil {
		t.Errorf("expected valid config, got %v", err)
	}
}

func TestServerConfig_Address(t *testing.T) {
	if got := (ServerConfig{Host: "0.0.0.0", Port: 9000}).Address(); got != "0.0.0.0:9000" {
		t.Errorf("Address() = %q", got)
	}
}

func TestAnnotation_Len(t *testing.T) {
	if got := (Annotation{Start: 3, End: 8}).Len(); got != 5 {
		t.Errorf("Len() = %d, want 5", got)
	}
}
