// Package config loads service configuration from environment variables.
package config

import (
	"fmt"

	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	// Port is the HTTP listen port for the API server.
	// Environment variable: BRAIN_PORT
	Port int `koanf:"BRAIN_PORT"`

	// DatabaseURL is the PostgreSQL connection URL.
	// Environment variable: BRAIN_DATABASE_URL
	DatabaseURL string `koanf:"BRAIN_DATABASE_URL"`

	// ModelName is the Gemini model used for text parsing.
	// Environment variable: BRAIN_MODEL_NAME
	ModelName string `koanf:"BRAIN_MODEL_NAME"`

	// QueueSize is the buffer size of the in-memory job queue.
	// Environment variable: BRAIN_QUEUE_SIZE
	QueueSize int `koanf:"BRAIN_QUEUE_SIZE"`

	// Workers is the number of concurrent job workers.
	// Environment variable: BRAIN_WORKERS
	Workers int `koanf:"BRAIN_WORKERS"`

	// APIKey, when set, is required as a Bearer token on API requests.
	// Environment variable: BRAIN_API_KEY
	APIKey string `koanf:"BRAIN_API_KEY"`
}

// Load reads configuration from the environment and applies defaults.
func Load() (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(env.Provider("BRAIN_", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("Load: failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: true}); err != nil {
		return nil, fmt.Errorf("Load: failed to unmarshal config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.ModelName == "" {
		c.ModelName = "gemini-2.5-flash"
	}
	if c.QueueSize == 0 {
		c.QueueSize = 100
	}
	if c.Workers == 0 {
		c.Workers = 5
	}
}
