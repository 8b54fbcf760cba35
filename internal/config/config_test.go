package config

import (
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.ModelName != "gemini-2.5-flash" {
		t.Errorf("ModelName = %q, want gemini-2.5-flash", cfg.ModelName)
	}
	if cfg.QueueSize != 100 {
		t.Errorf("QueueSize = %d, want 100", cfg.QueueSize)
	}
	if cfg.Workers != 5 {
		t.Errorf("Workers = %d, want 5", cfg.Workers)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("BRAIN_PORT", "9090")
	t.Setenv("BRAIN_DATABASE_URL", "postgres://localhost:5432/brain")
	t.Setenv("BRAIN_MODEL_NAME", "gemini-2.5-pro")
	t.Setenv("BRAIN_QUEUE_SIZE", "10")
	t.Setenv("BRAIN_WORKERS", "2")
	t.Setenv("BRAIN_API_KEY", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/brain" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
	if cfg.ModelName != "gemini-2.5-pro" {
		t.Errorf("ModelName = %q, want gemini-2.5-pro", cfg.ModelName)
	}
	if cfg.QueueSize != 10 {
		t.Errorf("QueueSize = %d, want 10", cfg.QueueSize)
	}
	if cfg.Workers != 2 {
		t.Errorf("Workers = %d, want 2", cfg.Workers)
	}
	if cfg.APIKey != "secret" {
		t.Errorf("APIKey = %q, want secret", cfg.APIKey)
	}
}
