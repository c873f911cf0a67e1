package config

import (
	"testing"
	"time"
)

func TestLoadService_Defaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "DRAFTMILL_API_TOKEN", "ANTHROPIC_API_KEY", "ANTHROPIC_MODEL",
		"WORKER_COUNT", "MAX_QUEUE_SIZE", "MAX_UPLOAD_BYTES", "TASK_TTL",
		"CLEANUP_INTERVAL", "LLM_TIMEOUT", "LOG_LEVEL",
	} {
		t.Setenv(key, "")
	}

	cfg := LoadService()

	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 4 {
		t.Errorf("expected 4 workers, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected queue size 100, got %d", cfg.MaxQueueSize)
	}
	if cfg.MaxUploadBytes != 10485760 {
		t.Errorf("expected 10MB upload cap, got %d", cfg.MaxUploadBytes)
	}
	if cfg.TaskTTL != time.Hour {
		t.Errorf("expected 1h task TTL, got %v", cfg.TaskTTL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("expected info log level, got %q", cfg.LogLevel)
	}
	if cfg.LLMEnabled() {
		t.Error("LLM should be disabled without an API key")
	}
}

func TestLoadService_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("WORKER_COUNT", "8")
	t.Setenv("TASK_TTL", "30m")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg := LoadService()

	if cfg.Port != "9000" {
		t.Errorf("expected port 9000, got %q", cfg.Port)
	}
	if cfg.WorkerCount != 8 {
		t.Errorf("expected 8 workers, got %d", cfg.WorkerCount)
	}
	if cfg.TaskTTL != 30*time.Minute {
		t.Errorf("expected 30m task TTL, got %v", cfg.TaskTTL)
	}
	if !cfg.LLMEnabled() {
		t.Error("LLM should be enabled with an API key")
	}
}

func TestLoadService_BadValuesFallBack(t *testing.T) {
	t.Setenv("WORKER_COUNT", "not-a-number")
	t.Setenv("MAX_QUEUE_SIZE", "-5")
	t.Setenv("TASK_TTL", "soon")

	cfg := LoadService()

	if cfg.WorkerCount != 4 {
		t.Errorf("expected fallback worker count 4, got %d", cfg.WorkerCount)
	}
	if cfg.MaxQueueSize != 100 {
		t.Errorf("expected fallback queue size 100, got %d", cfg.MaxQueueSize)
	}
	if cfg.TaskTTL != time.Hour {
		t.Errorf("expected fallback task TTL 1h, got %v", cfg.TaskTTL)
	}
}

func TestServiceValidate_LogLevel(t *testing.T) {
	cfg := Service{LogLevel: "info"}
	if err := cfg.Validate(); err != nil {
		t.Errorf("info should be valid: %v", err)
	}

	cfg.LogLevel = "verbose"
	if err := cfg.Validate(); err == nil {
		t.Error("expected unknown log level to be rejected")
	}
}
