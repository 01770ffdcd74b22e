package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/strata-ml/strata/store"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.PollInterval != store.DefaultPollInterval {
		t.Errorf("PollInterval = %v, want %v", cfg.PollInterval, store.DefaultPollInterval)
	}
	if cfg.WaitBudget != store.DefaultWaitBudget {
		t.Errorf("WaitBudget = %v, want %v", cfg.WaitBudget, store.DefaultWaitBudget)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0 (one per CPU)", cfg.Workers)
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv(envPollInterval, "250ms")
	t.Setenv(envWaitBudget, "1m")
	t.Setenv(envWorkers, "8")
	t.Setenv(envLogLevel, "debug")

	cfg := Load()

	if cfg.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.PollInterval)
	}
	if cfg.WaitBudget != time.Minute {
		t.Errorf("WaitBudget = %v, want 1m", cfg.WaitBudget)
	}
	if cfg.Workers != 8 {
		t.Errorf("Workers = %d, want 8", cfg.Workers)
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
}

func TestLoadIgnoresMalformedValues(t *testing.T) {
	t.Setenv(envPollInterval, "soon")
	t.Setenv(envWorkers, "-3")

	cfg := Load()

	if cfg.PollInterval != store.DefaultPollInterval {
		t.Errorf("PollInterval = %v, want default", cfg.PollInterval)
	}
	if cfg.Workers != 0 {
		t.Errorf("Workers = %d, want 0", cfg.Workers)
	}
}
