// Package config loads engine tuning from environment variables with
// sensible defaults, for callers that prefer ambient configuration over
// constructing engine.Options by hand.
package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/strata-ml/strata/store"
)

const (
	envPollInterval = "STRATA_POLL_INTERVAL"
	envWaitBudget   = "STRATA_WAIT_BUDGET"
	envWorkers      = "STRATA_WORKERS"
	envLogLevel     = "STRATA_LOG_LEVEL"
)

// Config holds engine tuning loaded from the environment.
type Config struct {
	PollInterval time.Duration
	WaitBudget   time.Duration
	Workers      int
	LogLevel     slog.Level
}

// Load reads configuration from environment variables. Unset or malformed
// values fall back to the defaults. Workers zero means one worker per CPU.
func Load() Config {
	cfg := Config{
		PollInterval: store.DefaultPollInterval,
		WaitBudget:   store.DefaultWaitBudget,
		LogLevel:     slog.LevelInfo,
	}

	if v := os.Getenv(envPollInterval); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.PollInterval = d
		}
	}
	if v := os.Getenv(envWaitBudget); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.WaitBudget = d
		}
	}
	if v := os.Getenv(envWorkers); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Workers = n
		}
	}
	if v := os.Getenv(envLogLevel); v != "" {
		cfg.LogLevel = parseLogLevel(v)
	}

	return cfg
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
