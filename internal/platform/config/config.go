package config

import (
	"fmt"
	"log/slog"
	"os"
	"time"
)

// Config holds the deployment-provided service configuration.
type Config struct {
	Port string

	// StorageBackend selects "memory" or "postgres".
	StorageBackend string
	DatabaseURL    string

	LogLevel slog.Level

	ShutdownTimeout time.Duration
}

// LoadFromEnv reads configuration from the environment, applying defaults
// that make local and test behavior predictable.
func LoadFromEnv() (Config, error) {
	cfg := Config{
		Port:            getenv("PORT", "8080"),
		StorageBackend:  getenv("STORAGE_BACKEND", "memory"),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		LogLevel:        slog.LevelInfo,
		ShutdownTimeout: 10 * time.Second,
	}

	switch cfg.StorageBackend {
	case "memory":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("STORAGE_BACKEND=postgres requires DATABASE_URL")
		}
	default:
		return Config{}, fmt.Errorf("unknown STORAGE_BACKEND %q (want memory or postgres)", cfg.StorageBackend)
	}

	if v := os.Getenv("LOG_LEVEL"); v != "" {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(v)); err != nil {
			return Config{}, fmt.Errorf("LOG_LEVEL must be debug, info, warn or error: %w", err)
		}
		cfg.LogLevel = lvl
	}
	if v := os.Getenv("SHUTDOWN_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return Config{}, fmt.Errorf("SHUTDOWN_TIMEOUT must be a duration (e.g. 10s): %w", err)
		}
		cfg.ShutdownTimeout = d
	}

	return cfg, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}
