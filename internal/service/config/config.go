package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	HTTPPort        string // PORT
	APIKey          string // API_KEY, empty disables auth
	MaxSectionDepth int    // EPI_MAX_SECTION_DEPTH, 0 selects the built-in default
	LogLevel        string // LOG_LEVEL
	LogFormat       string // LOG_FORMAT
}

func NewConfigFromEnv() (Config, error) {
	cfg := Config{
		HTTPPort:  envOr("PORT", "8080"),
		APIKey:    os.Getenv("API_KEY"),
		LogLevel:  envOr("LOG_LEVEL", "info"),
		LogFormat: envOr("LOG_FORMAT", "json"),
	}

	if raw := os.Getenv("EPI_MAX_SECTION_DEPTH"); raw != "" {
		depth, err := strconv.Atoi(raw)
		if err != nil || depth <= 0 {
			return Config{}, fmt.Errorf("EPI_MAX_SECTION_DEPTH: %q is not a positive integer", raw)
		}
		cfg.MaxSectionDepth = depth
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
