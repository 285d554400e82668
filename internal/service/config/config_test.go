package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "API_KEY", "EPI_MAX_SECTION_DEPTH", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
	}

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Empty(t, cfg.APIKey)
	assert.Zero(t, cfg.MaxSectionDepth)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestNewConfigFromEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("API_KEY", "sekret")
	t.Setenv("EPI_MAX_SECTION_DEPTH", "12")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := NewConfigFromEnv()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, "sekret", cfg.APIKey)
	assert.Equal(t, 12, cfg.MaxSectionDepth)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "text", cfg.LogFormat)
}

func TestNewConfigFromEnvRejectsBadDepth(t *testing.T) {
	for _, raw := range []string{"abc", "0", "-3", "1.5"} {
		t.Setenv("EPI_MAX_SECTION_DEPTH", raw)

		_, err := NewConfigFromEnv()
		require.Error(t, err, raw)
		assert.Contains(t, err.Error(), "EPI_MAX_SECTION_DEPTH")
	}
}
