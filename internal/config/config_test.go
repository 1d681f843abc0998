package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
	require.True(t, cfg.ScrapeEnabled)
	require.False(t, cfg.Debug)
	require.Empty(t, cfg.SourcesConfigPath)
	require.Empty(t, cfg.ChatUpstreamURL)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":9999")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("SOURCES_CONFIG_PATH", "/etc/newsweb/sources.yaml")
	t.Setenv("CHAT_UPSTREAM_URL", "http://chat.internal:8081")
	t.Setenv("SCRAPE_ENABLED", "false")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, ":9999", cfg.HTTPAddr)
	require.Equal(t, 5*time.Second, cfg.RequestTimeout)
	require.Equal(t, "/etc/newsweb/sources.yaml", cfg.SourcesConfigPath)
	require.Equal(t, "http://chat.internal:8081", cfg.ChatUpstreamURL)
	require.False(t, cfg.ScrapeEnabled)
	require.True(t, cfg.Debug)
}

func TestLoadIgnoresBadTimeout(t *testing.T) {
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "soon")
	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)

	t.Setenv("REQUEST_TIMEOUT_SECONDS", "-2")
	cfg, err = Load()
	require.NoError(t, err)
	require.Equal(t, 30*time.Second, cfg.RequestTimeout)
}

func TestValidate(t *testing.T) {
	cfg := &Config{HTTPAddr: ":8080", RequestTimeout: time.Second}
	require.NoError(t, cfg.Validate())

	cfg.HTTPAddr = ""
	require.Error(t, cfg.Validate())

	cfg.HTTPAddr = ":8080"
	cfg.RequestTimeout = 0
	require.Error(t, cfg.Validate())
}
