package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// HTTP settings
	HTTPAddr       string
	RequestTimeout time.Duration

	// Catalog settings
	SourcesConfigPath string // optional YAML; built-in sources when empty
	TopicsConfigPath  string // optional YAML; built-in catalog when empty
	OverridesFilePath string // override blob location; in-memory store when empty

	// Chat settings
	ChatUpstreamURL string // forward /api/chat here when set
	GeminiAPIKey    string // answer directly when set and no upstream
	ScrapeEnabled   bool   // pull full article text for chat grounding

	// App settings
	Debug bool
}

func Load() (*Config, error) {
	cfg := &Config{
		// Default values
		HTTPAddr:       ":8080",
		RequestTimeout: 30 * time.Second,
		ScrapeEnabled:  true,
	}

	// Load from environment
	cfg.HTTPAddr = getEnvOrDefault("HTTP_ADDR", cfg.HTTPAddr)
	cfg.SourcesConfigPath = os.Getenv("SOURCES_CONFIG_PATH")
	cfg.TopicsConfigPath = os.Getenv("TOPICS_CONFIG_PATH")
	cfg.OverridesFilePath = os.Getenv("OVERRIDES_FILE_PATH")
	cfg.ChatUpstreamURL = os.Getenv("CHAT_UPSTREAM_URL")
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")

	if v := os.Getenv("REQUEST_TIMEOUT_SECONDS"); v != "" {
		if val, err := strconv.Atoi(v); err == nil && val > 0 {
			cfg.RequestTimeout = time.Duration(val) * time.Second
		}
	}

	if v := os.Getenv("SCRAPE_ENABLED"); v != "" {
		cfg.ScrapeEnabled = v == "true"
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg, cfg.Validate()
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func (c *Config) Validate() error {
	if c.HTTPAddr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive")
	}
	return nil
}
