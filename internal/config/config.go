package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	// Gemini settings
	GeminiAPIKey   string
	GeminiEndpoint string // optional API base URL override
	GeminiModel    string

	// RSS settings
	FeedsConfigPath string
	MaxNewsLimit    int
	FeedTimeout     time.Duration

	// Summary settings
	SummaryTimeout  time.Duration
	MaxSummaryWords int

	// Cache settings
	CacheDir           string
	CacheDurationHours int

	// Scheduler settings
	UpdateIntervalHours int

	// HTTP settings
	HTTPHost string
	HTTPPort int

	Debug bool
}

func Load() *Config {
	cfg := &Config{
		// Default values
		GeminiModel:         "gemini-1.5-flash",
		MaxNewsLimit:        20,
		FeedTimeout:         15 * time.Second,
		SummaryTimeout:      30 * time.Second,
		MaxSummaryWords:     500,
		CacheDir:            "./cache",
		CacheDurationHours:  6,
		UpdateIntervalHours: 6,
		HTTPHost:            "0.0.0.0",
		HTTPPort:            5000,
	}

	// Load from environment
	cfg.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	cfg.GeminiEndpoint = os.Getenv("GEMINI_API_ENDPOINT")
	cfg.FeedsConfigPath = os.Getenv("FEEDS_CONFIG_PATH")

	if model := os.Getenv("GEMINI_MODEL"); model != "" {
		cfg.GeminiModel = model
	}

	cfg.CacheDir = getEnvOrDefault("CACHE_DIR", cfg.CacheDir)
	cfg.CacheDurationHours = getEnvIntOrDefault("CACHE_DURATION_HOURS", cfg.CacheDurationHours)
	cfg.UpdateIntervalHours = getEnvIntOrDefault("UPDATE_INTERVAL_HOURS", cfg.UpdateIntervalHours)
	cfg.HTTPHost = getEnvOrDefault("HTTP_HOST", cfg.HTTPHost)
	cfg.HTTPPort = getEnvIntOrDefault("HTTP_PORT", cfg.HTTPPort)

	if limit := os.Getenv("MAX_NEWS_LIMIT"); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil && val > 0 {
			cfg.MaxNewsLimit = val
		}
	}

	if debug := os.Getenv("DEBUG"); debug == "true" {
		cfg.Debug = true
	}

	return cfg
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// Validate checks the settings a summary-generating process cannot run
// without. The HTTP server skips this and degrades instead.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return fmt.Errorf("GEMINI_API_KEY is required")
	}
	if c.CacheDurationHours <= 0 {
		return fmt.Errorf("CACHE_DURATION_HOURS must be positive")
	}
	if c.UpdateIntervalHours <= 0 {
		return fmt.Errorf("UPDATE_INTERVAL_HOURS must be positive")
	}
	return nil
}
