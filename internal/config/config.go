// Package config loads the engine configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server  ServerConfig
	Scraper ScraperConfig
	Fetcher FetcherConfig
	Storage StorageConfig
	Events  EventsConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port            string
	Host            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type ScraperConfig struct {
	MaxPages       int
	DetailAttempts int
	RetryDelay     time.Duration
	MaxProducts    int
}

// FetcherConfig selects how retailer pages are retrieved. Mode "http" uses a
// plain HTTP client; "browser" renders pages in headless Chromium for
// retailers that build listings client-side.
type FetcherConfig struct {
	Mode       string
	Timeout    time.Duration
	UserAgents []string

	Headless       bool
	ViewportWidth  int
	ViewportHeight int
	Locale         string
}

// StorageConfig selects the snapshot backend: "file" or "postgres".
type StorageConfig struct {
	Backend     string
	DataDir     string
	DatabaseURL string
}

// EventsConfig enables Redis event publishing when RedisURL is set.
type EventsConfig struct {
	RedisURL string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnvOrDefault("SERVER_PORT", "8080"),
			Host:            getEnvOrDefault("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:     getDurationOrDefault("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationOrDefault("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationOrDefault("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Scraper: ScraperConfig{
			MaxPages:       getIntOrDefault("SCRAPER_MAX_PAGES", 5),
			DetailAttempts: getIntOrDefault("SCRAPER_DETAIL_ATTEMPTS", 3),
			RetryDelay:     getDurationOrDefault("SCRAPER_RETRY_DELAY", 2*time.Second),
			MaxProducts:    getIntOrDefault("SCRAPER_MAX_PRODUCTS", 0),
		},
		Fetcher: FetcherConfig{
			Mode:           getEnvOrDefault("FETCHER_MODE", "http"),
			Timeout:        getDurationOrDefault("FETCHER_TIMEOUT", 30*time.Second),
			UserAgents:     getStringSliceOrDefault("FETCHER_USER_AGENTS", nil),
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "en-GB"),
		},
		Storage: StorageConfig{
			Backend:     getEnvOrDefault("STORAGE_BACKEND", "file"),
			DataDir:     getEnvOrDefault("STORAGE_DATA_DIR", "data"),
			DatabaseURL: getEnvOrDefault("DATABASE_URL", ""),
		},
		Events: EventsConfig{
			RedisURL: getEnvOrDefault("REDIS_URL", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Fetcher.Mode {
	case "http", "browser":
	default:
		return fmt.Errorf("FETCHER_MODE must be \"http\" or \"browser\", got %q", c.Fetcher.Mode)
	}

	switch c.Storage.Backend {
	case "file":
		if c.Storage.DataDir == "" {
			return fmt.Errorf("STORAGE_DATA_DIR is required for the file backend")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres backend")
		}
	default:
		return fmt.Errorf("STORAGE_BACKEND must be \"file\" or \"postgres\", got %q", c.Storage.Backend)
	}

	if c.Scraper.MaxPages < 1 {
		return fmt.Errorf("SCRAPER_MAX_PAGES must be at least 1")
	}
	if c.Scraper.DetailAttempts < 1 {
		return fmt.Errorf("SCRAPER_DETAIL_ATTEMPTS must be at least 1")
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
