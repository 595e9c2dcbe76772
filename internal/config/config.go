package config

import (
	"os"
	"strings"
	"time"
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMongo    = "mongo"
	StoreDriverMemory   = "memory"
)

type Config struct {
	Port        string
	Environment string
	CORSOrigins string
	// Persistence
	StoreDriver   string
	DatabaseURL   string
	TablePrefix   string
	MongoURI      string
	MongoDatabase string
	// LLM Configuration
	OpenRouterAPIKey     string
	OpenRouterBaseURL    string
	OpenRouterReferer    string
	OpenRouterTitle      string
	DefaultModel         string
	DefaultSystemMessage string
	ChatMaxDuration      time.Duration // Upper bound on one streamed chat response
	// SSE
	KeepAliveInterval time.Duration
	// Logging
	LogLevel  string
	LogFormat string
	LogFile   string
	// Debug flags
	Debug bool
}

func Load() *Config {
	env := getEnv("ENVIRONMENT", "dev")
	databaseURL := getEnv("DATABASE_URL", "")

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: env,
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:3000"),
		// Persistence
		StoreDriver:   getStoreDriver(databaseURL),
		DatabaseURL:   databaseURL,
		TablePrefix:   getTablePrefix(env),
		MongoURI:      getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGODB_DATABASE", "promptchat"),
		// LLM Configuration
		OpenRouterAPIKey:     getEnv("OPENROUTER_API_KEY", ""),
		OpenRouterBaseURL:    getEnv("OPENROUTER_BASE_URL", "https://openrouter.ai/api/v1"),
		OpenRouterReferer:    getEnv("OPENROUTER_REFERER", ""),
		OpenRouterTitle:      getEnv("OPENROUTER_TITLE", "promptchat"),
		DefaultModel:         getEnv("DEFAULT_MODEL", "x-ai/grok-4.1-fast:free"),
		DefaultSystemMessage: getEnv("DEFAULT_SYSTEM_MESSAGE", "You are a helpful assistant."),
		ChatMaxDuration:      getDuration("CHAT_MAX_DURATION", 30*time.Second),
		KeepAliveInterval:    getDuration("SSE_KEEPALIVE_INTERVAL", 10*time.Second),
		// Logging
		LogLevel:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		LogFormat: getEnv("LOG_FORMAT", "json"),
		LogFile:   getEnv("LOG_FILE", ""),
		// Debug flags - default to true in dev/test, false in production
		Debug: getEnv("DEBUG", getDefaultDebug(env)) == "true",
	}
}

// getStoreDriver picks postgres when a database URL is configured, memory otherwise.
// STORE_DRIVER always wins when set.
func getStoreDriver(databaseURL string) string {
	if driver := strings.ToLower(strings.TrimSpace(os.Getenv("STORE_DRIVER"))); driver != "" {
		return driver
	}
	if databaseURL != "" {
		return StoreDriverPostgres
	}
	return StoreDriverMemory
}

// getDefaultDebug returns the default debug setting based on environment
func getDefaultDebug(env string) string {
	if env == "prod" {
		return "false"
	}
	return "true"
}

func getDefaultLogLevel(env string) string {
	if env == "dev" {
		return "debug"
	}
	return "info"
}

// getTablePrefix returns the table prefix based on environment
func getTablePrefix(env string) string {
	// Allow manual override via TABLE_PREFIX env var
	if prefix := os.Getenv("TABLE_PREFIX"); prefix != "" {
		return prefix
	}

	switch env {
	case "prod":
		return "prod_"
	case "test":
		return "test_"
	default:
		return "dev_"
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration parses a Go duration string ("30s", "2m"), falling back on bad input.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return defaultValue
	}
	return d
}
