package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string
	// RedisURL points at the durable session store. Required.
	RedisURL string
	// DatabaseURL enables the submission journal when non-empty.
	// The test-taking flow itself never touches PostgreSQL.
	DatabaseURL string
	MaxDBConns  int32
	// UpstreamBaseURL is the exam platform that owns check-test/submit-test.
	UpstreamBaseURL string
	UpstreamTimeout time.Duration
	// ResolverInterval controls how often the backup resolver scans for
	// submissions that failed and were left locally backed up.
	ResolverInterval time.Duration
	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load() // Ignore error — .env is optional

	return &Config{
		ServerPort:       getEnv("SERVER_PORT", "8080"),
		GinMode:          getEnv("GIN_MODE", "debug"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "pretty"),
		RedisURL:         getEnv("REDIS_URL", "redis://localhost:6379/0"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		MaxDBConns:       int32(getEnvInt("MAX_DB_CONNS", 8)),
		UpstreamBaseURL:  getEnv("UPSTREAM_BASE_URL", "http://localhost:9000/api"),
		UpstreamTimeout:  time.Duration(getEnvInt("UPSTREAM_TIMEOUT_SECONDS", 15)) * time.Second,
		ResolverInterval: time.Duration(getEnvInt("RESOLVER_INTERVAL_SECONDS", 60)) * time.Second,
		AllowedOrigins:   parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
