package platform

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the client-side settings. Everything is env-driven with
// defaults matching the backend's local development setup.
type Config struct {
	APIBaseURL  string
	HTTPTimeout time.Duration

	// Cache freshness windows. Coverage changes slowly, install slots
	// change often, health is for liveness display only.
	CoverageTTL       time.Duration
	InstallSlotsTTL   time.Duration
	RecommendationTTL time.Duration
	HealthTTL         time.Duration

	HealthRetries      int
	HealthPollInterval time.Duration

	// RedisAddr enables the redis-backed session store when non-empty.
	RedisAddr string
}

// LoadConfig reads configuration from the environment.
func LoadConfig() *Config {
	return &Config{
		APIBaseURL:  strings.TrimRight(GetEnv("BUNDLE_API_URL", "http://localhost:8000"), "/"),
		HTTPTimeout: GetEnvDuration("BUNDLE_HTTP_TIMEOUT", 15*time.Second),

		CoverageTTL:       GetEnvDuration("BUNDLE_COVERAGE_TTL", 5*time.Minute),
		InstallSlotsTTL:   GetEnvDuration("BUNDLE_SLOTS_TTL", 2*time.Minute),
		RecommendationTTL: GetEnvDuration("BUNDLE_RECOMMENDATION_TTL", 10*time.Minute),
		HealthTTL:         GetEnvDuration("BUNDLE_HEALTH_TTL", 30*time.Second),

		HealthRetries:      GetEnvInt("BUNDLE_HEALTH_RETRIES", 2),
		HealthPollInterval: GetEnvDuration("BUNDLE_HEALTH_POLL", time.Minute),

		RedisAddr: GetEnv("BUNDLE_REDIS_ADDR", ""),
	}
}

// GetEnv reads an env var with a default.
func GetEnv(key, defaultVal string) string {
	if val, exists := os.LookupEnv(key); exists {
		return val
	}
	return defaultVal
}

// GetEnvInt reads an integer env var with a default.
func GetEnvInt(key string, defaultVal int) int {
	if val, exists := os.LookupEnv(key); exists {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

// GetEnvBool reads a boolean env var with a default.
func GetEnvBool(key string, defaultVal bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		return strings.ToLower(val) == "true" || val == "1"
	}
	return defaultVal
}

// GetEnvDuration reads a duration env var (Go syntax, e.g. "90s") with a default.
func GetEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}
