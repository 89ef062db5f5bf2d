// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides catalog database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
	GetDatabaseHost() string
}

// OpenAIConfig provides settings for the language-model API.
type OpenAIConfig interface {
	GetOpenAIAPIKey() string
	GetOpenAIBaseURL() string
	GetMainModel() string
	GetAnalysisModel() string
}

// ChatConfig provides settings for the conversation module.
type ChatConfig interface {
	GetHistoryMaxExchanges() int
	GetStrictNegativeFitment() bool
}

// SessionConfig provides settings for the conversation context store.
type SessionConfig interface {
	GetRedisURL() string
	GetSessionTTL() time.Duration
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetChatRateLimit() float64
	GetChatRateBurst() int
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	DatabaseHost          string
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	MainModel             string
	AnalysisModel         string
	HistoryMaxExchanges   int
	StrictNegativeFitment bool
	RedisURL              string
	SessionTTL            time.Duration
	CORSAllowAll          bool
	CORSOrigins           []string
	ChatRateLimit         float64
	ChatRateBurst         int
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string  { return c.DatabaseURL }
func (c *Config) GetDatabaseHost() string { return c.DatabaseHost }

// OpenAIConfig implementation
func (c *Config) GetOpenAIAPIKey() string  { return c.OpenAIAPIKey }
func (c *Config) GetOpenAIBaseURL() string { return c.OpenAIBaseURL }
func (c *Config) GetMainModel() string     { return c.MainModel }
func (c *Config) GetAnalysisModel() string { return c.AnalysisModel }

// ChatConfig implementation
func (c *Config) GetHistoryMaxExchanges() int    { return c.HistoryMaxExchanges }
func (c *Config) GetStrictNegativeFitment() bool { return c.StrictNegativeFitment }

// SessionConfig implementation
func (c *Config) GetRedisURL() string          { return c.RedisURL }
func (c *Config) GetSessionTTL() time.Duration { return c.SessionTTL }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string       { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool     { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string  { return c.CORSOrigins }
func (c *Config) GetChatRateLimit() float64 { return c.ChatRateLimit }
func (c *Config) GetChatRateBurst() int     { return c.ChatRateBurst }

// Load reads configuration from environment variables.
// Missing required values are logged as warnings, not fatal: both the catalog
// store and the model API fail lazily on first use so the diagnostics
// endpoints stay reachable even with an incomplete environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "*"))
	corsAllowAll := containsWildcard(corsOrigins) ||
		strings.EqualFold(getEnv("CORS_ALLOW_ALL", "true"), "true")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":3000"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		DatabaseHost:          getEnv("DB_HOST", ""),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", ""),
		MainModel:             getEnv("OPENAI_MAIN_MODEL", "gpt-4o"),
		AnalysisModel:         getEnv("OPENAI_ANALYSIS_MODEL", "gpt-4o-mini"),
		HistoryMaxExchanges:   mustInt(getEnv("HISTORY_MAX_EXCHANGES", "10"), 10),
		StrictNegativeFitment: strings.EqualFold(getEnv("STRICT_NEGATIVE_FITMENT", "true"), "true"),
		RedisURL:              getEnv("REDIS_URL", ""),
		SessionTTL:            mustDuration(getEnv("SESSION_TTL", "0")),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		ChatRateLimit:         mustFloat(getEnv("CHAT_RATE_LIMIT", "1"), 1),
		ChatRateBurst:         mustInt(getEnv("CHAT_RATE_BURST", "5"), 5),
	}

	if cfg.DatabaseHost == "" && cfg.DatabaseURL != "" {
		cfg.DatabaseHost = hostFromURL(cfg.DatabaseURL)
	}

	for _, required := range []struct{ key, value string }{
		{"DATABASE_URL", cfg.DatabaseURL},
		{"OPENAI_API_KEY", cfg.OpenAIAPIKey},
	} {
		if required.value == "" {
			log.Printf("[config] missing variable: %s", required.key)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustInt(value string, fallback int) int {
	result, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return result
}

func mustFloat(value string, fallback float64) float64 {
	result, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return fallback
	}
	return result
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}

// hostFromURL extracts the host part of a connection URL for the TCP
// reachability probe. Best effort only.
func hostFromURL(raw string) string {
	rest := raw
	if idx := strings.Index(rest, "://"); idx >= 0 {
		rest = rest[idx+3:]
	}
	if idx := strings.LastIndex(rest, "@"); idx >= 0 {
		rest = rest[idx+1:]
	}
	if idx := strings.IndexAny(rest, "/?"); idx >= 0 {
		rest = rest[:idx]
	}
	if idx := strings.LastIndex(rest, ":"); idx >= 0 {
		rest = rest[:idx]
	}
	return rest
}
