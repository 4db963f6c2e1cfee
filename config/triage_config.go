package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"triage_server/pkg/apperr"
)

// Store backends accepted by STORE_BACKEND.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreRedis    = "redis"
	StorePostgres = "postgres"
	StoreMongo    = "mongo"
)

type Config struct {
	Port           string
	Environment    string
	LogLevel       string
	AllowedOrigins []string
	TrustProxy     bool

	// Store
	StoreBackend  string
	StoreFilePath string
	StoreTable    string

	// Database
	DatabaseURL string
	MongoDBURL  string
	MongoDBName string
	RedisURL    string

	// LLM (OpenAI-compatible, Groq by default)
	LLMAPIKey      string
	LLMBaseURL     string
	LLMModel       string
	LLMMaxTokens   int
	LLMTemperature float64
	LLMTimeout     time.Duration
	LLMMaxRetries  int

	// Classification cache
	ClassifyCacheTTL  time.Duration
	ClassifyCacheSize int

	// Bulk
	BulkMax     int
	BulkWorkers int

	// Rate limit
	RateLimitRPS   float64
	RateLimitBurst int

	// Escalation events (Redis stream), empty disables
	EscalationStream string
}

func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "3001"),
		Environment:    getEnv("ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", ""),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", nil),
		TrustProxy:     getEnvBool("TRUST_PROXY", false),

		StoreBackend:  strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		StoreFilePath: getEnv("STORE_FILE_PATH", "data/triage_store.json"),
		StoreTable:    getEnv("STORE_TABLE", "triage_kv"),

		DatabaseURL: getEnv("DATABASE_URL", ""),
		MongoDBURL:  getEnv("MONGODB_URL", ""),
		MongoDBName: getEnv("MONGODB_DATABASE", "triage"),
		RedisURL:    getEnv("REDIS_URL", ""),

		LLMAPIKey:      getEnv("GROQ_API_KEY", getEnv("OPENAI_API_KEY", "")),
		LLMBaseURL:     getEnv("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		LLMModel:       getEnv("LLM_MODEL", "llama-3.3-70b-versatile"),
		LLMMaxTokens:   getEnvInt("LLM_MAX_TOKENS", 512),
		LLMTemperature: getEnvFloat("LLM_TEMPERATURE", 0.2),
		LLMTimeout:     getEnvDuration("LLM_TIMEOUT", 15*time.Second),
		LLMMaxRetries:  getEnvInt("LLM_MAX_RETRIES", 2),

		ClassifyCacheTTL:  getEnvDuration("CLASSIFY_CACHE_TTL", 10*time.Minute),
		ClassifyCacheSize: getEnvInt("CLASSIFY_CACHE_SIZE", 1000),

		BulkMax:     getEnvInt("BULK_MAX", 50),
		BulkWorkers: getEnvInt("BULK_WORKERS", 8),

		RateLimitRPS:   getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst: getEnvInt("RATE_LIMIT_BURST", 20),

		EscalationStream: getEnv("ESCALATION_STREAM", ""),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected store has what it needs and numeric limits are sane.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory:
	case StoreFile:
		if c.StoreFilePath == "" {
			return apperr.ConfigError("STORE_FILE_PATH is required for the file store")
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return apperr.ConfigError("REDIS_URL is required for the redis store")
		}
	case StorePostgres:
		if c.DatabaseURL == "" {
			return apperr.ConfigError("DATABASE_URL is required for the postgres store")
		}
	case StoreMongo:
		if c.MongoDBURL == "" {
			return apperr.ConfigError("MONGODB_URL is required for the mongo store")
		}
	default:
		return apperr.ConfigError(fmt.Sprintf("unknown STORE_BACKEND %q", c.StoreBackend))
	}
	if c.BulkMax < 1 {
		return apperr.ConfigError("BULK_MAX must be at least 1")
	}
	if c.LLMTemperature < 0 || c.LLMTemperature > 2 {
		return apperr.ConfigError("LLM_TEMPERATURE must be within [0, 2]")
	}
	return nil
}

// LLMEnabled reports whether a remote classifier key is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLMAPIKey != ""
}

// EscalationEnabled reports whether escalations are published. Requires Redis.
func (c *Config) EscalationEnabled() bool {
	return c.EscalationStream != "" && c.RedisURL != ""
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// getEnvDuration accepts Go durations ("15s") or bare seconds ("15").
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second
	}
	return defaultValue
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}
