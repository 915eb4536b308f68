package config

import (
	"fmt"
	"os"
	"strconv"

	"graphrlm.dev/core/core/db"
)

// Config holds all application configuration.
type Config struct {
	// Env is the environment name (development, staging, production)
	Env string

	// DB holds database configuration for the persistent ReasoningBank store.
	DB db.Config

	// OTel holds OpenTelemetry exporter configuration.
	OTel OTelConfig

	// LLM holds root-model and sub-LLM client configuration.
	LLM LLMConfig

	// Redis holds the optional retrieval ranking cache.
	Redis RedisConfig

	// Typesense holds the preferred full-text retrieval backend for C6.
	Typesense TypesenseConfig

	// RLM holds the default run() budgets and toggles (spec §6).
	RLM RLMConfig
}

// LLMConfig configures both the root-model agent client and the sub-LLM /
// judge-and-extract structured client.
type LLMConfig struct {
	APIKey    string
	BaseURL   string
	RootModel string
	SubModel  string
}

// RedisConfig configures the optional retrieval ranking cache.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// TypesenseConfig configures the preferred ReasoningBank retrieval backend.
type TypesenseConfig struct {
	Host     string
	Port     string
	Protocol string
	APIKey   string
}

// OTelConfig configures the OTLP trace/log exporters.
type OTelConfig struct {
	Endpoint       string
	Headers        string
	ServiceName    string
	ServiceVersion string
}

// Enabled reports whether an OTLP endpoint was configured at all.
func (o OTelConfig) Enabled() bool {
	return o.Endpoint != ""
}

// RLMConfig holds the default values for run()'s budget and toggle
// parameters (spec §6); callers may still override any of these per call.
type RLMConfig struct {
	MaxIterations         int
	MaxLLMCalls           int
	OutputTruncationLimit int
	RetrieveK             int
	ExtractMemories       bool
	EnableVerification    bool
}

// Load loads configuration from environment variables.
// It provides sensible defaults for development.
func Load() Config {
	return Config{
		Env: getEnv("GRAPHRLM_ENV", "development"),
		DB: db.Config{
			DSN:      buildDSN(),
			MaxConns: int32(getEnvInt("DB_MAX_CONNS", 10)),
			MinConns: int32(getEnvInt("DB_MIN_CONNS", 2)),
		},
		OTel: OTelConfig{
			Endpoint:       getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:        getEnv("OTEL_EXPORTER_OTLP_HEADERS", ""),
			ServiceName:    getEnv("OTEL_SERVICE_NAME", "graphrlm-core"),
			ServiceVersion: getEnv("OTEL_SERVICE_VERSION", "dev"),
		},
		LLM: LLMConfig{
			APIKey:    getEnv("OPENAI_API_KEY", ""),
			BaseURL:   getEnv("OPENAI_BASE_URL", ""),
			RootModel: getEnv("GRAPHRLM_ROOT_MODEL", "gpt-5-codex"),
			SubModel:  getEnv("GRAPHRLM_SUB_MODEL", "gpt-4o-mini"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Typesense: TypesenseConfig{
			Host:     getEnv("TYPESENSE_HOST", "localhost"),
			Port:     getEnv("TYPESENSE_PORT", "8108"),
			Protocol: getEnv("TYPESENSE_PROTOCOL", "http"),
			APIKey:   getEnv("TYPESENSE_API_KEY", ""),
		},
		RLM: RLMConfig{
			MaxIterations:         getEnvInt("GRAPHRLM_MAX_ITERATIONS", 15),
			MaxLLMCalls:           getEnvInt("GRAPHRLM_MAX_LLM_CALLS", 50),
			OutputTruncationLimit: getEnvInt("GRAPHRLM_OUTPUT_TRUNCATION_LIMIT", 10_000),
			RetrieveK:             getEnvInt("GRAPHRLM_RETRIEVE_K", 3),
			ExtractMemories:       getEnvBool("GRAPHRLM_EXTRACT_MEMORIES", true),
			EnableVerification:    getEnvBool("GRAPHRLM_ENABLE_VERIFICATION", true),
		},
	}
}

// buildDSN constructs the database connection string from individual env vars.
func buildDSN() string {
	host := getEnv("DATABASE_HOST", "localhost")
	port := getEnv("DATABASE_PORT", "5432")
	user := getEnv("DATABASE_USER", "postgres")
	password := getEnv("DATABASE_PASSWORD", "postgres")
	name := getEnv("DATABASE_NAME", "graphrlm")
	sslMode := getEnv("DATABASE_SSLMODE", "disable")

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		user, password, host, port, name, sslMode,
	)
}

// IsProduction returns true if running in production environment.
func (c Config) IsProduction() bool {
	return c.Env == "production"
}

// IsDevelopment returns true if running in development environment.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}
