package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
// All environment variables are read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional: run persistence is skipped when URL is empty)
	Database DatabaseConfig

	// Redis (optional response cache)
	Redis RedisConfig

	// External providers
	WorldBank WorldBankConfig
	IMF       IMFConfig
	GDELT     GDELTConfig

	// Pipeline
	Pipeline PipelineConfig

	// Paths
	DataDir       string
	CacheFile     string
	ResultsFile   string
	ScoringConfig string // YAML weights/thresholds file; empty = built-in defaults

	// Entities (empty = full built-in country list)
	Countries []string

	// Logging
	LogLevel  string
	LogFormat string
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	URL string

	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// WorldBankConfig holds World Bank API configuration.
type WorldBankConfig struct {
	BaseURL   string
	RateLimit float64 // requests per second
}

// IMFConfig holds IMF DataMapper API configuration.
type IMFConfig struct {
	BaseURL   string
	RateLimit float64
}

// GDELTConfig holds GDELT event API configuration.
type GDELTConfig struct {
	BaseURL   string
	RateLimit float64
}

// PipelineConfig holds tuning knobs for the scoring pipeline.
type PipelineConfig struct {
	Workers       int
	FetchTimeout  time.Duration
	EntityTimeout time.Duration
	HistoryYears  int
}

// Load reads configuration from environment variables.
// Only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		WorldBank: WorldBankConfig{
			BaseURL:   getEnv("WORLDBANK_BASE_URL", "https://api.worldbank.org/v2"),
			RateLimit: getEnvAsFloat("WORLDBANK_RATE_LIMIT", 5.0),
		},

		IMF: IMFConfig{
			BaseURL:   getEnv("IMF_BASE_URL", "https://www.imf.org/external/datamapper/api/v1"),
			RateLimit: getEnvAsFloat("IMF_RATE_LIMIT", 2.0),
		},

		GDELT: GDELTConfig{
			BaseURL:   getEnv("GDELT_BASE_URL", "https://api.gdeltproject.org/api/v2"),
			RateLimit: getEnvAsFloat("GDELT_RATE_LIMIT", 1.0),
		},

		Pipeline: PipelineConfig{
			Workers:       getEnvAsInt("PIPELINE_WORKERS", 8),
			FetchTimeout:  getEnvAsDuration("PIPELINE_FETCH_TIMEOUT", "30s"),
			EntityTimeout: getEnvAsDuration("PIPELINE_ENTITY_TIMEOUT", "2m"),
			HistoryYears:  getEnvAsInt("PIPELINE_HISTORY_YEARS", 6),
		},

		DataDir:       getEnv("DATA_DIR", "data"),
		CacheFile:     getEnv("CACHE_FILE", ""),
		ResultsFile:   getEnv("RESULTS_FILE", ""),
		ScoringConfig: getEnv("SCORING_CONFIG", ""),
		Countries:     getEnvAsList("COUNTRIES_TO_PROCESS"),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if cfg.CacheFile == "" {
		cfg.CacheFile = filepath.Join(cfg.DataDir, "cache.json")
	}
	if cfg.ResultsFile == "" {
		cfg.ResultsFile = filepath.Join(cfg.DataDir, "country_indices.json")
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are sane.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Pipeline.Workers < 1 {
		return fmt.Errorf("PIPELINE_WORKERS must be at least 1")
	}

	if c.Pipeline.FetchTimeout <= 0 || c.Pipeline.EntityTimeout <= 0 {
		return fmt.Errorf("pipeline timeouts must be positive")
	}

	if c.Pipeline.FetchTimeout > c.Pipeline.EntityTimeout {
		return fmt.Errorf("PIPELINE_FETCH_TIMEOUT must not exceed PIPELINE_ENTITY_TIMEOUT")
	}

	return nil
}

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

func getEnvAsList(key string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return nil
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
