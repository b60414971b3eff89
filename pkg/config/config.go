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

// Price source identifiers accepted by PRICE_SOURCE
const (
	PriceSourceYahoo    = "yahoo"
	PriceSourceNaver    = "naver"
	PriceSourcePostgres = "postgres"
)

// Config holds all configuration for the application
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database (optional price store)
	Database DatabaseConfig

	// Redis (optional shared fetch cache)
	Redis RedisConfig

	// Market data
	MarketData MarketDataConfig

	// Analysis YAML (periods, quantiles, lags ...)
	AnalysisConfigPath string

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
	Prefix   string
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// Enabled reports whether a price store is configured
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// MarketDataConfig holds price/news retrieval settings
type MarketDataConfig struct {
	Source           string  // yahoo, naver, postgres
	NaverBaseURL     string  // price chart API
	NaverNewsBaseURL string  // news listing pages
	RateLimit        float64 // requests per second for outbound HTTP
	HTTPTimeout      time.Duration
	CacheTTL         time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Prefix:   getEnv("REDIS_PREFIX", "alphalens"),
		},

		MarketData: MarketDataConfig{
			Source:           strings.ToLower(getEnv("PRICE_SOURCE", PriceSourceYahoo)),
			NaverBaseURL:     getEnv("NAVER_BASE_URL", "https://fchart.stock.naver.com"),
			NaverNewsBaseURL: getEnv("NAVER_NEWS_BASE_URL", "https://finance.naver.com"),
			RateLimit:        getEnvAsFloat("HTTP_RATE_LIMIT", 5),
			HTTPTimeout:      getEnvAsDuration("HTTP_TIMEOUT", "30s"),
			CacheTTL:         getEnvAsDuration("CACHE_TTL", "1h"),
		},

		AnalysisConfigPath: getEnv("ANALYSIS_CONFIG", ""),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "console"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if configuration values are consistent
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.MarketData.Source {
	case PriceSourceYahoo, PriceSourceNaver:
	case PriceSourcePostgres:
		if !c.Database.Enabled() {
			return fmt.Errorf("DATABASE_URL is required when PRICE_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("PRICE_SOURCE must be one of: yahoo, naver, postgres")
	}

	if c.MarketData.RateLimit <= 0 {
		return fmt.Errorf("HTTP_RATE_LIMIT must be > 0")
	}

	if c.MarketData.CacheTTL < 0 {
		return fmt.Errorf("CACHE_TTL must not be negative")
	}

	return nil
}

// loadEnvFile tries to load .env from the working directory or next to the binary
func loadEnvFile() {
	paths := []string{".env"}

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
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	value, err := strconv.ParseFloat(os.Getenv(key), 64)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
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
