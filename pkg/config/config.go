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
// ⭐ SSOT: every environment variable is read here and nowhere else.
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Market data providers
	FMP          FMPConfig
	AlphaVantage AlphaVantageConfig
	Yahoo        YahooConfig

	// Screening
	Screening ScreeningConfig

	// Backtest server
	Backtest BacktestConfig

	// Redis (optional shared cache / distributed rate limit)
	Redis RedisConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// FMPConfig holds Financial Modeling Prep API configuration.
type FMPConfig struct {
	APIKey      string
	BaseURL     string
	MinInterval time.Duration // minimum gap between calls
}

// AlphaVantageConfig holds Alpha Vantage API configuration.
type AlphaVantageConfig struct {
	APIKey      string
	BaseURL     string
	WindowLimit int           // calls allowed per window
	Window      time.Duration // rolling window length
}

// YahooConfig holds Yahoo Finance chart API configuration.
type YahooConfig struct {
	BaseURL     string
	MinInterval time.Duration
}

// ScreeningConfig holds screening pipeline configuration.
type ScreeningConfig struct {
	CacheTTL   time.Duration
	MaxResults int
	Workers    int      // bounded parallelism across symbols; 1 = sequential
	TopSymbols []string // default universe when the caller passes none
}

// BacktestConfig holds remote backtest server configuration.
type BacktestConfig struct {
	BaseURL      string
	PollInterval time.Duration
	MaxAttempts  int
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Prefix   string
	Enabled  bool
}

// defaultTopSymbols is the screening universe used when SCREEN_SYMBOLS is unset.
var defaultTopSymbols = []string{
	"AAPL", "MSFT", "GOOGL", "AMZN", "TSLA", "META", "NVDA", "JPM",
	"JNJ", "V", "PG", "UNH", "HD", "MA", "DIS", "PYPL",
	"ADBE", "NFLX", "CRM", "INTC", "AMD", "ORCL", "CSCO", "PFE",
}

// Load reads configuration from environment variables.
// ⭐ SSOT: only this function calls os.Getenv().
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port: getEnv("PORT", "8090"),
		Env:  getEnv("ENV", "development"),

		FMP: FMPConfig{
			APIKey:      getEnv("FMP_API_KEY", "demo"),
			BaseURL:     getEnv("FMP_BASE_URL", "https://financialmodelingprep.com/api/v3"),
			MinInterval: getEnvAsDuration("FMP_MIN_INTERVAL", "1s"),
		},

		AlphaVantage: AlphaVantageConfig{
			APIKey:      getEnv("ALPHA_VANTAGE_API_KEY", "demo"),
			BaseURL:     getEnv("ALPHA_VANTAGE_BASE_URL", "https://www.alphavantage.co/query"),
			WindowLimit: getEnvAsInt("ALPHA_VANTAGE_WINDOW_LIMIT", 5),
			Window:      getEnvAsDuration("ALPHA_VANTAGE_WINDOW", "1m"),
		},

		Yahoo: YahooConfig{
			BaseURL:     getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com/v8/finance/chart"),
			MinInterval: getEnvAsDuration("YAHOO_MIN_INTERVAL", "100ms"),
		},

		Screening: ScreeningConfig{
			CacheTTL:   getEnvAsDuration("SCREEN_CACHE_TTL", "5m"),
			MaxResults: getEnvAsInt("SCREEN_MAX_RESULTS", 10),
			Workers:    getEnvAsInt("SCREEN_WORKERS", 1),
			TopSymbols: getEnvAsList("SCREEN_SYMBOLS", defaultTopSymbols),
		},

		Backtest: BacktestConfig{
			BaseURL:      getEnv("BACKTEST_BASE_URL", "https://oracle-backend-wow-v1-production.up.railway.app"),
			PollInterval: getEnvAsDuration("BACKTEST_POLL_INTERVAL", "10s"),
			MaxAttempts:  getEnvAsInt("BACKTEST_MAX_ATTEMPTS", 30),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Prefix:   getEnv("REDIS_PREFIX", "oracle"),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		LogLevel:  getEnv("LOG_LEVEL", "debug"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set.
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Backtest.BaseURL == "" {
		return fmt.Errorf("BACKTEST_BASE_URL is required")
	}

	if c.Backtest.MaxAttempts <= 0 {
		return fmt.Errorf("BACKTEST_MAX_ATTEMPTS must be positive")
	}

	if c.Screening.Workers <= 0 {
		return fmt.Errorf("SCREEN_WORKERS must be positive")
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations.
func loadEnvFile() {
	paths := []string{
		".env",
	}

	// Also try relative to executable
	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
			filepath.Join(exeDir, "..", "..", ".env"),
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

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	parts := strings.Split(valueStr, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if s := strings.TrimSpace(p); s != "" {
			out = append(out, strings.ToUpper(s))
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
