package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"signalBot/internal/adapters/logger" // Import the logger package for LogLevel
)

// Data sources the service can read bars from.
const (
	SourceMock    = "mock"
	SourceBinance = "binance"
	SourceCSV     = "csv"
)

// DefaultPairs is the pair universe analysed when PAIRS is not set.
var DefaultPairs = []string{
	"EUR/USD", "GBP/USD", "USD/JPY", "AUD/USD",
	"USD/CAD", "EUR/GBP", "GBP/JPY", "XAU/USD",
}

const (
	minBarLimit = 50 // Synthesizer minimum
	maxBarLimit = 1500
)

// Config holds all application configuration.
type Config struct {
	// Market data
	Pairs       []string
	DataSource  string // mock | binance | csv
	CSVDir      string
	BarInterval string // e.g., "1h"
	BarLimit    int    // Bars fetched per analysis
	MockSeed    int64  // Zero seeds the mock feed from the clock

	// Binance API (public klines work without keys)
	APIKey    string
	SecretKey string
	IsTestnet bool

	// Synthesizer
	RiskReward float64
	MinRR      float64

	// Delivery
	TelegramBotToken  string
	TelegramChannelID string
	RedisAddr         string // Empty disables the Redis publisher
	RedisPassword     string
	RedisChannel      string
	ReportBrand       string

	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat logger.Format

	// Scheduling and retries
	ScheduleInterval time.Duration
	FetchMaxAttempts int
	FetchBackoffMin  time.Duration
	FetchBackoffMax  time.Duration

	// HTTP surfaces; empty disables them
	MetricsAddr string
	APIAddr     string
}

// TelegramEnabled reports whether both Telegram credentials are present.
func (c *Config) TelegramEnabled() bool {
	return c.TelegramBotToken != "" && c.TelegramChannelID != ""
}

// LoadConfig loads configuration from environment variables (.env file).
func LoadConfig() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()
	return FromEnv()
}

// FromEnv reads and validates the configuration from the process environment.
func FromEnv() (*Config, error) {
	cfg := &Config{}
	var err error
	var errs []string // Collect validation errors

	// Market data
	cfg.Pairs = getEnvAsList("PAIRS", DefaultPairs)
	if len(cfg.Pairs) == 0 {
		errs = append(errs, "PAIRS must list at least one pair")
	}

	cfg.DataSource = strings.ToLower(getEnv("DATA_SOURCE", SourceMock))
	switch cfg.DataSource {
	case SourceMock, SourceBinance, SourceCSV:
	default:
		errs = append(errs, fmt.Sprintf("DATA_SOURCE must be one of mock, binance, csv (got %q)", cfg.DataSource))
	}
	cfg.CSVDir = getEnv("CSV_DIR", "./data")

	cfg.BarInterval = getEnv("BAR_INTERVAL", "1h")

	cfg.BarLimit, err = getEnvAsIntRequired("BAR_LIMIT", 100)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid BAR_LIMIT: %v", err))
	} else if cfg.BarLimit < minBarLimit || cfg.BarLimit > maxBarLimit {
		errs = append(errs, fmt.Sprintf("BAR_LIMIT must be between %d and %d", minBarLimit, maxBarLimit))
	}

	seed, err := getEnvAsIntRequired("MOCK_SEED", 0)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MOCK_SEED: %v", err))
	}
	cfg.MockSeed = int64(seed)

	// Binance API
	cfg.APIKey = getEnv("BINANCE_API_KEY", "")
	cfg.SecretKey = getEnv("BINANCE_API_SECRET", "")
	cfg.IsTestnet = getEnvAsBool("IS_TESTNET", false)

	// Synthesizer
	cfg.RiskReward, err = getEnvAsFloatRequired("RISK_REWARD", 1.5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid RISK_REWARD: %v", err))
	} else if cfg.RiskReward <= 0 {
		errs = append(errs, "RISK_REWARD must be positive")
	}

	cfg.MinRR, err = getEnvAsFloatRequired("MIN_RR", 1.5)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid MIN_RR: %v", err))
	} else if cfg.MinRR < 0 {
		errs = append(errs, "MIN_RR cannot be negative")
	}

	if cfg.RiskReward > 0 && cfg.RiskReward < cfg.MinRR {
		errs = append(errs, "RISK_REWARD must not be below MIN_RR")
	}

	// Delivery
	cfg.TelegramBotToken = getEnv("TELEGRAM_BOT_TOKEN", "")
	cfg.TelegramChannelID = getEnv("TELEGRAM_CHANNEL_ID", "")
	if (cfg.TelegramBotToken == "") != (cfg.TelegramChannelID == "") {
		errs = append(errs, "TELEGRAM_BOT_TOKEN and TELEGRAM_CHANNEL_ID must be set together")
	}
	cfg.RedisAddr = getEnv("REDIS_ADDR", "")
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", "")
	cfg.RedisChannel = getEnv("REDIS_CHANNEL", "signals")
	cfg.ReportBrand = getEnv("REPORT_BRAND", "HAMCODZ Trading")

	// Database
	cfg.DBPath = getEnv("DB_PATH", "./data/signals.db")

	// Logging
	logLevelStr := getEnv("LOG_LEVEL", "INFO")
	cfg.LogLevel = logger.ParseLevel(logLevelStr) // Use the parser from the logger package
	cfg.LogFormat = logger.ParseFormat(getEnv("LOG_FORMAT", "text"))

	// Scheduling and retries
	intervalMinutes, err := getEnvAsIntRequired("SCHEDULE_INTERVAL_MINUTES", 60)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid SCHEDULE_INTERVAL_MINUTES: %v", err))
	} else if intervalMinutes <= 0 {
		errs = append(errs, "SCHEDULE_INTERVAL_MINUTES must be positive")
	}
	cfg.ScheduleInterval = time.Duration(intervalMinutes) * time.Minute

	cfg.FetchMaxAttempts, err = getEnvAsIntRequired("FETCH_MAX_ATTEMPTS", 3)
	if err != nil {
		errs = append(errs, fmt.Sprintf("invalid FETCH_MAX_ATTEMPTS: %v", err))
	} else if cfg.FetchMaxAttempts < 1 {
		errs = append(errs, "FETCH_MAX_ATTEMPTS must be at least 1")
	}
	cfg.FetchBackoffMin = time.Duration(getEnvAsInt("FETCH_BACKOFF_MIN_MS", 500)) * time.Millisecond
	cfg.FetchBackoffMax = time.Duration(getEnvAsInt("FETCH_BACKOFF_MAX_MS", 10000)) * time.Millisecond
	if cfg.FetchBackoffMin <= 0 || cfg.FetchBackoffMax < cfg.FetchBackoffMin {
		errs = append(errs, "FETCH_BACKOFF_MIN_MS must be positive and not above FETCH_BACKOFF_MAX_MS")
	}

	// HTTP surfaces
	cfg.MetricsAddr = getEnv("METRICS_ADDR", "")
	cfg.APIAddr = getEnv("API_ADDR", "")

	// Combine validation errors
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}

	return cfg, nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsList splits a comma-separated value, trimming blanks.
func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return append([]string(nil), defaultValue...)
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, strings.ToUpper(part))
		}
	}
	return out
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

func getEnvAsIntRequired(key string, defaultValue int) (int, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		// Use default if env var is not set at all
		return defaultValue, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// Return error if env var is set but invalid
		return 0, fmt.Errorf("invalid integer value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
}

func getEnvAsFloatRequired(key string, defaultValue float64) (float64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float value '%s' for key %s: %w", valueStr, key, err)
	}
	return value, nil
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
