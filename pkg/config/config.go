package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
// ⭐ SSOT: all environment variables are read here and nowhere else
type Config struct {
	// Server
	Port string
	Env  string // development, staging, production

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// News source
	News NewsConfig

	// Sentiment artifacts
	Sentiment SentimentConfig

	// Analysis defaults
	Analysis AnalysisConfig

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

// NewsConfig holds the news listing source configuration
type NewsConfig struct {
	BaseURL    string // ticker is appended verbatim
	UserAgent  string
	Timeout    time.Duration
	RatePerSec float64 // 0 disables local rate limiting
	Timezone   string  // location the listing timestamps are expressed in
}

// SentimentConfig holds the locations of the scoring artifacts
type SentimentConfig struct {
	ModelPath         string
	VocabularyPath    string
	NeuralEnabled     bool
	MaxSequenceLength int
}

// AnalysisConfig holds defaults for scheduled and triggered runs
type AnalysisConfig struct {
	Ticker        string
	IntervalHours int
	CreatedBy     string
	CacheTTL      time.Duration
	WatchlistPath string
	Schedule      string        // cron expression with seconds
	Retention     time.Duration // stored reports older than this are pruned; 0 keeps them
}

// Load reads configuration from environment variables
// ⭐ SSOT: the only function that calls os.Getenv()
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Server
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("ENV", "development"),

		// Database
		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		// Redis
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		News: NewsConfig{
			BaseURL:    getEnv("NEWS_BASE_URL", "https://finviz.com/quote.ashx?t="),
			UserAgent:  getEnv("NEWS_USER_AGENT", "stogger/1.0"),
			Timeout:    getEnvAsDuration("NEWS_TIMEOUT", "15s"),
			RatePerSec: getEnvAsFloat("NEWS_RATE_PER_SEC", 1),
			Timezone:   getEnv("NEWS_TIMEZONE", "UTC"),
		},

		Sentiment: SentimentConfig{
			ModelPath:         getEnv("MODEL_PATH", ""),
			VocabularyPath:    getEnv("VOCABULARY_PATH", ""),
			NeuralEnabled:     getEnvAsBool("NEURAL_ENABLED", true),
			MaxSequenceLength: getEnvAsInt("MAX_SEQUENCE_LENGTH", 100),
		},

		Analysis: AnalysisConfig{
			Ticker:        getEnv("ANALYSIS_TICKER", "AMZN"),
			IntervalHours: getEnvAsInt("ANALYSIS_INTERVAL", 24),
			CreatedBy:     getEnv("REPORT_CREATED_BY", "stogger(news-analysis)"),
			CacheTTL:      getEnvAsDuration("REPORT_CACHE_TTL", "5m"),
			WatchlistPath: getEnv("WATCHLIST_PATH", ""),
			Schedule:      getEnv("ANALYSIS_SCHEDULE", "0 0 * * * *"),
			Retention:     getEnvAsDuration("REPORT_RETENTION", "0s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.Analysis.IntervalHours <= 0 {
		return fmt.Errorf("ANALYSIS_INTERVAL must be positive")
	}

	if c.Sentiment.MaxSequenceLength <= 0 {
		return fmt.Errorf("MAX_SEQUENCE_LENGTH must be positive")
	}

	if c.Analysis.Retention < 0 {
		return fmt.Errorf("REPORT_RETENTION must not be negative")
	}

	if _, err := time.LoadLocation(c.News.Timezone); err != nil {
		return fmt.Errorf("NEWS_TIMEZONE is invalid: %w", err)
	}

	return nil
}

// RequireDatabase reports an error when persistence is requested without a database URL
func (c *Config) RequireDatabase() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// NeuralConfigured reports whether the neural scorer should be loaded
func (c *Config) NeuralConfigured() bool {
	return c.Sentiment.NeuralEnabled && c.Sentiment.ModelPath != "" && c.Sentiment.VocabularyPath != ""
}

// Location returns the location listing timestamps are interpreted in
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.News.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
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
