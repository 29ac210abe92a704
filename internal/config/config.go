/**
 * @description
 * Configuration loader for the Food Prices backend.
 * Responsible for reading environment variables, setting defaults, and performing strict validation.
 *
 * @dependencies
 * - github.com/joho/godotenv: For loading .env files
 * - standard "os": For reading env vars
 *
 * @notes
 * - Fails fast if DATABASE_URL is missing.
 * - Shared by the API server (cmd/api) and the batch loader (cmd/loader).
 */

package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Redis  RedisConfig
	Log    LogConfig
	Loader LoaderConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
	Env  string // "development", "staging", "production" or "test"
}

// DBConfig holds relational store settings.
// URL is either a Postgres DSN/URL or "sqlite://<path>".
type DBConfig struct {
	URL             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnectTimeout  time.Duration // upper bound for startup connection retries
}

// RedisConfig holds Redis settings. An empty URL disables Redis.
type RedisConfig struct {
	URL string
}

// LogConfig holds logger settings
type LogConfig struct {
	Level string
	File  string // optional rotated log file
}

// LoaderConfig holds batch loader settings
type LoaderConfig struct {
	CSVPath   string
	Category  string
	BatchSize int
	LockTTL   time.Duration
}

// Load reads .env file and populates the Config struct
func Load() (*Config, error) {
	// Attempt to load .env, but don't crash if it fails (containers inject env vars directly)
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("GO_ENV", "development"),
		},
		DB: DBConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnectTimeout:  getEnvAsDuration("DB_CONNECT_TIMEOUT", 30*time.Second),
		},
		Redis: RedisConfig{
			URL: getEnv("REDIS_URL", ""),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			File:  getEnv("LOG_FILE", ""),
		},
		Loader: LoaderConfig{
			CSVPath:   getEnv("LOADER_CSV_PATH", "data/wfp_food_prices_global_2025.csv"),
			Category:  getEnv("LOADER_CATEGORY", "cereals and tubers"),
			BatchSize: getEnvAsInt("LOADER_BATCH_SIZE", 1000),
			LockTTL:   getEnvAsDuration("LOADER_LOCK_TTL", 30*time.Minute),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks for required variables
func validate(cfg *Config) error {
	if cfg.DB.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.DB.MaxOpenConns <= 0 {
		return fmt.Errorf("DB_MAX_OPEN_CONNS must be positive, got %d", cfg.DB.MaxOpenConns)
	}
	if cfg.DB.MaxIdleConns < 0 || cfg.DB.MaxIdleConns > cfg.DB.MaxOpenConns {
		return fmt.Errorf("DB_MAX_IDLE_CONNS must be between 0 and DB_MAX_OPEN_CONNS (%d), got %d",
			cfg.DB.MaxOpenConns, cfg.DB.MaxIdleConns)
	}
	if cfg.Loader.BatchSize <= 0 {
		return fmt.Errorf("LOADER_BATCH_SIZE must be positive, got %d", cfg.Loader.BatchSize)
	}
	if strings.TrimSpace(cfg.Loader.Category) == "" {
		return fmt.Errorf("LOADER_CATEGORY must not be empty")
	}
	return nil
}

// IsSQLite reports whether the configured store is an SQLite file
func (c DBConfig) IsSQLite() bool {
	return strings.HasPrefix(c.URL, sqliteScheme)
}

// SQLitePath returns the file path part of a sqlite:// URL
func (c DBConfig) SQLitePath() string {
	return strings.TrimPrefix(c.URL, sqliteScheme)
}

const sqliteScheme = "sqlite://"

// Helper to get env var with default
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return strings.TrimSpace(value)
	}
	return fallback
}

// Helper to get env var as int
func getEnvAsInt(key string, fallback int) int {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return fallback
}

// Helper to get env var as a duration ("90s", "30m")
func getEnvAsDuration(key string, fallback time.Duration) time.Duration {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback
	}
	if value, err := time.ParseDuration(valueStr); err == nil {
		return value
	}
	return fallback
}
