// Package config loads runtime settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	DBPath   string
	Port     int
	LogLevel string

	// JWTSecret enables authentication on group routes when non-empty.
	JWTSecret string
	TokenTTL  time.Duration

	// AMQPURL enables ledger event publishing when non-empty.
	AMQPURL   string
	AMQPQueue string

	CORSOrigins []string

	// CacheSize bounds the number of groups whose balances are memoised.
	CacheSize int
}

// Load reads a .env file if present, then the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return FromEnv()
}

// FromEnv reads configuration from environment variables only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		DBPath:      getEnv("DB_PATH", "./data/ledger.db"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		JWTSecret:   os.Getenv("JWT_SECRET"),
		AMQPURL:     os.Getenv("AMQP_URL"),
		AMQPQueue:   getEnv("AMQP_QUEUE", "ledger.events"),
		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "*")),
	}

	var err error
	if cfg.Port, err = getInt("PORT", 8080); err != nil {
		return nil, err
	}
	if cfg.CacheSize, err = getInt("CACHE_SIZE", 256); err != nil {
		return nil, err
	}
	if cfg.TokenTTL, err = getDuration("TOKEN_TTL", 24*time.Hour); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d", c.Port)
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("CACHE_SIZE cannot be negative: %d", c.CacheSize)
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive: %s", c.TokenTTL)
	}
	if c.DBPath == "" {
		return fmt.Errorf("DB_PATH is required")
	}
	return nil
}

// AuthEnabled reports whether group routes require a bearer token.
func (c *Config) AuthEnabled() bool {
	return c.JWTSecret != ""
}

// LogValue keeps secrets out of logs.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("db_path", c.DBPath),
		slog.Int("port", c.Port),
		slog.String("log_level", c.LogLevel),
		slog.Bool("auth", c.AuthEnabled()),
		slog.Bool("amqp", c.AMQPURL != ""),
		slog.Int("cache_size", c.CacheSize),
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, raw, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
