package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	Port     string
	LogLevel string

	JWTSecret string
	TokenTTL  time.Duration

	GoogleClientID     string
	GoogleClientSecret string
	GoogleRedirectURL  string
	StateTTL           time.Duration
	StateSweepSchedule string

	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SenderEmail  string

	DefaultCurrentLimit float64
	DemoRecords         int
	DemoSeed            int64
}

// NewConfig loads configuration from environment variables
func NewConfig() (*Config, error) {
	cfg := &Config{
		Port:               getEnv("PORT", "8080"),
		LogLevel:           getEnv("LOG_LEVEL", "INFO"),
		JWTSecret:          getEnv("JWT_SECRET", "secret"),
		GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
		GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
		GoogleRedirectURL:  getEnv("GOOGLE_REDIRECT_URL", "http://localhost:8080/auth/google/callback"),
		StateSweepSchedule: getEnv("STATE_SWEEP_SCHEDULE", "@every 5m"),
		SMTPHost:           getEnv("SMTP_HOST", "localhost"),
		SMTPPort:           getEnv("SMTP_PORT", "587"),
		SMTPUsername:       getEnv("SMTP_USERNAME", ""),
		SMTPPassword:       getEnv("SMTP_PASSWORD", ""),
		SenderEmail:        getEnv("SENDER_EMAIL", "credit-decisions@dynamicbank.example"),
	}

	var err error
	if cfg.TokenTTL, err = time.ParseDuration(getEnv("TOKEN_TTL", "24h")); err != nil {
		return nil, fmt.Errorf("invalid TOKEN_TTL: %w", err)
	}
	if cfg.StateTTL, err = time.ParseDuration(getEnv("STATE_TTL", "10m")); err != nil {
		return nil, fmt.Errorf("invalid STATE_TTL: %w", err)
	}
	if cfg.DefaultCurrentLimit, err = strconv.ParseFloat(getEnv("DEFAULT_CURRENT_LIMIT", "50000"), 64); err != nil {
		return nil, fmt.Errorf("invalid DEFAULT_CURRENT_LIMIT: %w", err)
	}
	if cfg.DemoRecords, err = strconv.Atoi(getEnv("DEMO_RECORDS", "150")); err != nil {
		return nil, fmt.Errorf("invalid DEMO_RECORDS: %w", err)
	}
	if cfg.DemoSeed, err = strconv.ParseInt(getEnv("DEMO_SEED", "42"), 10, 64); err != nil {
		return nil, fmt.Errorf("invalid DEMO_SEED: %w", err)
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.DefaultCurrentLimit <= 0 {
		return nil, fmt.Errorf("DEFAULT_CURRENT_LIMIT must be positive")
	}
	if cfg.DemoRecords <= 0 {
		return nil, fmt.Errorf("DEMO_RECORDS must be positive")
	}

	return cfg, nil
}

// GoogleEnabled reports whether Google sign-in is configured
func (c *Config) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}
