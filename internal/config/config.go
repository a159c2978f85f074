// Package config loads server settings from an optional .env file and the
// environment.
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

const DefaultSessionSecret = "quiz-widget-development-secret"

type Config struct {
	Port           string
	RedisAddr      string
	SessionSecret  string
	SessionTTL     time.Duration
	AllowedOrigins []string
	CookieSecure   bool
	ProjectTitle   string
	Log            LogConfig
}

type LogConfig struct {
	Level      slog.Level
	File       string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// Load reads .env files (missing ones are fine) and then the environment.
func Load(envFiles ...string) (*Config, error) {
	if err := godotenv.Load(envFiles...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to load env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds the configuration from the current environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		SessionSecret:  getEnv("SESSION_SECRET", DefaultSessionSecret),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:3000")),
		ProjectTitle:   getEnv("PROJECT_TITLE", "hellno"),
		Log: LogConfig{
			File: getEnv("LOG_FILE", ""),
		},
	}

	var err error
	if cfg.SessionTTL, err = getEnvDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.CookieSecure, err = getEnvBool("COOKIE_SECURE", false); err != nil {
		return nil, err
	}
	if cfg.Log.MaxSize, err = getEnvInt("LOG_MAX_SIZE", 10); err != nil {
		return nil, err
	}
	if cfg.Log.MaxBackups, err = getEnvInt("LOG_MAX_BACKUPS", 3); err != nil {
		return nil, err
	}
	if cfg.Log.MaxAge, err = getEnvInt("LOG_MAX_AGE", 30); err != nil {
		return nil, err
	}
	if err := cfg.Log.Level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionTTL)
	}
	if cfg.SessionSecret == "" {
		return nil, fmt.Errorf("SESSION_SECRET must not be empty")
	}
	return cfg, nil
}

// UsesDefaultSecret reports whether tokens are signed with the development
// secret.
func (c *Config) UsesDefaultSecret() bool {
	return c.SessionSecret == DefaultSessionSecret
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	i, err := strconv.Atoi(value)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("invalid %s %q: must be a non-negative integer", key, value)
	}
	return i, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	return d, nil
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
