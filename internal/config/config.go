package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config captures runtime configuration sourced from environment variables.
type Config struct {
	Environment  string
	HTTPPort     string
	DatabasePath string
	LogDir       string
	Debug        bool
	JWTSecret    string
	TokenTTL     time.Duration
	// NotifyURLs are shoutrrr service URLs that receive rollback notices.
	NotifyURLs []string
	// StatsSchedule is the cron spec for refreshing trail gauges.
	StatsSchedule string
}

// Load reads env vars and falls back to defaults so the server can boot with zero configuration.
func Load() (Config, error) {
	cfg := Config{
		Environment:   getEnv("CRM_ENV", "development"),
		HTTPPort:      getEnv("CRM_HTTP_PORT", "8080"),
		DatabasePath:  getEnv("CRM_DB_PATH", filepath.Join("data", "crm.db")),
		LogDir:        getEnv("CRM_LOG_DIR", filepath.Join("data", "logs")),
		JWTSecret:     getEnv("CRM_JWT_SECRET", "change-me-in-production"),
		StatsSchedule: getEnv("CRM_STATS_SCHEDULE", "@every 1m"),
		NotifyURLs:    splitList(os.Getenv("CRM_NOTIFY_URLS")),
	}

	debug, err := strconv.ParseBool(getEnv("CRM_DEBUG", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRM_DEBUG: %w", err)
	}
	cfg.Debug = debug

	ttl, err := time.ParseDuration(getEnv("CRM_TOKEN_TTL", "24h"))
	if err != nil {
		return Config{}, fmt.Errorf("parse CRM_TOKEN_TTL: %w", err)
	}
	cfg.TokenTTL = ttl

	if cfg.Environment == "production" && cfg.JWTSecret == "change-me-in-production" {
		return Config{}, fmt.Errorf("CRM_JWT_SECRET must be set in production")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return Config{}, fmt.Errorf("ensure data directory: %w", err)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return fallback
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
