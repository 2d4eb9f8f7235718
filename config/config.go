package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DatabaseURL     string        `yaml:"database_url"`
	RedisURL        string        `yaml:"redis_url"`
	Port            string        `yaml:"port"`
	FrontendURL     string        `yaml:"frontend_url"` // Frontend URL for CORS (e.g. http://localhost:3000)
	CronSecret      string        `yaml:"cron_secret"`  // Bearer secret for the rollup trigger endpoint
	RevalidateToken string        `yaml:"revalidate_token"`
	MaxDailyUpdates int           `yaml:"max_daily_updates"` // Mood updates allowed per rolling 24h window
	RollupInterval  time.Duration `yaml:"rollup_interval"`   // Internal rollup scheduler; 0 disables it
}

// Load builds the configuration from an optional YAML file (CONFIG_FILE)
// layered under environment variables. A .env file is honored when present.
// Environment variables always win.
func Load() (*Config, error) {
	// Best effort: local development convenience, absent in production
	_ = godotenv.Load()

	cfg := &Config{
		RedisURL:        "localhost:6379",
		Port:            "8080",
		FrontendURL:     "http://localhost:3000",
		MaxDailyUpdates: 1,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("FRONTEND_URL"); v != "" {
		cfg.FrontendURL = v
	}
	if v := os.Getenv("CRON_SECRET"); v != "" {
		cfg.CronSecret = v
	}
	if v := os.Getenv("REVALIDATE_TOKEN"); v != "" {
		cfg.RevalidateToken = v
	}
	if v := os.Getenv("MAX_DAILY_UPDATES"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return nil, fmt.Errorf("invalid MAX_DAILY_UPDATES: %q", v)
		}
		cfg.MaxDailyUpdates = n
	}
	if v := os.Getenv("ROLLUP_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("invalid ROLLUP_INTERVAL: %q", v)
		}
		cfg.RollupInterval = d
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	return cfg, nil
}
