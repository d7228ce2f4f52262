// Package config loads server settings from YAML with environment overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server struct {
		Port            int           `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
		RequestTimeout  time.Duration `yaml:"request_timeout"`
	} `yaml:"server"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
		// Seed loads the embedded fixtures into an empty database on startup.
		Seed bool `yaml:"seed"`
		// FixturesPath overrides the embedded fixtures with a YAML file.
		FixturesPath string `yaml:"fixtures_path"`
	} `yaml:"database"`
	Auth struct {
		JWTSecret     string        `yaml:"jwt_secret"`
		TokenDuration time.Duration `yaml:"token_duration"`
	} `yaml:"auth"`
	Schedule struct {
		MonthlyResetCron string `yaml:"monthly_reset_cron"`
		// GrabTickCron drives the grab simulator. Empty disables it.
		GrabTickCron string `yaml:"grab_tick_cron"`
	} `yaml:"schedule"`
	Grab struct {
		Seed       uint64 `yaml:"seed"`
		QueueSize  int    `yaml:"queue_size"`
		ClaimsTick int    `yaml:"claims_per_tick"`
	} `yaml:"grab"`
	Assistant struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"assistant"`
	LogLevel string `yaml:"log_level"`
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Database.Seed = true

	data, err := os.ReadFile(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("DB_PATH"); v != "" {
		c.Database.SQLitePath = v
	}
	if v := os.Getenv("SEED_DATA"); v != "" {
		seed, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("parse SEED_DATA: %w", err)
		}
		c.Database.Seed = seed
	}
	if v := os.Getenv("FIXTURES_PATH"); v != "" {
		c.Database.FixturesPath = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("GENAI_API_KEY"); v != "" {
		c.Assistant.APIKey = v
	}
	if v := os.Getenv("GENAI_MODEL"); v != "" {
		c.Assistant.Model = v
	}
	if v := os.Getenv("CRON_MONTHLY_RESET"); v != "" {
		c.Schedule.MonthlyResetCron = v
	}
	if v := os.Getenv("CRON_GRAB_TICK"); v != "" {
		c.Schedule.GrabTickCron = v
	}
	if v := os.Getenv("GRAB_SEED"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse GRAB_SEED: %w", err)
		}
		c.Grab.Seed = seed
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 3001
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Server.RequestTimeout == 0 {
		c.Server.RequestTimeout = 15 * time.Second
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "./data/bordertrade.db"
	}
	if c.Auth.TokenDuration == 0 {
		c.Auth.TokenDuration = 24 * time.Hour
	}
	if c.Schedule.MonthlyResetCron == "" {
		c.Schedule.MonthlyResetCron = "0 0 0 1 * *"
	}
	if c.Grab.QueueSize == 0 {
		c.Grab.QueueSize = 64
	}
	if c.Grab.ClaimsTick == 0 {
		c.Grab.ClaimsTick = 1
	}
	if c.Assistant.Model == "" {
		c.Assistant.Model = "gemini-2.5-flash"
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

// Validate checks that all required fields are set.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if c.Auth.TokenDuration <= 0 {
		return fmt.Errorf("auth.token_duration must be positive")
	}
	if c.Grab.QueueSize < 1 {
		return fmt.Errorf("grab.queue_size must be positive")
	}
	if c.Grab.ClaimsTick < 0 {
		return fmt.Errorf("grab.claims_per_tick must not be negative")
	}

	parser := cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	if _, err := parser.Parse(c.Schedule.MonthlyResetCron); err != nil {
		return fmt.Errorf("schedule.monthly_reset_cron: %w", err)
	}
	if c.Schedule.GrabTickCron != "" {
		if _, err := parser.Parse(c.Schedule.GrabTickCron); err != nil {
			return fmt.Errorf("schedule.grab_tick_cron: %w", err)
		}
	}
	return nil
}

// AssistantEnabled reports whether an API key for the assistant is configured.
func (c *Config) AssistantEnabled() bool {
	return c.Assistant.APIKey != ""
}
