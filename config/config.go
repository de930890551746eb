package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"pet-offers-bot/scheduler"
)

// Disabled turns off the schedule or the HTTP listener when used as their value.
const Disabled = "off"

// Config holds all application configuration.
type Config struct {
	TelegramToken string `yaml:"telegram_token"`
	ChatID        string `yaml:"chat_id"`

	ShopeeAppID             string  `yaml:"shopee_app_id"`
	ShopeeSecret            string  `yaml:"shopee_secret"`
	ShopeeEndpoint          string  `yaml:"shopee_endpoint"`
	ShopeeRequestsPerSecond float64 `yaml:"shopee_requests_per_second"`
	FetchTimeoutSecs        int     `yaml:"fetch_timeout_secs"`
	RunTimeoutSecs          int     `yaml:"run_timeout_secs"`

	Schedule string `yaml:"schedule"`
	Timezone string `yaml:"timezone"`
	HTTPAddr string `yaml:"http_addr"`

	StoreDriver string `yaml:"store_driver"`
	DBPath      string `yaml:"db_path"`
	DatabaseURL string `yaml:"database_url"`
	RedisURL    string `yaml:"redis_url"`

	SettingsUser    string   `yaml:"settings_user"`
	Categories      []int64  `yaml:"categories"`
	BlockedKeywords []string `yaml:"blocked_keywords"`
	SendPhoto       bool     `yaml:"send_photo"`
	CommandsEnabled *bool    `yaml:"commands_enabled"`
	AdminUserIDs    []int64  `yaml:"admin_user_ids"`

	LogLevel string `yaml:"log_level"`
}

// Load reads configuration from a YAML file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config yaml: %w", err)
	}

	applyDefaults(cfg)
	applyEnvironmentOverrides(cfg)

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// GetConfigPath returns the config file path from environment or default.
func GetConfigPath() string {
	if path := os.Getenv("PET_OFFERS_CONFIG"); path != "" {
		return path
	}
	return "./config.yaml"
}

// ScheduleEnabled reports whether scheduled runs are configured.
func (c *Config) ScheduleEnabled() bool {
	return c.Schedule != Disabled
}

// HTTPEnabled reports whether the HTTP trigger should listen.
func (c *Config) HTTPEnabled() bool {
	return c.HTTPAddr != Disabled
}

// Commands reports whether the Telegram command loop should run.
func (c *Config) Commands() bool {
	return c.CommandsEnabled == nil || *c.CommandsEnabled
}

// FetchTimeout is the HTTP timeout for outbound calls.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSecs) * time.Second
}

// RunTimeout bounds one offer run started by the scheduler or over HTTP.
func (c *Config) RunTimeout() time.Duration {
	return time.Duration(c.RunTimeoutSecs) * time.Second
}

// Level maps log_level to a slog level.
func (c *Config) Level() slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func applyDefaults(cfg *Config) {
	if cfg.ShopeeEndpoint == "" {
		cfg.ShopeeEndpoint = "https://open-api.affiliate.shopee.com.br/graphql"
	}
	if cfg.ShopeeRequestsPerSecond == 0 {
		cfg.ShopeeRequestsPerSecond = 2
	}
	if cfg.FetchTimeoutSecs == 0 {
		cfg.FetchTimeoutSecs = 15
	}
	if cfg.RunTimeoutSecs == 0 {
		cfg.RunTimeoutSecs = 180
	}
	if cfg.Schedule == "" {
		cfg.Schedule = "0 */2 * * *"
	}
	if cfg.Timezone == "" {
		cfg.Timezone = "America/Sao_Paulo"
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.StoreDriver == "" {
		cfg.StoreDriver = "sqlite"
	}
	if cfg.DBPath == "" {
		cfg.DBPath = "./pet-offers.db"
	}
	if cfg.SettingsUser == "" {
		cfg.SettingsUser = "default"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
}

func applyEnvironmentOverrides(cfg *Config) {
	overrides := []struct {
		env string
		dst *string
	}{
		{"TELEGRAM_BOT_TOKEN", &cfg.TelegramToken},
		{"TELEGRAM_CHAT_ID", &cfg.ChatID},
		{"SHOPEE_APP_ID", &cfg.ShopeeAppID},
		{"SHOPEE_SECRET", &cfg.ShopeeSecret},
		{"PET_OFFERS_DB", &cfg.DBPath},
		{"DATABASE_URL", &cfg.DatabaseURL},
		{"REDIS_URL", &cfg.RedisURL},
	}
	for _, o := range overrides {
		if v := os.Getenv(o.env); v != "" {
			*o.dst = v
		}
	}
}

func validate(cfg *Config) error {
	if cfg.TelegramToken == "" {
		return fmt.Errorf("telegram_token is required")
	}
	if cfg.ShopeeAppID == "" || cfg.ShopeeSecret == "" {
		return fmt.Errorf("shopee_app_id and shopee_secret are required")
	}
	if cfg.ChatID != "" && !strings.HasPrefix(cfg.ChatID, "@") {
		if _, err := strconv.ParseInt(cfg.ChatID, 10, 64); err != nil {
			return fmt.Errorf("chat_id must be a numeric id or an @channel name, got %q", cfg.ChatID)
		}
	}
	if cfg.ShopeeRequestsPerSecond < 0 {
		return fmt.Errorf("shopee_requests_per_second must not be negative")
	}
	if cfg.FetchTimeoutSecs < 0 {
		return fmt.Errorf("fetch_timeout_secs must not be negative")
	}
	if cfg.RunTimeoutSecs < 0 {
		return fmt.Errorf("run_timeout_secs must not be negative")
	}
	if cfg.ScheduleEnabled() {
		if _, err := scheduler.NormalizeSpec(cfg.Schedule); err != nil {
			return err
		}
	}
	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	switch cfg.StoreDriver {
	case "sqlite":
	case "postgres":
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("database_url is required when store_driver is postgres")
		}
	default:
		return fmt.Errorf("store_driver must be sqlite or postgres, got %q", cfg.StoreDriver)
	}
	for _, id := range cfg.Categories {
		if id <= 0 {
			return fmt.Errorf("categories must be positive ids, got %d", id)
		}
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("invalid log_level %q", cfg.LogLevel)
	}
	return nil
}
