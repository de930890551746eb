package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath
}

const minimalConfig = `
telegram_token: "test-token"
shopee_app_id: "app"
shopee_secret: "secret"
`

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ShopeeEndpoint != "https://open-api.affiliate.shopee.com.br/graphql" {
		t.Errorf("ShopeeEndpoint = %q", cfg.ShopeeEndpoint)
	}
	if cfg.ShopeeRequestsPerSecond != 2 {
		t.Errorf("ShopeeRequestsPerSecond = %v, want 2", cfg.ShopeeRequestsPerSecond)
	}
	if cfg.FetchTimeout() != 15*time.Second {
		t.Errorf("FetchTimeout() = %v, want 15s", cfg.FetchTimeout())
	}
	if cfg.RunTimeout() != 3*time.Minute {
		t.Errorf("RunTimeout() = %v, want 3m", cfg.RunTimeout())
	}
	if cfg.Schedule != "0 */2 * * *" {
		t.Errorf("Schedule = %q, want %q", cfg.Schedule, "0 */2 * * *")
	}
	if cfg.Timezone != "America/Sao_Paulo" {
		t.Errorf("Timezone = %q, want %q", cfg.Timezone, "America/Sao_Paulo")
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr = %q, want %q", cfg.HTTPAddr, ":8080")
	}
	if cfg.StoreDriver != "sqlite" {
		t.Errorf("StoreDriver = %q, want sqlite", cfg.StoreDriver)
	}
	if cfg.DBPath != "./pet-offers.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./pet-offers.db")
	}
	if cfg.SettingsUser != "default" {
		t.Errorf("SettingsUser = %q, want default", cfg.SettingsUser)
	}
	if cfg.LogLevel != "info" || cfg.Level() != slog.LevelInfo {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
	if !cfg.Commands() {
		t.Error("commands should be enabled by default")
	}
	if cfg.SendPhoto {
		t.Error("send_photo should default to false")
	}
	if !cfg.ScheduleEnabled() || !cfg.HTTPEnabled() {
		t.Error("schedule and HTTP should be enabled by default")
	}
}

func TestLoadOverrideDefaults(t *testing.T) {
	content := `
telegram_token: "test-token"
shopee_app_id: "app"
shopee_secret: "secret"
chat_id: -1001234567890
schedule: "09:30"
run_timeout_secs: 60
timezone: "UTC"
http_addr: "off"
store_driver: postgres
database_url: "postgres://localhost/pets"
categories: [101926, 100639]
blocked_keywords: ["gato", "areia"]
send_photo: true
commands_enabled: false
admin_user_ids: [42]
log_level: "debug"
`
	cfg, err := Load(writeConfig(t, content))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ChatID != "-1001234567890" {
		t.Errorf("ChatID = %q", cfg.ChatID)
	}
	if cfg.RunTimeout() != time.Minute {
		t.Errorf("RunTimeout() = %v, want 1m", cfg.RunTimeout())
	}
	if cfg.Schedule != "09:30" {
		t.Errorf("Schedule = %q", cfg.Schedule)
	}
	if cfg.HTTPEnabled() {
		t.Error("http_addr off should disable the listener")
	}
	if cfg.StoreDriver != "postgres" || cfg.DatabaseURL != "postgres://localhost/pets" {
		t.Errorf("store = %q %q", cfg.StoreDriver, cfg.DatabaseURL)
	}
	if len(cfg.Categories) != 2 || cfg.Categories[1] != 100639 {
		t.Errorf("Categories = %v", cfg.Categories)
	}
	if len(cfg.BlockedKeywords) != 2 {
		t.Errorf("BlockedKeywords = %v", cfg.BlockedKeywords)
	}
	if !cfg.SendPhoto {
		t.Error("SendPhoto should be true")
	}
	if cfg.Commands() {
		t.Error("commands_enabled false should disable commands")
	}
	if len(cfg.AdminUserIDs) != 1 || cfg.AdminUserIDs[0] != 42 {
		t.Errorf("AdminUserIDs = %v", cfg.AdminUserIDs)
	}
	if cfg.Level() != slog.LevelDebug {
		t.Errorf("Level() = %v, want debug", cfg.Level())
	}
}

func TestLoadChannelChatID(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`chat_id: "@petofertas"`+"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ChatID != "@petofertas" {
		t.Errorf("ChatID = %q", cfg.ChatID)
	}
}

func TestScheduleOff(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig+`schedule: "off"`+"\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ScheduleEnabled() {
		t.Error("schedule off should disable scheduled runs")
	}
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_CHAT_ID", "@fromenv")
	t.Setenv("SHOPEE_APP_ID", "env-app")
	t.Setenv("SHOPEE_SECRET", "env-secret")
	t.Setenv("PET_OFFERS_DB", "/data/pets.db")
	t.Setenv("REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load(writeConfig(t, "timezone: UTC\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.TelegramToken != "env-token" {
		t.Errorf("TelegramToken = %q", cfg.TelegramToken)
	}
	if cfg.ChatID != "@fromenv" {
		t.Errorf("ChatID = %q", cfg.ChatID)
	}
	if cfg.ShopeeAppID != "env-app" || cfg.ShopeeSecret != "env-secret" {
		t.Errorf("shopee credentials = %q %q", cfg.ShopeeAppID, cfg.ShopeeSecret)
	}
	if cfg.DBPath != "/data/pets.db" {
		t.Errorf("DBPath = %q", cfg.DBPath)
	}
	if cfg.RedisURL != "redis://localhost:6379/0" {
		t.Errorf("RedisURL = %q", cfg.RedisURL)
	}
}

func TestDatabaseURLFromEnvironment(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env/pets")

	cfg, err := Load(writeConfig(t, minimalConfig+"store_driver: postgres\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DatabaseURL != "postgres://env/pets" {
		t.Errorf("DatabaseURL = %q", cfg.DatabaseURL)
	}
}

func TestValidationErrors(t *testing.T) {
	for _, env := range []string{"TELEGRAM_BOT_TOKEN", "TELEGRAM_CHAT_ID", "SHOPEE_APP_ID", "SHOPEE_SECRET", "DATABASE_URL"} {
		t.Setenv(env, "")
	}

	tests := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "missing telegram token",
			content: "shopee_app_id: a\nshopee_secret: b\n",
			wantErr: "telegram_token is required",
		},
		{
			name:    "missing shopee credentials",
			content: "telegram_token: t\n",
			wantErr: "shopee_app_id and shopee_secret are required",
		},
		{
			name:    "invalid schedule",
			content: minimalConfig + "schedule: \"every day\"\n",
			wantErr: "invalid schedule",
		},
		{
			name:    "negative run timeout",
			content: minimalConfig + "run_timeout_secs: -5\n",
			wantErr: "run_timeout_secs must not be negative",
		},
		{
			name:    "invalid timezone",
			content: minimalConfig + "timezone: \"Mars/Olympus\"\n",
			wantErr: "invalid timezone",
		},
		{
			name:    "unknown store driver",
			content: minimalConfig + "store_driver: mysql\n",
			wantErr: "store_driver must be sqlite or postgres",
		},
		{
			name:    "postgres without url",
			content: minimalConfig + "store_driver: postgres\n",
			wantErr: "database_url is required",
		},
		{
			name:    "bad chat id",
			content: minimalConfig + "chat_id: petofertas\n",
			wantErr: "chat_id must be",
		},
		{
			name:    "negative category",
			content: minimalConfig + "categories: [-1]\n",
			wantErr: "categories must be positive",
		},
		{
			name:    "bad log level",
			content: minimalConfig + "log_level: loud\n",
			wantErr: "invalid log_level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want it to contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Setenv("PET_OFFERS_CONFIG", "")
	if got := GetConfigPath(); got != "./config.yaml" {
		t.Errorf("GetConfigPath() = %q, want ./config.yaml", got)
	}

	t.Setenv("PET_OFFERS_CONFIG", "/etc/pets.yaml")
	if got := GetConfigPath(); got != "/etc/pets.yaml" {
		t.Errorf("GetConfigPath() = %q, want /etc/pets.yaml", got)
	}
}
