// Package config loads runtime settings from the environment, an optional
// .env file and an optional config file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store backends accepted in STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config holds runtime configuration.
type Config struct {
	Addr                 string
	Store                string
	DatabaseURL          string
	DatabaseDriver       string
	SQLitePath           string
	WebDir               string
	CorsOrigins          []string
	LogLevel             string
	LogFormat            string
	AuthDisabled         bool
	UserID               int64
	SessionPurgeSchedule string
	OIDC                 OIDC
}

// OIDC configures single sign-on. It is enabled when the issuer and client
// id are both set.
type OIDC struct {
	Issuer       string
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func (o OIDC) Enabled() bool {
	return o.Issuer != "" && o.ClientID != ""
}

var defaults = map[string]any{
	"ADDR":                   ":8080",
	"STORE":                  StoreSQLite,
	"DATABASE_DRIVER":        "postgres",
	"SQLITE_PATH":            "fitlog.db",
	"WEB_DIR":                "web",
	"LOG_LEVEL":              "info",
	"LOG_FORMAT":             "json",
	"AUTH_DISABLED":          false,
	"USER_ID":                1,
	"SESSION_PURGE_SCHEDULE": "@hourly",
}

// Load reads .env files (missing files are ignored), then the file named by
// CONFIG_FILE if set, then the process environment, which wins.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if file := os.Getenv("CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", file, err)
		}
	}

	cfg := &Config{
		Addr:                 strings.TrimSpace(v.GetString("ADDR")),
		Store:                strings.ToLower(strings.TrimSpace(v.GetString("STORE"))),
		DatabaseURL:          strings.TrimSpace(v.GetString("DATABASE_URL")),
		DatabaseDriver:       strings.TrimSpace(v.GetString("DATABASE_DRIVER")),
		SQLitePath:           strings.TrimSpace(v.GetString("SQLITE_PATH")),
		WebDir:               v.GetString("WEB_DIR"),
		CorsOrigins:          parseCSV(v.GetString("CORS_ORIGINS")),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
		AuthDisabled:         v.GetBool("AUTH_DISABLED"),
		UserID:               v.GetInt64("USER_ID"),
		SessionPurgeSchedule: v.GetString("SESSION_PURGE_SCHEDULE"),
		OIDC: OIDC{
			Issuer:       v.GetString("OIDC_ISSUER"),
			ClientID:     v.GetString("OIDC_CLIENT_ID"),
			ClientSecret: v.GetString("OIDC_CLIENT_SECRET"),
			RedirectURL:  v.GetString("OIDC_REDIRECT_URL"),
		},
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations Load cannot default away.
func (c *Config) Validate() error {
	switch c.Store {
	case StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORE=postgres")
		}
	default:
		return fmt.Errorf("unknown STORE %q", c.Store)
	}
	if c.Store == StoreSQLite && c.SQLitePath == "" {
		return errors.New("SQLITE_PATH is required when STORE=sqlite")
	}
	if c.LogFormat != "json" && c.LogFormat != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console, got %q", c.LogFormat)
	}
	if c.UserID <= 0 {
		return errors.New("USER_ID must be positive")
	}
	return nil
}

func parseCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		value := strings.TrimSpace(part)
		if value != "" {
			items = append(items, value)
		}
	}
	return items
}
