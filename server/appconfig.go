package server

import (
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// AppConfig defines application configuration loaded from files and environment.
type AppConfig struct {
	Env      string         `koanf:"env"`
	Listen   string         `koanf:"listen"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Valkey   ValkeyConfig   `koanf:"valkey"`
}

type DatabaseConfig struct {
	DSN string `koanf:"dsn"`
}

type AuthConfig struct {
	JWTSecret       string `koanf:"jwt_secret"`
	TokenTTLMinutes int    `koanf:"token_ttl_minutes"`
}

type ValkeyConfig struct {
	Addr string `koanf:"addr"`
}

// LoadConfig loads an AppConfig and returns it to the caller. Loading order:
// 1) config/config.yaml (optional)
// 2) config/config.<APP_ENV>.yaml (optional), APP_ENV defaults to "local"
// 3) Environment variables with prefix CRM_ mapped using __ as nested separator, e.g. CRM_DATABASE__DSN
func LoadConfig() *AppConfig {
	k := koanf.New(".")
	// Config directory (CONFIG_DIR) default ./config
	configDir := os.Getenv("CONFIG_DIR")
	if configDir == "" {
		configDir = "config"
	}
	// Whether to load files (default: disabled to keep tests isolated)
	loadFiles := strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "1") || strings.EqualFold(os.Getenv("APP_CONFIG_FILES"), "true")
	envName := os.Getenv("APP_ENV")
	if envName == "" {
		envName = "local"
	}
	if loadFiles {
		for _, name := range []string{"config.yaml", "config." + envName + ".yaml"} {
			path := filepath.Join(configDir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				log.Printf("config: failed loading %s: %v", name, err)
			}
		}
	}
	// env vars: CRM_ prefix, __ delim for nesting
	_ = k.Load(env.Provider("CRM_", "__", func(s string) string {
		// CRM_DATABASE__DSN -> database.dsn
		return s
	}), nil)

	var c AppConfig
	if err := k.Unmarshal("", &c); err != nil {
		log.Printf("config: unmarshal error: %v", err)
	}
	if c.Env == "" {
		c.Env = envName
	}
	if c.Listen == "" {
		c.Listen = ":8080"
	}
	return &c
}

// DatabaseDSN returns the effective DSN (config first, then env).
func (c *AppConfig) DatabaseDSN() string {
	if c != nil && c.Database.DSN != "" {
		return strings.TrimSpace(c.Database.DSN)
	}
	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		dsn = strings.TrimSpace(os.Getenv("MIGRATE_DSN"))
	}
	return dsn
}

// JWTSecret returns the token signing secret (config first, then env).
func (c *AppConfig) JWTSecret() string {
	if c != nil && c.Auth.JWTSecret != "" {
		return strings.TrimSpace(c.Auth.JWTSecret)
	}
	return strings.TrimSpace(os.Getenv("JWT_SECRET"))
}

// TokenTTL returns the access token lifetime, defaulting to one hour.
func (c *AppConfig) TokenTTL() time.Duration {
	if c != nil && c.Auth.TokenTTLMinutes > 0 {
		return time.Duration(c.Auth.TokenTTLMinutes) * time.Minute
	}
	return time.Hour
}
