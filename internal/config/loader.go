// Package config loads service configuration from layered sources: built-in
// defaults, an optional YAML file, and EVENTHORIZON_ environment variables,
// each layer overriding the previous one.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "EVENTHORIZON_"

// Config captures the runtime settings of the calendar service.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Session  SessionConfig  `koanf:"session"`
	Auth     AuthConfig     `koanf:"auth"`
	Logging  LoggingConfig  `koanf:"logging"`
}

type ServerConfig struct {
	Addr string `koanf:"addr"`
}

type DatabaseConfig struct {
	DSN string `koanf:"dsn"`
}

type SessionConfig struct {
	TTL time.Duration `koanf:"ttl"`
	// SweepSchedule is a cron expression for the expired-session sweep.
	SweepSchedule string `koanf:"sweep"`
}

type AuthConfig struct {
	// VerifyPasswords makes login check the submitted password against the
	// stored hash for known accounts instead of trusting it.
	VerifyPasswords bool `koanf:"verify"`
}

type LoggingConfig struct {
	Level string `koanf:"level"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"server": map[string]interface{}{
			"addr": ":8080",
		},
		"database": map[string]interface{}{
			"dsn": "file:eventhorizon.db",
		},
		"session": map[string]interface{}{
			"ttl":   "24h",
			"sweep": "@hourly",
		},
		"auth": map[string]interface{}{
			"verify": false,
		},
		"logging": map[string]interface{}{
			"level": "info",
		},
	}
}

// Load assembles the configuration. configPath may be empty; a missing file
// at an explicitly provided path is an error, since the operator asked for it.
func Load(configPath string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath != "" {
		if _, err := os.Stat(configPath); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", configPath, err)
		}
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	// EVENTHORIZON_SERVER_ADDR overrides server.addr, and so on.
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".")
	}), nil); err != nil {
		return Config{}, fmt.Errorf("failed to load environment: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if strings.TrimSpace(c.Server.Addr) == "" {
		return fmt.Errorf("server.addr must not be empty")
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("database.dsn must not be empty")
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if strings.TrimSpace(c.Session.SweepSchedule) == "" {
		return fmt.Errorf("session.sweep must not be empty")
	}
	return nil
}
