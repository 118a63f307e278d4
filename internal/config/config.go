// Package config provides configuration utilities for the application.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/shopkeep/internal/common"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides (SHOPKEEP_SERVER_PORT, ...).
const EnvPrefix = "SHOPKEEP"

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	IsDevel         bool          `mapstructure:"devel"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DatabaseConfig selects and tunes the SQL backend.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"`
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	AutoMigrate     bool          `mapstructure:"auto_migrate"`
}

// AuthConfig tunes the local identity provider and sessions.
type AuthConfig struct {
	SessionTTL        time.Duration `mapstructure:"session_ttl"`
	MinPasswordLength int           `mapstructure:"min_password_length"`
	BcryptCost        int           `mapstructure:"bcrypt_cost"`
}

// LoggingConfig selects the slog level and handler.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("server.devel", false)

	v.SetDefault("database.driver", "sqlite3")
	v.SetDefault("database.dsn", "~/.local/share/shopkeep/shopkeep.db")
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", 10*time.Minute)
	v.SetDefault("database.auto_migrate", true)

	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.min_password_length", 6)
	v.SetDefault("auth.bcrypt_cost", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
}

// BindEnv wires SHOPKEEP_* environment variables into v.
func BindEnv(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if cfg.Database.Driver == "sqlite3" {
		cfg.Database.DSN = ExpandPath(cfg.Database.DSN)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration for values the application cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("%w: unsupported database driver %q", common.ErrInvalidConfig, c.Database.Driver)
	}
	if c.Database.DSN == "" {
		return fmt.Errorf("%w: database.dsn", common.ErrMissingConfig)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("%w: server.port %d out of range", common.ErrInvalidConfig, c.Server.Port)
	}
	if c.Auth.SessionTTL <= 0 {
		return fmt.Errorf("%w: auth.session_ttl must be positive", common.ErrInvalidConfig)
	}
	if c.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("%w: auth.min_password_length must be at least 1", common.ErrInvalidConfig)
	}
	return nil
}
