// Package config loads and validates migrator configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all service configuration knobs loaded via Viper.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Source    SourceConfig    `mapstructure:"source"`
	DB        DBConfig        `mapstructure:"db"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Migration MigrationConfig `mapstructure:"migration"`
}

// ServerConfig controls the ops HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// SourceConfig governs the wiki fetcher.
type SourceConfig struct {
	BaseURL         string  `mapstructure:"base_url"`
	UserAgent       string  `mapstructure:"user_agent"`
	TimeoutSeconds  int     `mapstructure:"timeout_seconds"`
	BatchSize       int     `mapstructure:"batch_size"`
	CooldownSeconds int     `mapstructure:"cooldown_seconds"`
	RPS             float64 `mapstructure:"rps"`
}

// DBConfig controls access to the catalog database.
type DBConfig struct {
	DSN             string `mapstructure:"dsn"`
	MaxConns        int32  `mapstructure:"max_conns"`
	MinConns        int32  `mapstructure:"min_conns"`
	ConnLifetimeMin int    `mapstructure:"conn_lifetime_minutes"`
}

// LoggingConfig toggles zap development features and sets where the
// categorized logs live.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	Dir         string `mapstructure:"dir"`
}

// MigrationConfig carries catalog defaults applied to extracted drafts.
type MigrationConfig struct {
	PublisherName     string `mapstructure:"publisher_name"`
	PublisherOriginal bool   `mapstructure:"publisher_original"`
	DefaultFormat     string `mapstructure:"default_format"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MIGRATOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("source.user_agent", "catalog-migrator/0.1")
	v.SetDefault("source.timeout_seconds", 15)
	v.SetDefault("source.batch_size", 25)
	v.SetDefault("source.cooldown_seconds", 30)
	v.SetDefault("source.rps", 2.0)
	v.SetDefault("db.max_conns", 4)
	v.SetDefault("db.min_conns", 1)
	v.SetDefault("db.conn_lifetime_minutes", 30)
	v.SetDefault("logging.development", true)
	v.SetDefault("migration.publisher_name", "Marvel")
	v.SetDefault("migration.publisher_original", true)
	v.SetDefault("migration.default_format", "")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	if c.Source.BaseURL == "" {
		return fmt.Errorf("source.base_url is required")
	}
	if c.Source.TimeoutSeconds <= 0 {
		return fmt.Errorf("source.timeout_seconds must be > 0")
	}
	if c.Source.BatchSize <= 0 {
		return fmt.Errorf("source.batch_size must be > 0")
	}
	if c.Source.CooldownSeconds <= 0 {
		return fmt.Errorf("source.cooldown_seconds must be > 0")
	}
	return nil
}

// Timeout converts the fetch timeout into a duration.
func (c Config) Timeout() time.Duration {
	return time.Duration(c.Source.TimeoutSeconds) * time.Second
}

// Cooldown converts the pacing cooldown into a duration.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.Source.CooldownSeconds) * time.Second
}

// ConnLifetime converts the pool lifetime into a duration.
func (c Config) ConnLifetime() time.Duration {
	return time.Duration(c.DB.ConnLifetimeMin) * time.Minute
}
