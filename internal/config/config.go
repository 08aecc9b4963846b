// Package config loads userstore settings from defaults, an optional YAML
// file, USERSTORE_* environment variables and command-line flags, in that
// order of precedence.
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

const (
	DefaultDBPath   = "./db/development.sqlite"
	DefaultLogLevel = "info"
	EnvPrefix       = "USERSTORE"
)

// Config is the resolved configuration for one invocation.
type Config struct {
	DBPath   string        `mapstructure:"db" validate:"required"`
	LogLevel string        `mapstructure:"log_level" validate:"required,oneof=info debug trace"`
	Log      LogConfig     `mapstructure:"log"`
	Timeouts TimeoutConfig `mapstructure:"timeouts"`
}

// LogConfig controls the rotating log file.
type LogConfig struct {
	// File is the log file path. Empty means next to the database file.
	File       string `mapstructure:"file"`
	MaxSizeMB  int    `mapstructure:"max_size_mb" validate:"gt=0"`
	MaxBackups int    `mapstructure:"max_backups" validate:"gte=0"`
	MaxAgeDays int    `mapstructure:"max_age_days" validate:"gte=0"`
	Compress   bool   `mapstructure:"compress"`
}

// New returns a viper instance with defaults and environment binding applied.
func New() *viper.Viper {
	v := viper.New()

	v.SetDefault("db", DefaultDBPath)
	v.SetDefault("log_level", DefaultLogLevel)
	v.SetDefault("log.file", "")
	v.SetDefault("log.max_size_mb", 50)
	v.SetDefault("log.max_backups", 5)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("log.compress", true)

	timeouts := DefaultTimeoutConfig()
	v.SetDefault("timeouts.query", timeouts.Query)
	v.SetDefault("timeouts.watch_debounce", timeouts.WatchDebounce)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

// Load reads configFile (if set) into v, unmarshals and validates the result.
func Load(v *viper.Viper, configFile string) (*Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
