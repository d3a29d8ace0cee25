// Package config loads server settings from defaults, an optional config
// file and PACKLIST_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const EnvPrefix = "PACKLIST"

type Config struct {
	Port            string        `mapstructure:"port"`
	DBPath          string        `mapstructure:"db_path"`
	LogLevel        string        `mapstructure:"log_level"`
	LogFormat       string        `mapstructure:"log_format"`
	RedisURL        string        `mapstructure:"redis_url"`
	VersionDebounce time.Duration `mapstructure:"version_debounce"`
	UndoLimit       int           `mapstructure:"undo_limit"`
	WriteLimit      int           `mapstructure:"write_limit"`
}

// New returns a viper instance with defaults and environment binding set up.
func New() *viper.Viper {
	v := viper.New()
	v.SetDefault("port", "8080")
	v.SetDefault("db_path", "packlist.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("redis_url", "")
	v.SetDefault("version_debounce", 30*time.Second)
	v.SetDefault("undo_limit", 20)
	v.SetDefault("write_limit", 120)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads file when it is non-empty and decodes the merged settings.
func Load(v *viper.Viper, file string) (Config, error) {
	if file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", file, err)
		}
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Port == "" {
		errs = append(errs, errors.New("port is required"))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is required"))
	}
	if c.VersionDebounce <= 0 {
		errs = append(errs, fmt.Errorf("version_debounce must be positive, got %s", c.VersionDebounce))
	}
	if c.UndoLimit <= 0 {
		errs = append(errs, fmt.Errorf("undo_limit must be positive, got %d", c.UndoLimit))
	}
	return errors.Join(errs...)
}
