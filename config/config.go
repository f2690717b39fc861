// Package config loads minorm settings from defaults, an optional YAML file,
// MINORM_ environment variables and command-line flags, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/shrek82/minorm/logger"
	"github.com/shrek82/minorm/pool"
)

const (
	// DefaultFile is the config file looked up when no path is given.
	DefaultFile   = "minorm.yaml"
	DefaultDriver = "sqlite3"
	DefaultLevel  = "info"
	DefaultFormat = "text"

	envPrefix = "MINORM_"
)

// ErrInvalid is returned by Validate for unusable settings.
var ErrInvalid = errors.New("invalid config")

// Config is the full set of settings.
type Config struct {
	Database Database `koanf:"database"`
	Log      Log      `koanf:"log"`
}

// Database holds connection settings.
type Database struct {
	Driver          string        `koanf:"driver"`
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
}

// Log holds logger settings.
type Log struct {
	Level         string        `koanf:"level"`
	Format        string        `koanf:"format"`
	SlowThreshold time.Duration `koanf:"slow_threshold"`
}

// flagKeys maps CLI flag names to config keys.
var flagKeys = map[string]string{
	"driver":         "database.driver",
	"dsn":            "database.dsn",
	"log-level":      "log.level",
	"log-format":     "log.format",
	"slow-threshold": "log.slow_threshold",
}

// Load reads path (or DefaultFile when path is empty and the file exists)
// and applies environment overrides.
func Load(path string) (*Config, error) {
	return LoadWithFlags(path, nil)
}

// LoadWithFlags is Load with explicitly set flags from fs taking priority
// over every other source.
func LoadWithFlags(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"database.driver": DefaultDriver,
		"log.level":       DefaultLevel,
		"log.format":      DefaultFormat,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			path = DefaultFile
		}
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	// 3. Environment: MINORM_DATABASE_MAX_OPEN_CONNS -> database.max_open_conns
	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.Replace(strings.ToLower(strings.TrimPrefix(s, envPrefix)), "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags
	if fs != nil {
		if err := k.Load(posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, interface{}) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks that the settings can open a factory.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Driver) == "" {
		return fmt.Errorf("%w: database.driver is empty", ErrInvalid)
	}
	if strings.TrimSpace(c.Database.DSN) == "" {
		return fmt.Errorf("%w: database.dsn is empty", ErrInvalid)
	}
	if _, err := logger.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	switch logger.LogFormat(strings.ToLower(c.Log.Format)) {
	case logger.LogFormatText, logger.LogFormatJSON:
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalid, c.Log.Format)
	}
	if c.Log.SlowThreshold < 0 {
		return fmt.Errorf("%w: log.slow_threshold is negative", ErrInvalid)
	}
	return nil
}

// PoolOptions returns the pool settings.
func (c *Config) PoolOptions() *pool.Options {
	return &pool.Options{
		MaxOpenConns:    c.Database.MaxOpenConns,
		MaxIdleConns:    c.Database.MaxIdleConns,
		ConnMaxLifetime: c.Database.ConnMaxLifetime,
	}
}

// NewLogger builds a logger from the log settings. Call it after Validate.
func (c *Config) NewLogger() logger.Logger {
	l := logger.NewStdLogger()
	if level, err := logger.ParseLevel(c.Log.Level); err == nil {
		l.SetLevel(level)
	}
	l.SetFormat(logger.LogFormat(strings.ToLower(c.Log.Format)))
	return l
}
