package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shrek82/minorm/logger"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "minorm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: postgres
  dsn: postgres://localhost/app
  max_open_conns: 8
  max_idle_conns: 2
  conn_max_lifetime: 5m
log:
  level: warn
  format: json
  slow_threshold: 200ms
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/app", cfg.Database.DSN)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 200*time.Millisecond, cfg.Log.SlowThreshold)

	opts := cfg.PoolOptions()
	assert.Equal(t, 8, opts.MaxOpenConns)
	assert.Equal(t, 2, opts.MaxIdleConns)
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: file:app.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, DefaultDriver, cfg.Database.Driver)
	assert.Equal(t, DefaultLevel, cfg.Log.Level)
	assert.Equal(t, DefaultFormat, cfg.Log.Format)
	assert.Zero(t, cfg.Log.SlowThreshold)
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: file:app.db\n  max_open_conns: 4\n")
	t.Setenv("MINORM_DATABASE_DSN", "file:other.db")
	t.Setenv("MINORM_DATABASE_MAX_OPEN_CONNS", "16")
	t.Setenv("MINORM_LOG_LEVEL", "error")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "file:other.db", cfg.Database.DSN)
	assert.Equal(t, 16, cfg.Database.MaxOpenConns)
	assert.Equal(t, "error", cfg.Log.Level)
}

func TestLoadFlagOverrides(t *testing.T) {
	path := writeConfig(t, "database:\n  dsn: file:app.db\n")
	t.Setenv("MINORM_DATABASE_DRIVER", "mysql")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("driver", "", "")
	fs.String("dsn", "", "")
	fs.String("log-format", "", "")
	require.NoError(t, fs.Parse([]string{"--driver", "sqlite", "--log-format", "json"}))

	cfg, err := LoadWithFlags(path, fs)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "file:app.db", cfg.Database.DSN, "unset flags must not override")
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing dsn", "database:\n  driver: mysql\n"},
		{"unknown level", "database:\n  dsn: x\nlog:\n  level: loud\n"},
		{"unknown format", "database:\n  dsn: x\nlog:\n  format: xml\n"},
		{"negative slow threshold", "database:\n  dsn: x\nlog:\n  slow_threshold: -1s\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.Error(t, err)
	})
}

func TestNewLogger(t *testing.T) {
	cfg := &Config{Log: Log{Level: "silent", Format: "json"}}
	l := cfg.NewLogger()
	require.NotNil(t, l)

	_, err := logger.ParseLevel(cfg.Log.Level)
	assert.NoError(t, err)
}
