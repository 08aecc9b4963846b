package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, DefaultDBPath, cfg.DBPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "", cfg.Log.File)
	assert.Equal(t, 50, cfg.Log.MaxSizeMB)
	assert.Equal(t, 5, cfg.Log.MaxBackups)
	assert.Equal(t, 30, cfg.Log.MaxAgeDays)
	assert.True(t, cfg.Log.Compress)
	assert.Equal(t, time.Duration(0), cfg.Timeouts.Query)
	assert.Equal(t, 250*time.Millisecond, cfg.Timeouts.WatchDebounce)
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Setenv("USERSTORE_DB", "/tmp/users.sqlite")
	t.Setenv("USERSTORE_LOG_LEVEL", "debug")
	t.Setenv("USERSTORE_TIMEOUTS_QUERY", "3s")
	t.Setenv("USERSTORE_LOG_MAX_BACKUPS", "2")

	cfg, err := Load(New(), "")
	require.NoError(t, err)

	assert.Equal(t, "/tmp/users.sqlite", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 3*time.Second, cfg.Timeouts.Query)
	assert.Equal(t, 2, cfg.Log.MaxBackups)
}

func TestLoad_ConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userstore.yaml")
	content := `
db: ./data/users.sqlite
log_level: trace
log:
  file: ./logs/userstore.log
  compress: false
timeouts:
  watch_debounce: 1s
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)

	assert.Equal(t, "./data/users.sqlite", cfg.DBPath)
	assert.Equal(t, "trace", cfg.LogLevel)
	assert.Equal(t, "./logs/userstore.log", cfg.Log.File)
	assert.False(t, cfg.Log.Compress)
	assert.Equal(t, time.Second, cfg.Timeouts.WatchDebounce)
	assert.Equal(t, 50, cfg.Log.MaxSizeMB, "unset keys keep their defaults")
}

func TestLoad_EnvBeatsConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "userstore.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: ./from-file.sqlite\n"), 0o644))
	t.Setenv("USERSTORE_DB", "./from-env.sqlite")

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	assert.Equal(t, "./from-env.sqlite", cfg.DBPath)
}

func TestLoad_MissingConfigFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{"unknown log level", "log_level", "loud"},
		{"empty db path", "db", ""},
		{"zero log size", "log.max_size_mb", 0},
		{"negative query timeout", "timeouts.query", -time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Set(tt.key, tt.val)

			_, err := Load(v, "")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid configuration")
		})
	}
}
