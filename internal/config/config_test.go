package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.False(t, Exists())
}

func TestSaveAndLoad(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.General.Calendar = "gregorian"
	cfg.Currency.Code = "USD"
	cfg.Currency.Fraction = 2
	cfg.Daemon.Schedule = "@hourly"
	require.NoError(t, Save(cfg))
	assert.True(t, Exists())

	got, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[currency]\nlabel = \"Toman\"\n"), 0o600))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "Toman", cfg.Currency.Label)
	assert.Equal(t, "IRR", cfg.Currency.Code)
	assert.Equal(t, "jalali", cfg.General.Calendar)
	assert.Equal(t, "127.0.0.1:8797", cfg.Daemon.Addr)
}

func TestLoadRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[general\n"), 0o600))

	_, err := LoadFrom(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestDBPathPrecedence(t *testing.T) {
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)
	t.Setenv("AQSAT_DB_PATH", "")

	cfg := DefaultConfig()
	assert.Equal(t, filepath.Join(data, "aqsat", "aqsat.db"), DBPath(cfg))

	cfg.General.DBPath = "/srv/aqsat.db"
	assert.Equal(t, "/srv/aqsat.db", DBPath(cfg))

	t.Setenv("AQSAT_DB_PATH", "/tmp/custom.db")
	assert.Equal(t, "/tmp/custom.db", DBPath(cfg))
}

func TestLogLevelPrecedence(t *testing.T) {
	t.Setenv("AQSAT_LOG_LEVEL", "")
	cfg := DefaultConfig()
	assert.Empty(t, LogLevel(cfg))

	cfg.General.LogLevel = "info"
	assert.Equal(t, "info", LogLevel(cfg))

	t.Setenv("AQSAT_LOG_LEVEL", "debug")
	assert.Equal(t, "debug", LogLevel(cfg))
}
