// Package config reads and writes the process configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config holds all aqsat process configuration. User preferences such as
// the reminder lead window live in the database, not here.
type Config struct {
	General  GeneralConfig  `toml:"general"`
	Currency CurrencyConfig `toml:"currency"`
	Daemon   DaemonConfig   `toml:"daemon"`
	TUI      TUIConfig      `toml:"tui"`
}

// GeneralConfig holds storage and display basics.
type GeneralConfig struct {
	DBPath   string `toml:"db_path,omitempty"`
	Calendar string `toml:"calendar"`
	LogLevel string `toml:"log_level,omitempty"`
}

// CurrencyConfig controls how amounts are printed.
type CurrencyConfig struct {
	Code     string `toml:"code"`
	Fraction int    `toml:"fraction"`
	Label    string `toml:"label,omitempty"`
}

// DaemonConfig holds reminder daemon settings.
type DaemonConfig struct {
	Addr         string `toml:"addr"`
	Schedule     string `toml:"schedule"`
	EventsBuffer int    `toml:"events_buffer"`
}

// TUIConfig holds dashboard settings.
type TUIConfig struct {
	UpcomingLimit int `toml:"upcoming_limit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			Calendar: "jalali",
		},
		Currency: CurrencyConfig{
			Code:     "IRR",
			Fraction: 0,
		},
		Daemon: DaemonConfig{
			Addr:         "127.0.0.1:8797",
			Schedule:     "0 9 * * *",
			EventsBuffer: 200,
		},
		TUI: TUIConfig{
			UpcomingLimit: 5,
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "aqsat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "aqsat")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// DataDir returns the XDG-compliant data directory holding the database
// and daemon files.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "aqsat")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "aqsat")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads the config file at path over the defaults.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config file
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// DBPath returns the database path from env var, config, or the default, in that order.
func DBPath(cfg Config) string {
	if p := strings.TrimSpace(os.Getenv("AQSAT_DB_PATH")); p != "" {
		return p
	}
	if cfg.General.DBPath != "" {
		return cfg.General.DBPath
	}
	return filepath.Join(DataDir(), "aqsat.db")
}

// LogLevel returns the log level from env var or config. Empty means the
// caller's default.
func LogLevel(cfg Config) string {
	if lvl := strings.TrimSpace(os.Getenv("AQSAT_LOG_LEVEL")); lvl != "" {
		return lvl
	}
	return cfg.General.LogLevel
}
