// Package config loads the rolo application configuration: a YAML file
// in the data directory with environment variable overrides on top.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all rolo configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Address book behavior
	Book BookConfig `yaml:"book"`

	// Storage paths
	Storage StorageConfig `yaml:"storage"`

	// Import watcher
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// BookConfig configures address book behavior.
type BookConfig struct {
	// How many days ahead the birthdays command looks by default.
	BirthdayHorizonDays int `yaml:"birthday_horizon_days"`
}

// StorageConfig configures where rolo keeps its data. Relative paths are
// resolved against the data directory.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path"`
	ImportDir    string `yaml:"import_dir"`
	ExportDir    string `yaml:"export_dir"`
}

// WatchConfig configures the snapshot import watcher.
type WatchConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Debounce string `yaml:"debounce"`
}

// LoggingConfig configures the category file loggers.
type LoggingConfig struct {
	Debug      bool            `yaml:"debug"`
	Level      string          `yaml:"level"` // debug, info, warn, error
	Categories map[string]bool `yaml:"categories,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "rolo",
		Version: "1.0.0",

		Book: BookConfig{
			BirthdayHorizonDays: 7,
		},

		Storage: StorageConfig{
			DatabasePath: "rolo.db",
			ImportDir:    "import",
			ExportDir:    "exports",
		},

		Watch: WatchConfig{
			Enabled:  true,
			Debounce: "500ms",
		},

		Logging: LoggingConfig{
			Debug: false,
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("ROLO_DEBUG"); v != "" {
		if debug, err := strconv.ParseBool(v); err == nil {
			c.Logging.Debug = debug
		}
	}
	if v := os.Getenv("ROLO_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("ROLO_BIRTHDAY_HORIZON"); v != "" {
		if days, err := strconv.Atoi(v); err == nil && days > 0 {
			c.Book.BirthdayHorizonDays = days
		}
	}
	if v := os.Getenv("ROLO_DB"); v != "" {
		c.Storage.DatabasePath = v
	}
}

// GetWatchDebounce returns the import watcher debounce as a duration.
func (c *Config) GetWatchDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil || d <= 0 {
		return 500 * time.Millisecond
	}
	return d
}

// ResolvePath resolves a storage path against the data directory.
// Absolute paths pass through unchanged.
func ResolvePath(dataDir, path string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(dataDir, path)
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Book.BirthdayHorizonDays <= 0 {
		return fmt.Errorf("birthday_horizon_days must be positive, got %d", c.Book.BirthdayHorizonDays)
	}
	if c.Storage.DatabasePath == "" {
		return fmt.Errorf("storage database_path must not be empty")
	}
	switch c.Logging.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	return nil
}
