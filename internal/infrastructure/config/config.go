// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for balance configuration.
	DefaultConfigDir = ".balance"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDatabaseFile is the default changelog database file name.
	DefaultDatabaseFile = "changelog.db"
	// DefaultDataDir is the default entity root, relative to the project.
	DefaultDataDir = "data"
)

// Environment variables that override file settings.
const (
	EnvDataDir   = "BALANCE_DATA_DIR"
	EnvDBPath    = "BALANCE_DB_PATH"
	EnvLogLevel  = "LOG_LEVEL"
	EnvLogFormat = "LOG_FORMAT"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	Data   DataConfig   `yaml:"data,omitempty"`
	SQLite SQLiteConfig `yaml:"sqlite,omitempty"`
	Log    LogConfig    `yaml:"log,omitempty"`
}

// DataConfig locates the entity files.
type DataConfig struct {
	// Dir holds one subdirectory per category. Relative paths are resolved
	// against the project root.
	Dir string `yaml:"dir,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite changelog database.
type SQLiteConfig struct {
	Path string `yaml:"path,omitempty"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`
	Format string `yaml:"format,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Data: DataConfig{
			Dir: DefaultDataDir,
		},
		SQLite: SQLiteConfig{
			Path: filepath.Join(DefaultConfigDir, DefaultDatabaseFile),
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load loads configuration from the .balance directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'balance init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dir := os.Getenv(EnvDataDir); dir != "" {
		c.Data.Dir = dir
	}
	if path := os.Getenv(EnvDBPath); path != "" {
		c.SQLite.Path = path
	}
	if level := os.Getenv(EnvLogLevel); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv(EnvLogFormat); format != "" {
		c.Log.Format = format
	}
}

// DataDir returns the entity root, resolved against basePath when relative.
func (c *Config) DataDir(basePath string) string {
	return resolve(basePath, c.Data.Dir)
}

// DatabasePath returns the changelog database path, resolved against
// basePath when relative. ":memory:" is returned unchanged.
func (c *Config) DatabasePath(basePath string) string {
	if c.SQLite.Path == ":memory:" {
		return c.SQLite.Path
	}
	return resolve(basePath, c.SQLite.Path)
}

func resolve(basePath, p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// ConfigDir returns the path to the .balance config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}
