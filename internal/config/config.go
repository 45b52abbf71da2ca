// Package config loads and validates feedlist configuration.
//
// Configuration is read from YAML (~/.feedlist/config.yaml by default),
// optionally overlaid by a project-local .feedlist/config.yaml, then by
// environment variables. Every section has working defaults, so a missing
// file is not an error.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Configuration file and directory names.
const (
	configDirName  = ".feedlist"
	configFileName = "config.yaml"
	configFileMode = 0o600
	configDirMode  = 0o700
)

// Environment variables consulted by the config package.
const (
	EnvHome      = "FEEDLIST_HOME"
	EnvConfig    = "FEEDLIST_CONFIG"
	EnvLogLevel  = "FEEDLIST_LOG_LEVEL"
	EnvLogFormat = "FEEDLIST_LOG_FORMAT"
	EnvAnchor    = "FEEDLIST_ANCHOR"
)

// Common configuration errors.
var (
	ErrConfigNotFound = errors.New("config file not found")
	ErrNilConfig      = errors.New("nil config")
)

// Config is the complete feedlist configuration.
type Config struct {
	// Version is the config schema version, checked against SupportedVersions.
	Version string        `yaml:"version"`
	List    ListConfig    `yaml:"list"`
	Feed    FeedConfig    `yaml:"feed"`
	Logging LoggingConfig `yaml:"logging"`

	// path is the file this config was loaded from, if any.
	path string
}

// New returns a Config with defaults for every section.
func New() *Config {
	return &Config{
		Version: CurrentVersion,
		List:    DefaultListConfig(),
		Feed:    DefaultFeedConfig(),
		Logging: DefaultLoggingConfig(),
	}
}

// Load reads the config at path on top of the defaults. An empty path resolves
// to the default location; a missing default file yields the defaults, while a
// missing explicit file is ErrConfigNotFound.
func Load(path string) (*Config, error) {
	cfg := New()

	explicit := path != ""
	if !explicit {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = defaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if explicit {
				return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			cfg.ApplyEnv()
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	cfg.path = path
	cfg.ApplyEnv()

	return cfg, nil
}

// Path returns the file the config was loaded from, or "".
func (c *Config) Path() string {
	return c.path
}

// ApplyEnv applies environment variable overrides.
func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv(EnvLogFormat); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv(EnvAnchor); v != "" {
		c.List.Anchor = v
	}
}

// Validate checks every section and the schema version.
func (c *Config) Validate() error {
	if c == nil {
		return ErrNilConfig
	}
	if err := CheckVersion(c.Version); err != nil {
		return err
	}
	if err := c.List.Validate(); err != nil {
		return fmt.Errorf("list: %w", err)
	}
	if err := c.Feed.Validate(); err != nil {
		return fmt.Errorf("feed: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// Save writes the config as YAML to path, creating parent directories.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), configDirMode); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	// Write to a temporary file first, then rename for atomicity.
	tempPath := path + ".tmp"
	if err = os.WriteFile(tempPath, data, configFileMode); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err = os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming config file: %w", err)
	}

	c.path = path
	return nil
}

// GetConfigDir returns the feedlist configuration directory.
// FEEDLIST_HOME overrides the default of ~/.feedlist.
func GetConfigDir() (string, error) {
	if home := os.Getenv(EnvHome); home != "" {
		return home, nil
	}
	userHome, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(userHome, configDirName), nil
}

// DefaultConfigPath returns FEEDLIST_CONFIG, or config.yaml in the config directory.
func DefaultConfigPath() (string, error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, nil
	}
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}
