// Package config loads workbench settings from a YAML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/pablasso/workbench/internal/store"
)

const appName = "workbench"

// Config holds the runtime settings.
type Config struct {
	DataDir  string        `yaml:"dataDir"`
	Backend  store.Backend `yaml:"backend"`
	LogFile  string        `yaml:"logFile,omitempty"`
	LogLevel string        `yaml:"logLevel"`
}

// DefaultPath returns the config file looked up when none is given.
func DefaultPath() string {
	return filepath.Join(xdg.ConfigHome, appName, "config.yaml")
}

// Default returns the settings used when no config file exists.
func Default() Config {
	return Config{
		DataDir:  filepath.Join(xdg.DataHome, appName),
		Backend:  store.BackendFile,
		LogLevel: "info",
	}
}

// Load reads the config file at path over the defaults. A missing file is
// only an error when required is true.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !required {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks the backend and log level and fills derived defaults.
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return errors.New("dataDir must not be empty")
	}
	backend, err := store.ParseBackend(string(c.Backend))
	if err != nil {
		return err
	}
	c.Backend = backend

	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
	}
	return nil
}

// LogPath returns the log file, defaulting to workbench.log in the data
// directory.
func (c Config) LogPath() string {
	if c.LogFile != "" {
		return c.LogFile
	}
	return filepath.Join(c.DataDir, appName+".log")
}
