package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Config represents the application configuration. It only controls the
// diagnostic log; terminal behaviour is fixed.
type Config struct {
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`   // empty disables logging
	LogFormat string `json:"log_format"` // "json" or "text"
}

// Default returns a configuration with default values
func Default() Config {
	return Config{
		LogLevel:  "info",
		LogFile:   "",
		LogFormat: "json",
	}
}

// Load loads configuration from the specified path.
// A missing file is not an error and yields the defaults; nothing is written.
func Load(configPath string) (Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Default(), fmt.Errorf("failed to read config: %w", err)
	}

	// Fields absent from the file keep their defaults
	cfg := Default()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks if the configuration is valid
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.LogLevel)) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("unsupported log_level: %q", c.LogLevel)
	}

	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case "", "json", "text":
	default:
		return fmt.Errorf("unsupported log_format: %q", c.LogFormat)
	}

	return nil
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".arc", "config.json")
	}
	return filepath.Join(homeDir, ".arc", "config.json")
}
