// Package config loads cms settings from a YAML or TOML file.
//
// Files ending in .toml are decoded with BurntSushi/toml, anything else as
// YAML. ${VAR} references are expanded from the environment before
// decoding. Keys that are absent keep their Default value.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

// Config is the complete cms configuration.
type Config struct {
	Database DatabaseConfig `yaml:"database" toml:"database"`
	Journal  JournalConfig  `yaml:"journal" toml:"journal"`
	Logging  LoggingConfig  `yaml:"logging" toml:"logging"`
	Shell    ShellConfig    `yaml:"shell" toml:"shell"`
}

// DatabaseConfig names the primary and shadow files.
type DatabaseConfig struct {
	Primary    string `yaml:"primary" toml:"primary"`
	Autosave   string `yaml:"autosave" toml:"autosave"`
	AtomicSave *bool  `yaml:"atomic_save" toml:"atomic_save"`
}

// Atomic reports whether saves go through a temporary file and rename.
func (d DatabaseConfig) Atomic() bool {
	return d.AtomicSave == nil || *d.AtomicSave
}

// JournalConfig enables the SQLite audit journal when Path is set.
type JournalConfig struct {
	Path string `yaml:"path" toml:"path"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level string `yaml:"level" toml:"level"`
}

// ShellConfig tunes the interactive shell.
type ShellConfig struct {
	Color  string `yaml:"color" toml:"color"` // auto | always | never
	Prompt string `yaml:"prompt" toml:"prompt"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{
			Primary:  "P3_1-CMS.txt",
			Autosave: "autosave.txt",
		},
		Logging: LoggingConfig{Level: "info"},
		Shell: ShellConfig{
			Color:  "auto",
			Prompt: "CMS> ",
		},
	}
}

// Load reads a configuration file and overlays it on Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	expanded := expandEnvVars(string(data))

	cfg := Default()
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		if _, err := toml.Decode(expanded, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	} else {
		if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

var envRef = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} with the variable's value, or with an
// empty string when it is unset.
func expandEnvVars(s string) string {
	return envRef.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(envRef.FindStringSubmatch(match)[1])
	})
}

// Validate checks required fields and enumerations. It also normalizes
// logging.level, so "WARNING" is stored as "warn".
func (c *Config) Validate() error {
	if c.Database.Primary == "" {
		return fmt.Errorf("database.primary is required")
	}
	if c.Database.Autosave == "" {
		return fmt.Errorf("database.autosave is required")
	}
	if filepath.Clean(c.Database.Primary) == filepath.Clean(c.Database.Autosave) {
		return fmt.Errorf("database.autosave must differ from database.primary")
	}
	level := strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if level == "warning" {
		level = "warn"
	}
	switch level {
	case "debug", "info", "warn", "error":
		c.Logging.Level = level
	default:
		return fmt.Errorf("logging.level %q must be one of debug, info, warn, error", c.Logging.Level)
	}
	switch c.Shell.Color {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("shell.color %q must be one of auto, always, never", c.Shell.Color)
	}
	return nil
}
