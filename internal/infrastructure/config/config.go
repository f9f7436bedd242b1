package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the CLI looks for a config file when none is given.
const DefaultPath = "./configs/assetdesk.yaml"

// Config is the root configuration structure for asset-desk.
// All configuration is loaded from YAML and can be overridden by environment variables.
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	UIState  UIStateConfig  `yaml:"ui_state"`
	Logging  LoggingConfig  `yaml:"logging"`
	Labels   LabelsConfig   `yaml:"labels"`
}

// DatabaseConfig contains SQLite settings for the domain store.
type DatabaseConfig struct {
	Path        string `yaml:"path"`
	WALMode     bool   `yaml:"wal_mode"`
	BusyTimeout int    `yaml:"busy_timeout"`

	// SeedSampleData loads the sample inventory into an empty database on start.
	SeedSampleData bool `yaml:"seed_sample_data"`
}

// UIStateConfig locates the view-state store. It is a separate file so that
// domain data can be copied or exported without presentation state.
type UIStateConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig contains logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// LabelsConfig selects the display language.
// Path, when set, is a key = value file merged over the bundled labels of
// that language. Keys it does not list keep their bundled text.
type LabelsConfig struct {
	Language string `yaml:"language"`
	Path     string `yaml:"path"`
}

// Load reads configuration from a YAML file and applies environment variable overrides.
//
// The configuration loading order is:
//  1. Default values (hardcoded)
//  2. YAML file values (override defaults)
//  3. Environment variables (override file values)
//
// Environment variables follow the pattern: ASSETDESK_SECTION_KEY
// For example: ASSETDESK_DATABASE_PATH, ASSETDESK_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	return finish(cfg)
}

// LoadOrDefault behaves like Load but falls back to defaults (plus
// environment overrides) when the file does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	return finish(defaultConfig())
}

func finish(cfg *Config) (*Config, error) {
	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// defaultConfig returns a Config with sensible defaults.
func defaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			Path:        "./data/assetdesk.db",
			WALMode:     true,
			BusyTimeout: 5,
		},
		UIState: UIStateConfig{
			Path: "./data/assetdesk-ui.db",
		},
		Logging: LoggingConfig{
			Level:  "warn",
			Format: "text",
			Output: "stderr",
		},
		Labels: LabelsConfig{
			Language: "en",
		},
	}
}

// applyEnvOverrides applies environment variable overrides to the configuration.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("ASSETDESK_DATABASE_PATH"); v != "" {
		cfg.Database.Path = v
	}
	if v := os.Getenv("ASSETDESK_DATABASE_SEED_SAMPLE_DATA"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Database.SeedSampleData = b
		}
	}
	if v := os.Getenv("ASSETDESK_UI_STATE_PATH"); v != "" {
		cfg.UIState.Path = v
	}
	if v := os.Getenv("ASSETDESK_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ASSETDESK_LANG"); v != "" {
		cfg.Labels.Language = v
	}
	if v := os.Getenv("ASSETDESK_LABELS_PATH"); v != "" {
		cfg.Labels.Path = v
	}
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var errs []string

	if c.Database.Path == "" {
		errs = append(errs, "database.path is required")
	}
	if c.Database.BusyTimeout < 0 {
		errs = append(errs, "database.busy_timeout must not be negative")
	}
	if c.UIState.Path == "" {
		errs = append(errs, "ui_state.path is required")
	} else if c.UIState.Path == c.Database.Path && c.Database.Path != ":memory:" {
		errs = append(errs, "ui_state.path must differ from database.path")
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, "logging.level must be debug, info, warn, or error")
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, "logging.format must be json or text")
	}
	switch c.Logging.Output {
	case "stdout", "stderr":
	default:
		errs = append(errs, "logging.output must be stdout or stderr")
	}

	if c.Labels.Language == "" {
		errs = append(errs, "labels.language is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors: %s", strings.Join(errs, "; "))
	}

	return nil
}

// GetBusyTimeout returns the database busy timeout as a Duration.
func (c *Config) GetBusyTimeout() time.Duration {
	return time.Duration(c.Database.BusyTimeout) * time.Second
}
