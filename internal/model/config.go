package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// RetryConfig holds the backoff parameters for ticket creation calls.
type RetryConfig struct {
	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration `mapstructure:"base_delay" yaml:"base_delay"`

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration `mapstructure:"max_delay" yaml:"max_delay"`

	// MaxAttempts is the total number of attempts, the first included.
	MaxAttempts int `mapstructure:"max_attempts" yaml:"max_attempts"`
}

// Config is the full importer configuration, loaded from a YAML file.
type Config struct {
	// Domain is the helpdesk subdomain (e.g. "acme" for
	// acme.freshdesk.com). Required unless BaseURL is set.
	Domain string `mapstructure:"domain" yaml:"domain"`

	// BaseURL overrides the API root derived from Domain. Mainly for
	// self-hosted instances and tests.
	BaseURL string `mapstructure:"base_url" yaml:"base_url"`

	// APIKey authenticates against the helpdesk API. When empty, the
	// key is read from the system keyring instead.
	APIKey string `mapstructure:"api_key" yaml:"api_key"`

	// MboxPath is the mailbox archive to import.
	MboxPath string `mapstructure:"mbox_path" yaml:"mbox_path"`

	// DateField is the name of the helpdesk custom field that receives
	// each thread's original send date.
	DateField string `mapstructure:"date_field" yaml:"date_field"`

	// GroupName is the helpdesk group imported tickets are assigned to.
	GroupName string `mapstructure:"group_name" yaml:"group_name"`

	// RateDelay is the pause between consecutive ticket creations.
	RateDelay time.Duration `mapstructure:"rate_delay" yaml:"rate_delay"`

	// ProgressDB is the path of the resume database.
	ProgressDB string `mapstructure:"progress_db" yaml:"progress_db"`

	// NonInteractive disables all prompts. Purge defaults to no, and a
	// missing import group fails immediately instead of waiting for the
	// operator to create it.
	NonInteractive bool `mapstructure:"non_interactive" yaml:"non_interactive"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// Retry configures backoff for ticket creation.
	Retry RetryConfig `mapstructure:"retry" yaml:"retry"`
}

// APIBaseURL returns the root URL of the helpdesk REST API.
func (c *Config) APIBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	return fmt.Sprintf("https://%s.freshdesk.com/api/v2", c.Domain)
}

// Validate checks that the configuration is usable for a run.
func (c *Config) Validate() error {
	if c.Domain == "" && c.BaseURL == "" {
		return errors.New("config: domain (or base_url) is required")
	}
	if c.MboxPath == "" {
		return errors.New("config: mbox_path is required")
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("config: retry.max_attempts must be at least 1")
	}
	return nil
}

// DefaultConfigPath returns the default configuration file location,
// ~/.config/helpdesk-import/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "helpdesk-import", "config.yaml")
}

// defaultConfig returns the built-in defaults.
func defaultConfig() *Config {
	return &Config{
		MboxPath:   "takeout.mbox",
		DateField:  "cf_original_date",
		GroupName:  "imported",
		RateDelay:  800 * time.Millisecond,
		ProgressDB: ".helpdesk_progress.db",
		LogLevel:   "info",
		Retry: RetryConfig{
			BaseDelay:   time.Second,
			MaxDelay:    60 * time.Second,
			MaxAttempts: 5,
		},
	}
}

// LoadConfig reads the configuration from the given YAML file using
// Viper. A missing file yields the defaults; validation is left to the
// caller so `init` can still write a fresh file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("mbox_path", "takeout.mbox")
	v.SetDefault("date_field", "cf_original_date")
	v.SetDefault("group_name", "imported")
	v.SetDefault("rate_delay", "800ms")
	v.SetDefault("progress_db", ".helpdesk_progress.db")
	v.SetDefault("log_level", "info")
	v.SetDefault("retry.base_delay", "1s")
	v.SetDefault("retry.max_delay", "60s")
	v.SetDefault("retry.max_attempts", 5)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(*os.PathError); ok {
			return defaultConfig(), nil
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return defaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	cfg := defaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to a YAML file at path, creating
// parent directories if needed.
func SaveConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("domain", cfg.Domain)
	v.Set("mbox_path", cfg.MboxPath)
	v.Set("date_field", cfg.DateField)
	v.Set("group_name", cfg.GroupName)
	v.Set("rate_delay", cfg.RateDelay.String())
	v.Set("progress_db", cfg.ProgressDB)
	v.Set("non_interactive", cfg.NonInteractive)
	v.Set("log_level", cfg.LogLevel)
	v.Set("retry.base_delay", cfg.Retry.BaseDelay.String())
	v.Set("retry.max_delay", cfg.Retry.MaxDelay.String())
	v.Set("retry.max_attempts", cfg.Retry.MaxAttempts)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
