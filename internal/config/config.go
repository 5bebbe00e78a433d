// Package config handles Escalytics configuration loading and validation.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for Escalytics.
type Config struct {
	Tracker TrackerConfig `yaml:"tracker"`
	AI      AIConfig      `yaml:"ai"`
	Assign  AssignConfig  `yaml:"assign"`
	SMTP    SMTPConfig    `yaml:"smtp"`
	Log     LogConfig     `yaml:"log"`
	Store   StoreConfig   `yaml:"store"`
}

// TrackerConfig defines the Jira connection.
type TrackerConfig struct {
	BaseURL    string        `yaml:"base_url"`
	Email      string        `yaml:"email"`
	APIToken   string        `yaml:"api_token"`
	ProjectKey string        `yaml:"project_key"`
	Transport  string        `yaml:"transport"` // "jira" (client library) or "rest"
	Timeout    time.Duration `yaml:"timeout"`
}

// AIConfig defines the Gemini analysis settings.
type AIConfig struct {
	APIKey     string        `yaml:"api_key"`
	Model      string        `yaml:"model"`
	ExcerptCap int           `yaml:"excerpt_cap"` // max chars of ticket text sent per request
	CacheTTL   time.Duration `yaml:"cache_ttl"`
}

// AssignConfig defines ticket assignment behavior.
type AssignConfig struct {
	DefaultAssignee string `yaml:"default_assignee"`
}

// SMTPConfig defines the notification relay.
type SMTPConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
	To       string `yaml:"to"`
}

// LogConfig defines logging settings.
type LogConfig struct {
	Level     string `yaml:"level"`
	SentryDSN string `yaml:"sentry_dsn"`
}

// StoreConfig defines the local run-history database.
// An empty Database path disables history.
type StoreConfig struct {
	Database string `yaml:"database"`
}

// DefaultConfig returns a config with sensible defaults. Secrets are left
// empty and are expected to come from the config file or environment.
func DefaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()

	return &Config{
		Tracker: TrackerConfig{
			Transport: "jira",
			Timeout:   10 * time.Second,
		},
		AI: AIConfig{
			Model:      "gemini-1.5-flash",
			ExcerptCap: 1000,
			CacheTTL:   time.Hour,
		},
		SMTP: SMTPConfig{
			Port: 587,
		},
		Log: LogConfig{
			Level: "info",
		},
		Store: StoreConfig{
			Database: filepath.Join(homeDir, ".local/share/escalytics/escalytics.db"),
		},
	}
}

// Load reads configuration from the default path, falling back to defaults
// when no file exists.
func Load() (*Config, error) {
	configPath := DefaultConfigPath()

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := DefaultConfig()
		cfg.expandEnvVars()
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", configPath, err)
	}

	cfg.expandEnvVars()
	return cfg, nil
}

// DefaultConfigPath returns the configuration file path.
func DefaultConfigPath() string {
	if p := os.Getenv("ESCALYTICS_CONFIG"); p != "" {
		return p
	}
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".config/escalytics/config.yaml")
}

// expandEnvVars resolves ${VAR} references so secrets can live in the
// environment instead of the config file.
func (c *Config) expandEnvVars() {
	c.Tracker.APIToken = os.ExpandEnv(c.Tracker.APIToken)
	c.AI.APIKey = os.ExpandEnv(c.AI.APIKey)
	c.SMTP.Username = os.ExpandEnv(c.SMTP.Username)
	c.SMTP.Password = os.ExpandEnv(c.SMTP.Password)
	c.Log.SentryDSN = os.ExpandEnv(c.Log.SentryDSN)
}

// Validate checks that every credential and identifier the pipeline needs is
// present. It runs before any network call so misconfiguration fails fast.
func (c *Config) Validate() error {
	var problems []string

	if c.Tracker.BaseURL == "" {
		problems = append(problems, "tracker.base_url is required")
	}
	if c.Tracker.Email == "" {
		problems = append(problems, "tracker.email is required")
	}
	if c.Tracker.APIToken == "" {
		problems = append(problems, "tracker.api_token is required")
	}
	if c.Tracker.ProjectKey == "" {
		problems = append(problems, "tracker.project_key is required")
	}
	switch c.Tracker.Transport {
	case "jira", "rest":
	default:
		problems = append(problems, fmt.Sprintf("tracker.transport %q must be \"jira\" or \"rest\"", c.Tracker.Transport))
	}
	if c.AI.APIKey == "" {
		problems = append(problems, "ai.api_key is required")
	}
	if c.Assign.DefaultAssignee == "" {
		problems = append(problems, "assign.default_assignee is required")
	}
	if c.SMTP.Host == "" {
		problems = append(problems, "smtp.host is required")
	}
	if c.SMTP.Port <= 0 || c.SMTP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("smtp.port %d is out of range", c.SMTP.Port))
	}
	if c.SMTP.From == "" || c.SMTP.To == "" {
		problems = append(problems, "smtp.from and smtp.to are required")
	}

	if len(problems) > 0 {
		return errors.New("invalid configuration: " + strings.Join(problems, "; "))
	}
	return nil
}

// Save writes the config to path in YAML form, creating parent directories.
// Used by `escalytics config init` to produce a starter file.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o600)
}

// MaskSecret obscures all but the edges of a credential for display.
func MaskSecret(secret string) string {
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return secret[:2] + "***" + secret[len(secret)-2:]
}
