// Package config loads and saves the foreman configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Defaults applied when the config file is missing or a field is unset.
const (
	DefaultPollIntervalSeconds     = 30
	DefaultEscalationTimeoutMinute = 30
	DefaultListenAddr              = ":8787"
)

// Config represents the flat foreman configuration.
type Config struct {
	DBPath                   string `yaml:"db_path,omitempty"`
	PollIntervalSeconds      int    `yaml:"poll_interval_seconds"`
	EscalationTimeoutMinutes int    `yaml:"escalation_timeout_minutes"`
	NotifyTmuxTarget         string `yaml:"notify_tmux_target,omitempty"`
	GitWebhookSecret         string `yaml:"git_webhook_secret,omitempty"`
	ListenAddr               string `yaml:"listen_addr,omitempty"`
}

// Default returns a config populated with defaults. DBPath is left empty;
// callers fall back to the db package's default location.
func Default() *Config {
	return &Config{
		PollIntervalSeconds:      DefaultPollIntervalSeconds,
		EscalationTimeoutMinutes: DefaultEscalationTimeoutMinute,
		ListenAddr:               DefaultListenAddr,
	}
}

// Path returns the config file location under the user's home directory.
func Path() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".foreman", "config.yaml"), nil
}

// Load reads the config file at path. A missing file yields the defaults;
// present fields override them.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.PollIntervalSeconds <= 0 {
		cfg.PollIntervalSeconds = DefaultPollIntervalSeconds
	}
	if cfg.EscalationTimeoutMinutes <= 0 {
		cfg.EscalationTimeoutMinutes = DefaultEscalationTimeoutMinute
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = DefaultListenAddr
	}
	return cfg, nil
}

// Save writes the config to path, creating the parent directory if needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}
