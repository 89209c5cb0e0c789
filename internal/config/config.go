// Package config provides YAML-based configuration loading for Crewline.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level Crewline configuration, loaded from config.yaml.
type Config struct {
	Server    ServerConfig   `yaml:"server"`
	DB        DBConfig       `yaml:"db"`
	Files     FilesConfig    `yaml:"files"`
	Notify    NotifyConfig   `yaml:"notify"`
	Reminders ReminderConfig `yaml:"reminders"`
}

// ServerConfig holds the HTTP API settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// DBConfig holds connection settings for the MySQL server.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// FilesConfig holds the uploaded-document store settings.
type FilesConfig struct {
	Dir string `yaml:"dir"`
}

// NotifyConfig holds the outbound notification adapters. An adapter with no
// settings is disabled.
type NotifyConfig struct {
	Slack   SlackConfig   `yaml:"slack"`
	Discord DiscordConfig `yaml:"discord"`
}

// SlackConfig posts notifications to a Slack incoming webhook.
type SlackConfig struct {
	WebhookURL string `yaml:"webhook_url"`
}

// DiscordConfig posts notifications to a Discord channel.
type DiscordConfig struct {
	Token     string `yaml:"token"`
	ChannelID string `yaml:"channel_id"`
}

// ReminderConfig drives the stale-stage reminder sweep.
type ReminderConfig struct {
	Schedule   string `yaml:"schedule"`
	StaleAfter int    `yaml:"stale_after_hours"`
}

// Load reads a YAML config file from path and returns a validated Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse unmarshals YAML bytes into a validated Config.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse: %w", err)
	}
	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyDefaults fills in derived and default values.
func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.DB.Host == "" {
		c.DB.Host = "127.0.0.1"
	}
	if c.DB.Port == 0 {
		c.DB.Port = 3306
	}
	if c.DB.User == "" {
		c.DB.User = "root"
	}
	if c.DB.Database == "" {
		c.DB.Database = "crewline"
	}
	if c.Files.Dir == "" {
		c.Files.Dir = "files"
	}
	if c.Reminders.Schedule == "" {
		c.Reminders.Schedule = "0 8 * * *"
	}
	if c.Reminders.StaleAfter == 0 {
		c.Reminders.StaleAfter = 72
	}
}

// validate checks that all present fields are consistent.
func (c *Config) validate() error {
	var errs []string
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if c.DB.Port < 1 || c.DB.Port > 65535 {
		errs = append(errs, "db.port must be between 1 and 65535")
	}
	if c.Reminders.StaleAfter < 0 {
		errs = append(errs, "reminders.stale_after_hours must not be negative")
	}
	if u := c.Notify.Slack.WebhookURL; u != "" && !strings.HasPrefix(u, "https://") {
		errs = append(errs, "notify.slack.webhook_url must be an https URL")
	}
	if c.Notify.Discord.Token != "" && c.Notify.Discord.ChannelID == "" {
		errs = append(errs, "notify.discord.channel_id is required when a token is set")
	}
	if len(errs) > 0 {
		return fmt.Errorf("config: validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}
