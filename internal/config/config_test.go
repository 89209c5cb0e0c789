package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const fullYAML = `
server:
  port: 9090

db:
  host: 10.0.0.5
  port: 3307
  user: crew
  password: s3cret
  database: crewline_prod

files:
  dir: /var/lib/crewline/files

notify:
  slack:
    webhook_url: https://hooks.slack.com/services/T00/B00/xyz
  discord:
    token: bot-token
    channel_id: "123456789"

reminders:
  schedule: "30 7 * * 1-5"
  stale_after_hours: 48
`

const minimalYAML = `
db:
  password: s3cret
`

func TestParse_FullConfig(t *testing.T) {
	cfg, err := Parse([]byte(fullYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
	if cfg.DB.Host != "10.0.0.5" {
		t.Errorf("DB.Host = %q, want %q", cfg.DB.Host, "10.0.0.5")
	}
	if cfg.DB.Port != 3307 {
		t.Errorf("DB.Port = %d, want 3307", cfg.DB.Port)
	}
	if cfg.DB.User != "crew" {
		t.Errorf("DB.User = %q, want %q", cfg.DB.User, "crew")
	}
	if cfg.DB.Database != "crewline_prod" {
		t.Errorf("DB.Database = %q, want %q", cfg.DB.Database, "crewline_prod")
	}
	if cfg.Files.Dir != "/var/lib/crewline/files" {
		t.Errorf("Files.Dir = %q", cfg.Files.Dir)
	}
	if cfg.Notify.Slack.WebhookURL != "https://hooks.slack.com/services/T00/B00/xyz" {
		t.Errorf("Slack.WebhookURL = %q", cfg.Notify.Slack.WebhookURL)
	}
	if cfg.Notify.Discord.ChannelID != "123456789" {
		t.Errorf("Discord.ChannelID = %q, want 123456789", cfg.Notify.Discord.ChannelID)
	}
	if cfg.Reminders.Schedule != "30 7 * * 1-5" {
		t.Errorf("Reminders.Schedule = %q", cfg.Reminders.Schedule)
	}
	if cfg.Reminders.StaleAfter != 48 {
		t.Errorf("Reminders.StaleAfter = %d, want 48", cfg.Reminders.StaleAfter)
	}
}

func TestParse_MinimalConfig_AppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080 (default)", cfg.Server.Port)
	}
	if cfg.DB.Host != "127.0.0.1" {
		t.Errorf("DB.Host = %q, want %q (default)", cfg.DB.Host, "127.0.0.1")
	}
	if cfg.DB.Port != 3306 {
		t.Errorf("DB.Port = %d, want 3306 (default)", cfg.DB.Port)
	}
	if cfg.DB.User != "root" {
		t.Errorf("DB.User = %q, want %q (default)", cfg.DB.User, "root")
	}
	if cfg.DB.Database != "crewline" {
		t.Errorf("DB.Database = %q, want %q (default)", cfg.DB.Database, "crewline")
	}
	if cfg.Files.Dir != "files" {
		t.Errorf("Files.Dir = %q, want %q (default)", cfg.Files.Dir, "files")
	}
	if cfg.Reminders.Schedule != "0 8 * * *" {
		t.Errorf("Reminders.Schedule = %q, want %q (default)", cfg.Reminders.Schedule, "0 8 * * *")
	}
	if cfg.Reminders.StaleAfter != 72 {
		t.Errorf("Reminders.StaleAfter = %d, want 72 (default)", cfg.Reminders.StaleAfter)
	}
}

func TestParse_AdaptersDisabledByDefault(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Notify.Slack.WebhookURL != "" {
		t.Errorf("Slack.WebhookURL = %q, want empty", cfg.Notify.Slack.WebhookURL)
	}
	if cfg.Notify.Discord.Token != "" {
		t.Errorf("Discord.Token = %q, want empty", cfg.Notify.Discord.Token)
	}
}

func TestParse_InvalidServerPort(t *testing.T) {
	_, err := Parse([]byte("server:\n  port: 70000\n"))
	if err == nil {
		t.Fatal("expected error for out-of-range port")
	}
	if !strings.Contains(err.Error(), "server.port") {
		t.Errorf("error = %q, want to mention server.port", err.Error())
	}
}

func TestParse_InsecureSlackWebhook(t *testing.T) {
	yaml := `
notify:
  slack:
    webhook_url: http://hooks.slack.com/services/T00/B00/xyz
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for http webhook")
	}
	if !strings.Contains(err.Error(), "notify.slack.webhook_url") {
		t.Errorf("error = %q, want to mention notify.slack.webhook_url", err.Error())
	}
}

func TestParse_DiscordTokenWithoutChannel(t *testing.T) {
	yaml := `
notify:
  discord:
    token: bot-token
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error for token without channel")
	}
	if !strings.Contains(err.Error(), "notify.discord.channel_id") {
		t.Errorf("error = %q, want to mention notify.discord.channel_id", err.Error())
	}
}

func TestParse_NegativeStaleAfter(t *testing.T) {
	_, err := Parse([]byte("reminders:\n  stale_after_hours: -1\n"))
	if err == nil {
		t.Fatal("expected error for negative stale_after_hours")
	}
	if !strings.Contains(err.Error(), "stale_after_hours") {
		t.Errorf("error = %q, want to mention stale_after_hours", err.Error())
	}
}

func TestParse_MultipleValidationErrors(t *testing.T) {
	yaml := `
server:
  port: -1
reminders:
  stale_after_hours: -5
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("expected error")
	}
	msg := err.Error()
	if !strings.Contains(msg, "server.port") {
		t.Errorf("error missing server.port: %s", msg)
	}
	if !strings.Contains(msg, "stale_after_hours") {
		t.Errorf("error missing stale_after_hours: %s", msg)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte(":::invalid"))
	if err == nil {
		t.Fatal("expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "config: parse:") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: parse:")
	}
}

func TestLoad_ValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(fullYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DB.Database != "crewline_prod" {
		t.Errorf("DB.Database = %q, want %q", cfg.DB.Database, "crewline_prod")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !strings.Contains(err.Error(), "config: read") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "config: read")
	}
}
