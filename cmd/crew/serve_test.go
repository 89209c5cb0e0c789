package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/crewline/crewline/internal/config"
)

func TestServeCmd_Help(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "--help"})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("serve --help failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "API server") {
		t.Errorf("expected help to mention 'API server', got: %s", out)
	}
	for _, want := range []string{"--config", "--port"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected help to contain %q, got: %s", want, out)
		}
	}
}

func TestNewServeCmd(t *testing.T) {
	cmd := newServeCmd()
	if cmd.Use != "serve" {
		t.Errorf("Use = %q, want %q", cmd.Use, "serve")
	}
	flag := cmd.Flags().Lookup("config")
	if flag == nil {
		t.Fatal("expected --config flag")
	}
	if flag.DefValue != "crewline.yaml" {
		t.Errorf("--config default = %q, want %q", flag.DefValue, "crewline.yaml")
	}
	portFlag := cmd.Flags().Lookup("port")
	if portFlag == nil {
		t.Fatal("expected --port flag")
	}
	if portFlag.Shorthand != "p" {
		t.Errorf("--port shorthand = %q, want %q", portFlag.Shorthand, "p")
	}
}

func TestServeCmd_MissingConfig(t *testing.T) {
	cmd := newRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs([]string{"serve", "--config", "/nonexistent/crewline.yaml"})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "load config") {
		t.Errorf("error = %q, want to contain %q", err.Error(), "load config")
	}
}

func TestBuildAdapters_NoneConfigured(t *testing.T) {
	cfg, err := config.Parse([]byte("server:\n  port: 8080\n"))
	if err != nil {
		t.Fatal(err)
	}
	adapters, err := buildAdapters(cfg)
	if err != nil {
		t.Fatalf("buildAdapters: %v", err)
	}
	if len(adapters) != 0 {
		t.Errorf("adapters = %d, want 0", len(adapters))
	}
}

func TestBuildAdapters_Slack(t *testing.T) {
	cfg, err := config.Parse([]byte("notify:\n  slack:\n    webhook_url: https://hooks.slack.com/services/T0/B0/x\n"))
	if err != nil {
		t.Fatal(err)
	}
	adapters, err := buildAdapters(cfg)
	if err != nil {
		t.Fatalf("buildAdapters: %v", err)
	}
	if len(adapters) != 1 {
		t.Fatalf("adapters = %d, want 1", len(adapters))
	}
	if adapters[0].Name() != "slack" {
		t.Errorf("adapter name = %q, want slack", adapters[0].Name())
	}
}

func TestBuildAdapters_SlackAndDiscord(t *testing.T) {
	yaml := `
notify:
  slack:
    webhook_url: https://hooks.slack.com/services/T0/B0/x
  discord:
    token: bot-token
    channel_id: "123456"
`
	cfg, err := config.Parse([]byte(yaml))
	if err != nil {
		t.Fatal(err)
	}
	adapters, err := buildAdapters(cfg)
	if err != nil {
		t.Fatalf("buildAdapters: %v", err)
	}
	if len(adapters) != 2 {
		t.Fatalf("adapters = %d, want 2", len(adapters))
	}
	names := map[string]bool{adapters[0].Name(): true, adapters[1].Name(): true}
	if !names["slack"] || !names["discord"] {
		t.Errorf("adapter names = %v, want slack and discord", names)
	}
}
