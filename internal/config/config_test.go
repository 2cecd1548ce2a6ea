package config

import (
	"path/filepath"
	"testing"
)

func TestLoad_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollIntervalSeconds != DefaultPollIntervalSeconds {
		t.Errorf("expected default poll interval, got %d", cfg.PollIntervalSeconds)
	}
	if cfg.EscalationTimeoutMinutes != DefaultEscalationTimeoutMinute {
		t.Errorf("expected default escalation timeout, got %d", cfg.EscalationTimeoutMinutes)
	}
	if cfg.ListenAddr != DefaultListenAddr {
		t.Errorf("expected default listen addr, got %s", cfg.ListenAddr)
	}
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	want := &Config{
		DBPath:                   "/tmp/foreman.db",
		PollIntervalSeconds:      5,
		EscalationTimeoutMinutes: 120,
		NotifyTmuxTarget:         "agents:0.1",
		GitWebhookSecret:         "hunter2",
		ListenAddr:               ":9999",
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if *got != *want {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestLoad_ZeroValuesFallBackToDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := Save(path, &Config{NotifyTmuxTarget: "agents"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.PollIntervalSeconds != DefaultPollIntervalSeconds {
		t.Errorf("zero poll interval should fall back to default, got %d", cfg.PollIntervalSeconds)
	}
	if cfg.NotifyTmuxTarget != "agents" {
		t.Errorf("expected tmux target preserved, got %q", cfg.NotifyTmuxTarget)
	}
}
