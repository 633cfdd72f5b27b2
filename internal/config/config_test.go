package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadOrCreateWritesDefaults(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", DefaultConfigFileName)

	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("Expected config file to be written: %v", err)
	}
	if cfg.DBPath != filepath.Join(dir, "sub", DefaultDBName) {
		t.Errorf("Expected db path next to config, got %s", cfg.DBPath)
	}
	if cfg.Keys.Toggle != " " || cfg.Keys.Quit != "q" {
		t.Errorf("Expected default keys, got %+v", cfg.Keys)
	}

	again, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if again.DefaultSort != "dueAsc" || !again.Reminders.Enabled {
		t.Errorf("Expected defaults to round-trip, got %+v", again)
	}
}

func TestLoadOrCreateReadsOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `storage = "json"
json_path = "/data/tasks.json"
default_status = "pending"

[reminders]
enabled = false
lead_minutes = 45

[keys]
quit = "x"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	cfg, err := LoadOrCreate(path)
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if cfg.Storage != "json" || cfg.JSONPath != "/data/tasks.json" {
		t.Errorf("Expected json storage at /data/tasks.json, got %s %s", cfg.Storage, cfg.JSONPath)
	}
	if cfg.Reminders.Enabled {
		t.Error("Expected reminders disabled")
	}
	if cfg.ReminderLead() != 45*time.Minute {
		t.Errorf("Expected 45m lead, got %v", cfg.ReminderLead())
	}
	if cfg.Keys.Quit != "x" || cfg.Keys.Add != "a" {
		t.Errorf("Expected overridden quit and default add, got %+v", cfg.Keys)
	}
}

func TestLoadOrCreateRejectsBadTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("storage = = broken"), 0o644)
	if _, err := LoadOrCreate(path); err == nil {
		t.Fatal("Expected parse error")
	}
}

func TestResolveConfigPathFromEnv(t *testing.T) {
	t.Setenv(EnvConfigPath, "/tmp/custom.toml")
	if got := ResolveConfigPath(); got != "/tmp/custom.toml" {
		t.Errorf("Expected env override, got %s", got)
	}
}

func TestReminderLeadDefault(t *testing.T) {
	var cfg Config
	if cfg.ReminderLead() != 30*time.Minute {
		t.Errorf("Expected 30m default lead, got %v", cfg.ReminderLead())
	}
}
