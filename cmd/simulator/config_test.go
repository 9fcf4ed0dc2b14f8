package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "simulator.toml", `
backend = "memory"
log_level = "debug"
max_call_depth = 4
memory_limit_pages = 32
`)

	cfg, err := loadConfig(defaultConfig(), path, true)
	if err != nil {
		t.Fatalf("loadConfig: %v", err)
	}
	want := config{
		Backend:          backendMemory,
		Database:         "simulator.db",
		LogLevel:         "debug",
		MaxCallDepth:     4,
		MemoryLimitPages: 32,
	}
	if cfg != want {
		t.Errorf("config = %+v, want %+v", cfg, want)
	}
}

func TestLoadConfig_KeepsUnsetDefaults(t *testing.T) {
	path := writeFile(t, "simulator.toml", `database = "  other.db  "`)

	cfg, err := loadConfig(defaultConfig(), path, true)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Database != "other.db" || cfg.Backend != backendSQLite || cfg.LogLevel != "warn" {
		t.Errorf("config = %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.toml")

	cfg, err := loadConfig(defaultConfig(), missing, false)
	if err != nil || cfg != defaultConfig() {
		t.Errorf("optional missing file = %+v, %v", cfg, err)
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
	}{
		{"required missing", missing, "load simulator config"},
		{"bad syntax", writeFile(t, "bad.toml", `backend = `), "load simulator config"},
		{"unknown key", writeFile(t, "extra.toml", `colour = "blue"`), "unknown key"},
		{"wrong type", writeFile(t, "type.toml", `max_call_depth = "deep"`), "load simulator config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(defaultConfig(), tt.path, true)
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*config)
		wantErr bool
	}{
		{"defaults", func(*config) {}, false},
		{"memory", func(c *config) { c.Backend = backendMemory; c.Database = "" }, false},
		{"sqlite without path", func(c *config) { c.Database = "" }, true},
		{"unknown backend", func(c *config) { c.Backend = "redis" }, true},
		{"negative depth", func(c *config) { c.MaxCallDepth = -1 }, true},
		{"bad log level", func(c *config) { c.LogLevel = "loud" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaultConfig()
			tt.modify(&cfg)
			if err := cfg.validate(); (err != nil) != tt.wantErr {
				t.Errorf("validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
