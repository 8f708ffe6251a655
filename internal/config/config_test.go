package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadWithEnv_Defaults(t *testing.T) {
	cfg, err := LoadWithEnv(filepath.Join(t.TempDir(), "missing.yaml"), func(string) string { return "" })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Migration.Issues.BatchSize != 100 {
		t.Fatalf("expected default batch size 100, got %d", cfg.Migration.Issues.BatchSize)
	}
	if cfg.Redmine.ExtendedAPI.Prefix != "extended_api" {
		t.Fatalf("expected default extended api prefix, got %q", cfg.Redmine.ExtendedAPI.Prefix)
	}
}

func TestLoadWithEnv_FileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cfg.yaml")
	content := `
database:
  dsn: "file:staging.db"
jira:
  base_url: "https://file.example.atlassian.net"
migration:
  issues:
    batch_size: 50
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	env := map[string]string{"JIRA_BASE_URL": "https://env.example.atlassian.net"}
	cfg, err := LoadWithEnv(path, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Jira.BaseURL != "https://env.example.atlassian.net" {
		t.Fatalf("env var should override file, got %q", cfg.Jira.BaseURL)
	}
	if cfg.Migration.Issues.BatchSize != 50 {
		t.Fatalf("expected batch size from file, got %d", cfg.Migration.Issues.BatchSize)
	}
	if cfg.Database.DSN != "file:staging.db" {
		t.Fatalf("expected dsn from file, got %q", cfg.Database.DSN)
	}
}

func TestValidate_RequiresCoreFields(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected error for empty config")
	}
	cfg.Database.DSN = "file:x.db"
	cfg.Jira.BaseURL = "https://x.atlassian.net"
	cfg.Redmine.BaseURL = "https://redmine.example.com"
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
