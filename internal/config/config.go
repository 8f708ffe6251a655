// Package config loads the migration tool's configuration: database
// connection, Jira and Redmine credentials, and issue-migration tuning
// knobs. It follows the teacher's Load/LoadWithEnv split (YAML file plus
// environment-variable overrides) so tests can inject an isolated
// environment lookup instead of mutating process-global state.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database  DatabaseConfig  `yaml:"database"`
	Jira      JiraConfig      `yaml:"jira"`
	Redmine   RedmineConfig   `yaml:"redmine"`
	Migration MigrationConfig `yaml:"migration"`
}

type DatabaseConfig struct {
	DSN      string            `yaml:"dsn"`
	Username string            `yaml:"username"`
	Password string            `yaml:"password"`
	Options  map[string]string `yaml:"options"`
}

type JiraConfig struct {
	BaseURL  string `yaml:"base_url"`
	Username string `yaml:"username"`
	APIToken string `yaml:"api_token"`
}

type RedmineConfig struct {
	BaseURL     string            `yaml:"base_url"`
	APIKey      string            `yaml:"api_key"`
	ExtendedAPI ExtendedAPIConfig `yaml:"extended_api"`
}

type ExtendedAPIConfig struct {
	Enabled bool   `yaml:"enabled"`
	Prefix  string `yaml:"prefix"`
}

type MigrationConfig struct {
	Issues IssuesMigrationConfig `yaml:"issues"`
}

type IssuesMigrationConfig struct {
	JQL                      string   `yaml:"jql"`
	BatchSize                int      `yaml:"batch_size"`
	DefaultRedmineProjectID  *int64   `yaml:"default_redmine_project_id"`
	DefaultRedmineTrackerID  *int64   `yaml:"default_redmine_tracker_id"`
	DefaultRedmineStatusID   *int64   `yaml:"default_redmine_status_id"`
	DefaultRedminePriorityID *int64   `yaml:"default_redmine_priority_id"`
	DefaultRedmineAuthorID   *int64   `yaml:"default_redmine_author_id"`
	DefaultRedmineAssigneeID *int64   `yaml:"default_redmine_assignee_id"`
	DefaultIsPrivate         *bool    `yaml:"default_is_private"`
	ObjectSchemaFieldIDs     []string `yaml:"object_schema_field_ids"`
}

// DefaultConfig returns a Config with the documented defaults (spec §6):
// batch_size=100, extended API disabled with prefix "extended_api".
func DefaultConfig() *Config {
	return &Config{
		Redmine: RedmineConfig{
			ExtendedAPI: ExtendedAPIConfig{
				Enabled: false,
				Prefix:  "extended_api",
			},
		},
		Migration: MigrationConfig{
			Issues: IssuesMigrationConfig{
				BatchSize: 100,
			},
		},
	}
}

// Load loads configuration from path, or when path is empty from the path
// named by JIRA2REDMINE_CONFIG (or ./jira2redmine.yaml), using the real
// environment.
func Load(path string) (*Config, error) {
	return LoadWithEnv(path, os.Getenv)
}

// LoadWithEnv loads configuration using the provided environment lookup
// function, letting tests supply isolated environment values instead of
// mutating the process environment.
func LoadWithEnv(path string, getenv func(string) string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		path = getenv("JIRA2REDMINE_CONFIG")
	}
	if path == "" {
		path = "jira2redmine.yaml"
	}

	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	applyEnvOverrides(cfg, getenv)

	if cfg.Migration.Issues.BatchSize <= 0 {
		cfg.Migration.Issues.BatchSize = 100
	}
	if cfg.Redmine.ExtendedAPI.Prefix == "" {
		cfg.Redmine.ExtendedAPI.Prefix = "extended_api"
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config, getenv func(string) string) {
	if v := getenv("JIRA_BASE_URL"); v != "" {
		cfg.Jira.BaseURL = v
	}
	if v := getenv("JIRA_USERNAME"); v != "" {
		cfg.Jira.Username = v
	}
	if v := getenv("JIRA_API_TOKEN"); v != "" {
		cfg.Jira.APIToken = v
	}
	if v := getenv("REDMINE_BASE_URL"); v != "" {
		cfg.Redmine.BaseURL = v
	}
	if v := getenv("REDMINE_API_KEY"); v != "" {
		cfg.Redmine.APIKey = v
	}
	if v := getenv("DATABASE_DSN"); v != "" {
		cfg.Database.DSN = v
	}
}

// Validate checks that the fields required by every phase are present.
// Individual phases perform their own additional checks (e.g. the push
// phase's extended-API probe).
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("database.dsn is required")
	}
	if c.Jira.BaseURL == "" {
		return fmt.Errorf("jira.base_url is required")
	}
	if c.Redmine.BaseURL == "" {
		return fmt.Errorf("redmine.base_url is required")
	}
	return nil
}
