package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
[asana]
access_token = "token-abc"

[project]
gid = "12345"
`)
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !exists {
		t.Fatalf("expected config at %s to exist", resolved)
	}
	if cfg.Asana.BaseURL != defaultBaseURL {
		t.Fatalf("base URL = %q, want default", cfg.Asana.BaseURL)
	}
	if cfg.Source.Kind != "poll" || !cfg.Source.OnlyIncomplete {
		t.Fatalf("unexpected source defaults: %+v", cfg.Source)
	}
	if cfg.Logging.Format != "text" || cfg.Logging.Level != "info" {
		t.Fatalf("unexpected logging defaults: %+v", cfg.Logging)
	}
	if !filepath.IsAbs(cfg.Daemon.CheckpointPath) {
		t.Fatalf("checkpoint path not expanded: %q", cfg.Daemon.CheckpointPath)
	}
}

func TestLoadTokenFromEnvironment(t *testing.T) {
	t.Setenv("TRIAGE_ACCESS_TOKEN", "env-token")
	path := writeConfig(t, `
[project]
gid = "12345"
`)
	cfg, _, _, err := Load(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.Asana.AccessToken != "env-token" {
		t.Fatalf("access token = %q, want env fallback", cfg.Asana.AccessToken)
	}
}

func TestLoadRejectsMissingProject(t *testing.T) {
	path := writeConfig(t, `
[asana]
access_token = "token-abc"
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "project.gid") {
		t.Fatalf("expected project.gid error, got %v", err)
	}
}

func TestLoadRejectsBadSourceKind(t *testing.T) {
	path := writeConfig(t, `
[asana]
access_token = "token-abc"

[project]
gid = "12345"

[source]
kind = "webhooks"
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "source.kind") {
		t.Fatalf("expected source.kind error, got %v", err)
	}
}

func TestLoadRejectsBadRepeatAfter(t *testing.T) {
	path := writeConfig(t, `
[asana]
access_token = "token-abc"

[project]
gid = "12345"

[source]
repeat_after = "5x"
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "repeat_after") {
		t.Fatalf("expected repeat_after error, got %v", err)
	}
}

func TestLoadRejectsDuplicateSortSections(t *testing.T) {
	path := writeConfig(t, `
[asana]
access_token = "token-abc"

[project]
gid = "12345"

[[sort]]
section = "Backlog"
by = ["due"]

[[sort]]
section = "Backlog"
by = ["likes"]
`)
	if _, _, _, err := Load(path); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("expected duplicate section error, got %v", err)
	}
}
