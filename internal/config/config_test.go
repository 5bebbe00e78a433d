package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, contents string) string {
	t.Helper()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ESCALYTICS_CONFIG", path)
	return path
}

func TestLoadOverlaysDefaults(t *testing.T) {
	writeConfig(t, `
tracker:
  base_url: https://example.atlassian.net
  email: ops@example.com
  api_token: tok123
  project_key: PROJ
ai:
  api_key: key123
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Tracker.BaseURL != "https://example.atlassian.net" {
		t.Errorf("unexpected base_url: %s", cfg.Tracker.BaseURL)
	}
	// Unset fields keep their defaults.
	if cfg.AI.Model != "gemini-1.5-flash" {
		t.Errorf("expected default model, got %s", cfg.AI.Model)
	}
	if cfg.AI.ExcerptCap != 1000 {
		t.Errorf("expected default excerpt cap 1000, got %d", cfg.AI.ExcerptCap)
	}
	if cfg.AI.CacheTTL != time.Hour {
		t.Errorf("expected default cache TTL 1h, got %s", cfg.AI.CacheTTL)
	}
	if cfg.SMTP.Port != 587 {
		t.Errorf("expected default smtp port 587, got %d", cfg.SMTP.Port)
	}
	if cfg.Tracker.Transport != "jira" {
		t.Errorf("expected default transport jira, got %s", cfg.Tracker.Transport)
	}
}

func TestLoadExpandsEnvSecrets(t *testing.T) {
	t.Setenv("TEST_JIRA_TOKEN", "secret-token")
	t.Setenv("TEST_GEMINI_KEY", "secret-key")
	writeConfig(t, `
tracker:
  api_token: ${TEST_JIRA_TOKEN}
ai:
  api_key: ${TEST_GEMINI_KEY}
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Tracker.APIToken != "secret-token" {
		t.Errorf("api_token not expanded: %s", cfg.Tracker.APIToken)
	}
	if cfg.AI.APIKey != "secret-key" {
		t.Errorf("ai api_key not expanded: %s", cfg.AI.APIKey)
	}
}

func TestValidate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Tracker.BaseURL = "https://example.atlassian.net"
	cfg.Tracker.Email = "ops@example.com"
	cfg.Tracker.APIToken = "tok"
	cfg.Tracker.ProjectKey = "PROJ"
	cfg.AI.APIKey = "key"
	cfg.Assign.DefaultAssignee = "lead@example.com"
	cfg.SMTP.Host = "smtp.example.com"
	cfg.SMTP.From = "noreply@example.com"
	cfg.SMTP.To = "team@example.com"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}

	t.Run("MissingToken", func(t *testing.T) {
		bad := *cfg
		bad.Tracker.APIToken = ""
		err := bad.Validate()
		if err == nil || !strings.Contains(err.Error(), "api_token") {
			t.Errorf("expected api_token error, got %v", err)
		}
	})

	t.Run("BadTransport", func(t *testing.T) {
		bad := *cfg
		bad.Tracker.Transport = "graphql"
		if err := bad.Validate(); err == nil {
			t.Error("expected transport error")
		}
	})

	t.Run("BadPort", func(t *testing.T) {
		bad := *cfg
		bad.SMTP.Port = 0
		if err := bad.Validate(); err == nil {
			t.Error("expected smtp port error")
		}
	})
}

func TestMaskSecret(t *testing.T) {
	if got := MaskSecret("abcdefgh"); got != "ab***gh" {
		t.Errorf("unexpected mask: %s", got)
	}
	if got := MaskSecret("abc"); got != "***" {
		t.Errorf("short secrets should be fully masked, got %s", got)
	}
}
