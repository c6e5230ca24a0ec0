package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Agent.Priority != "HIGH" {
		t.Errorf("priority = %q, want HIGH", cfg.Agent.Priority)
	}
	if cfg.Git.IntegrationBranch != "main" {
		t.Errorf("integration branch = %q, want main", cfg.Git.IntegrationBranch)
	}
	if cfg.RateLimit.MaxRequestsPerMinute != 20 {
		t.Errorf("max requests = %d, want 20", cfg.RateLimit.MaxRequestsPerMinute)
	}
	if cfg.RateLimit.Cooldown != 2*time.Second {
		t.Errorf("cooldown = %v, want 2s", cfg.RateLimit.Cooldown)
	}
	if cfg.Agent.ID == "" {
		t.Error("expected a derived agent id")
	}
}

func TestLoadProjectOverride(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, ".surveyor")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatal(err)
	}

	content := []byte(`
agent:
  id: builder-7
  capabilities: [FEAT, FIX]
  priority: MEDIUM
git:
  integration_branch: develop
`)
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(root)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Agent.ID != "builder-7" {
		t.Errorf("agent id = %q, want builder-7", cfg.Agent.ID)
	}
	if len(cfg.Agent.Capabilities) != 2 || cfg.Agent.Capabilities[0] != "FEAT" {
		t.Errorf("capabilities = %v", cfg.Agent.Capabilities)
	}
	if cfg.Agent.Priority != "MEDIUM" {
		t.Errorf("priority = %q, want MEDIUM", cfg.Agent.Priority)
	}
	if cfg.Git.IntegrationBranch != "develop" {
		t.Errorf("integration branch = %q, want develop", cfg.Git.IntegrationBranch)
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := []byte(`
anthropic:
  model: claude-haiku-4
rate_limit:
  max_requests_per_minute: 5
  cooldown: 500ms
`)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.Anthropic.Model != "claude-haiku-4" {
		t.Errorf("model = %q", cfg.Anthropic.Model)
	}
	if cfg.RateLimit.MaxRequestsPerMinute != 5 {
		t.Errorf("max requests = %d, want 5", cfg.RateLimit.MaxRequestsPerMinute)
	}
	if cfg.RateLimit.Cooldown != 500*time.Millisecond {
		t.Errorf("cooldown = %v, want 500ms", cfg.RateLimit.Cooldown)
	}
}
