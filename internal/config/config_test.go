// File path: internal/config/config_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Addr != ":8080" {
		t.Fatalf("unexpected addr: %s", cfg.Addr)
	}
	if cfg.LLM.Provider != "openai" {
		t.Fatalf("unexpected provider: %s", cfg.LLM.Provider)
	}
	if cfg.CacheTTL != time.Hour {
		t.Fatalf("unexpected cache ttl: %s", cfg.CacheTTL)
	}
}

func TestLoadYAMLOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
addr: ":9090"
catalog_path: /tmp/catalog.db
cache_ttl: 30m
llm:
  provider: anthropic
  anthropic:
    model: claude-3-5-sonnet-20241022
    max_tokens: 2048
slack:
  channel: "#alerts"
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.CatalogPath != "/tmp/catalog.db" {
		t.Fatalf("file overrides not applied: %+v", cfg)
	}
	if cfg.CacheTTL != 30*time.Minute {
		t.Fatalf("unexpected cache ttl: %s", cfg.CacheTTL)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.LLM.Anthropic.Model != "claude-3-5-sonnet-20241022" {
		t.Fatalf("llm overrides not applied: %+v", cfg.LLM)
	}
	if cfg.LLM.Anthropic.MaxTokens != 2048 {
		t.Fatalf("unexpected max tokens: %d", cfg.LLM.Anthropic.MaxTokens)
	}
	// Untouched keys keep their defaults.
	if cfg.CheckInterval != time.Minute {
		t.Fatalf("default check interval lost: %s", cfg.CheckInterval)
	}
	if cfg.Slack.Channel != "#alerts" {
		t.Fatalf("slack override not applied: %+v", cfg.Slack)
	}
}

func TestLoadMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for a missing config file")
	}
}

func TestEnvOverridesWin(t *testing.T) {
	t.Setenv("QUERYLENS_ADDR", ":7070")
	t.Setenv("LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_MODEL", "mistral")
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("CACHE_TTL", "15m")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Addr != ":7070" {
		t.Fatalf("addr override not applied: %s", cfg.Addr)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.Ollama.Model != "mistral" {
		t.Fatalf("llm overrides not applied: %+v", cfg.LLM)
	}
	if cfg.LLM.OpenAI.APIKey != "sk-test" {
		t.Fatal("api key override not applied")
	}
	if cfg.CacheTTL != 15*time.Minute {
		t.Fatalf("cache ttl override not applied: %s", cfg.CacheTTL)
	}
}

func TestEnvBareSecondsDuration(t *testing.T) {
	t.Setenv("ALERT_CHECK_INTERVAL", "300")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.CheckInterval != 5*time.Minute {
		t.Fatalf("expected bare number treated as seconds, got %s", cfg.CheckInterval)
	}
}
