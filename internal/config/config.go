// File path: internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries every tunable the service needs. It is loaded once at
// startup and passed explicitly into each constructor; there is no global
// settings object.
type Config struct {
	Addr          string        `yaml:"addr"`
	CatalogPath   string        `yaml:"catalog_path"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	CheckInterval time.Duration `yaml:"check_interval"`
	// EncryptionKey is the base64-encoded 32-byte key used to decrypt data
	// source credentials stored under an "encrypted" wrapper.
	EncryptionKey string `yaml:"encryption_key"`

	LLM   LLM   `yaml:"llm"`
	Slack Slack `yaml:"slack"`
}

// LLM selects the active language-model backend and holds per-backend
// settings.
type LLM struct {
	Provider  string `yaml:"provider"`
	OpenAI    Model  `yaml:"openai"`
	Anthropic Model  `yaml:"anthropic"`
	Ollama    Ollama `yaml:"ollama"`
}

// Model describes one hosted backend.
type Model struct {
	APIKey      string  `yaml:"api_key"`
	Model       string  `yaml:"model"`
	MaxTokens   int64   `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
}

// Ollama describes a local langchaingo-driven backend.
type Ollama struct {
	ServerURL string `yaml:"server_url"`
	Model     string `yaml:"model"`
}

// Slack configures the alert notification channel of the same name.
type Slack struct {
	Token   string `yaml:"token"`
	Channel string `yaml:"channel"`
}

// Default returns the configuration used when neither file nor environment
// provides an override.
func Default() Config {
	return Config{
		Addr:          ":8080",
		CatalogPath:   "querylens.db",
		CacheTTL:      time.Hour,
		CheckInterval: time.Minute,
		LLM: LLM{
			Provider:  "openai",
			OpenAI:    Model{Model: "gpt-4o", MaxTokens: 4096, Temperature: 0.7},
			Anthropic: Model{Model: "claude-3-opus-20240229", MaxTokens: 4096, Temperature: 0.7},
			Ollama:    Ollama{Model: "llama3"},
		},
	}
}

// Load builds a Config from defaults, an optional YAML file and environment
// overrides, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()
	if strings.TrimSpace(path) != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	setString(&c.Addr, "QUERYLENS_ADDR")
	setString(&c.CatalogPath, "QUERYLENS_CATALOG")
	setString(&c.EncryptionKey, "ENCRYPTION_KEY")
	setDuration(&c.CacheTTL, "CACHE_TTL")
	setDuration(&c.CheckInterval, "ALERT_CHECK_INTERVAL")

	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.OpenAI.APIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAI.Model, "OPENAI_MODEL")
	setInt64(&c.LLM.OpenAI.MaxTokens, "OPENAI_MAX_TOKENS")
	setString(&c.LLM.Anthropic.APIKey, "ANTHROPIC_API_KEY")
	setString(&c.LLM.Anthropic.Model, "ANTHROPIC_MODEL")
	setInt64(&c.LLM.Anthropic.MaxTokens, "ANTHROPIC_MAX_TOKENS")
	setString(&c.LLM.Ollama.ServerURL, "OLLAMA_HOST")
	setString(&c.LLM.Ollama.Model, "OLLAMA_MODEL")

	setString(&c.Slack.Token, "SLACK_BOT_TOKEN")
	setString(&c.Slack.Channel, "SLACK_CHANNEL")
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

func setInt64(dst *int64, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*dst = parsed
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return
	}
	if parsed, err := time.ParseDuration(v); err == nil {
		*dst = parsed
		return
	}
	// Bare numbers are treated as seconds, matching older deployments.
	if secs, err := strconv.Atoi(v); err == nil {
		*dst = time.Duration(secs) * time.Second
	}
}
