// File path: internal/llm/llm.go
package llm

import (
	"fmt"
	"strings"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/config"
	"github.com/querylens/querylens/internal/llm/providers"
)

type Message = providers.Message

type Provider = providers.Provider

type Option = providers.Option

// ResponseError is returned when a backend produced output that is not valid
// JSON where JSON was required.
type ResponseError = providers.ResponseError

var (
	WithSystem      = providers.WithSystem
	WithTemperature = providers.WithTemperature
	WithMaxTokens   = providers.WithMaxTokens
)

// New resolves the configured backend once at startup. An unrecognized
// provider name is a configuration error, reported immediately.
func New(cfg config.LLM) (Provider, error) {
	logger := common.Logger()
	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return providers.NewOpenAIProvider(cfg.OpenAI), nil
	case "anthropic":
		return providers.NewAnthropicProvider(cfg.Anthropic), nil
	case "ollama":
		return providers.NewOllamaProvider(cfg.Ollama)
	default:
		logger.Error("llm: unsupported provider requested", "provider", cfg.Provider)
		return nil, fmt.Errorf("llm: unsupported provider %q", cfg.Provider)
	}
}
