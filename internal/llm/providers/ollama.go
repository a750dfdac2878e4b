// File path: internal/llm/providers/ollama.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/config"
)

// OllamaProvider implements Provider against a local Ollama server through
// langchaingo. It serves deployments without hosted API credentials.
type OllamaProvider struct {
	model llms.Model
	name  string
}

func NewOllamaProvider(cfg config.Ollama) (*OllamaProvider, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = "llama3"
	}
	opts := []ollama.Option{ollama.WithModel(modelName)}
	if url := strings.TrimSpace(cfg.ServerURL); url != "" {
		opts = append(opts, ollama.WithServerURL(url))
	}
	model, err := ollama.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("ollama provider: %w", err)
	}
	common.Logger().Info("llm: Ollama provider configured", "model", modelName)
	return &OllamaProvider{model: model, name: modelName}, nil
}

func (p *OllamaProvider) Name() string { return "ollama" }

func (p *OllamaProvider) GenerateText(ctx context.Context, prompt string, opts ...Option) (string, error) {
	call := applyOptions(opts)
	content := make([]llms.MessageContent, 0, 2)
	if call.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, call.System))
	}
	content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, prompt))
	return p.generate(ctx, content, call)
}

func (p *OllamaProvider) GenerateJSON(ctx context.Context, prompt string, opts ...Option) (json.RawMessage, error) {
	text, err := p.GenerateText(ctx, prompt+"\n\nRespond with valid JSON only.", opts...)
	if err != nil {
		return nil, err
	}
	return decodeJSON(text)
}

func (p *OllamaProvider) ChatCompletion(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	call := applyOptions(opts)
	content := make([]llms.MessageContent, 0, len(messages)+1)
	if call.System != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, call.System))
	}
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, msg.Content))
		case "assistant":
			content = append(content, llms.TextParts(llms.ChatMessageTypeAI, msg.Content))
		default:
			content = append(content, llms.TextParts(llms.ChatMessageTypeHuman, msg.Content))
		}
	}
	return p.generate(ctx, content, call)
}

func (p *OllamaProvider) generate(ctx context.Context, content []llms.MessageContent, call Options) (string, error) {
	logger := common.Logger()
	var callOpts []llms.CallOption
	if call.Temperature != nil {
		callOpts = append(callOpts, llms.WithTemperature(*call.Temperature))
	}
	if call.MaxTokens != nil {
		callOpts = append(callOpts, llms.WithMaxTokens(int(*call.MaxTokens)))
	}
	logger.Debug("llm: sending generate request", "provider", "ollama", "model", p.name, "messages", len(content))
	resp, err := p.model.GenerateContent(ctx, content, callOpts...)
	if err != nil {
		logger.Error("llm: generate request failed", "provider", "ollama", "error", err)
		return "", fmt.Errorf("ollama completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("ollama completion: no choices returned")
	}
	return resp.Choices[0].Content, nil
}
