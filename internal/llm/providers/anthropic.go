// File path: internal/llm/providers/anthropic.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/config"
)

// AnthropicProvider implements Provider on top of the Anthropic Messages API.
type AnthropicProvider struct {
	client      anthropic.Client
	model       anthropic.Model
	maxTokens   int64
	temperature float64
}

func NewAnthropicProvider(cfg config.Model) *AnthropicProvider {
	var opts []option.RequestOption
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	model := cfg.Model
	if model == "" {
		model = "claude-3-opus-20240229"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	common.Logger().Info("llm: Anthropic provider configured", "model", model)
	return &AnthropicProvider{
		client:      anthropic.NewClient(opts...),
		model:       anthropic.Model(model),
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

func (a *AnthropicProvider) Name() string { return "anthropic" }

func (a *AnthropicProvider) GenerateText(ctx context.Context, prompt string, opts ...Option) (string, error) {
	call := applyOptions(opts)
	messages := []anthropic.MessageParam{
		anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
	}
	return a.complete(ctx, messages, call)
}

func (a *AnthropicProvider) GenerateJSON(ctx context.Context, prompt string, opts ...Option) (json.RawMessage, error) {
	// Claude has no structured-output switch here, so the instruction rides
	// on the prompt and the fence-tolerant decoder does the rest.
	text, err := a.GenerateText(ctx, prompt+"\n\nRespond with valid JSON only.", opts...)
	if err != nil {
		return nil, err
	}
	return decodeJSON(text)
}

func (a *AnthropicProvider) ChatCompletion(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	call := applyOptions(opts)
	params := make([]anthropic.MessageParam, 0, len(messages))
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			// The Messages API takes the system turn out of band.
			call.System = msg.Content
		case "assistant":
			params = append(params, anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)))
		default:
			params = append(params, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		}
	}
	return a.complete(ctx, params, call)
}

func (a *AnthropicProvider) complete(ctx context.Context, messages []anthropic.MessageParam, call Options) (string, error) {
	logger := common.Logger()
	maxTokens := a.maxTokens
	if call.MaxTokens != nil {
		maxTokens = *call.MaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages:  messages,
	}
	if call.System != "" {
		params.System = []anthropic.TextBlockParam{{Type: "text", Text: call.System}}
	}
	if call.Temperature != nil {
		params.Temperature = anthropic.Float(*call.Temperature)
	} else if a.temperature > 0 {
		params.Temperature = anthropic.Float(a.temperature)
	}
	logger.Debug("llm: sending message request", "provider", "anthropic", "model", a.model, "messages", len(messages))
	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		logger.Error("llm: message request failed", "provider", "anthropic", "error", err)
		return "", fmt.Errorf("anthropic completion: %w", err)
	}
	for _, block := range msg.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic completion: no text content in response")
}
