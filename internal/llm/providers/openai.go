// File path: internal/llm/providers/openai.go
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/config"
)

// OpenAIProvider implements Provider on top of the OpenAI chat completions
// API.
type OpenAIProvider struct {
	client      openai.Client
	model       string
	maxTokens   int64
	temperature float64
}

func NewOpenAIProvider(cfg config.Model) *OpenAIProvider {
	var opts []option.RequestOption
	if key := strings.TrimSpace(cfg.APIKey); key != "" {
		opts = append(opts, option.WithAPIKey(key))
	}
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	common.Logger().Info("llm: OpenAI provider configured", "model", model)
	return &OpenAIProvider{
		client:      openai.NewClient(opts...),
		model:       model,
		maxTokens:   maxTokens,
		temperature: cfg.Temperature,
	}
}

func (o *OpenAIProvider) Name() string { return "openai" }

func (o *OpenAIProvider) GenerateText(ctx context.Context, prompt string, opts ...Option) (string, error) {
	call := applyOptions(opts)
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if call.System != "" {
		messages = append(messages, openai.SystemMessage(call.System))
	}
	messages = append(messages, openai.UserMessage(prompt))
	return o.complete(ctx, messages, call)
}

func (o *OpenAIProvider) GenerateJSON(ctx context.Context, prompt string, opts ...Option) (json.RawMessage, error) {
	text, err := o.GenerateText(ctx, prompt, opts...)
	if err != nil {
		return nil, err
	}
	return decodeJSON(text)
}

func (o *OpenAIProvider) ChatCompletion(ctx context.Context, messages []Message, opts ...Option) (string, error) {
	if len(messages) == 0 {
		return "", fmt.Errorf("no messages provided")
	}
	call := applyOptions(opts)
	params := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)+1)
	if call.System != "" {
		params = append(params, openai.SystemMessage(call.System))
	}
	for _, msg := range messages {
		switch strings.ToLower(msg.Role) {
		case "system":
			params = append(params, openai.SystemMessage(msg.Content))
		case "assistant":
			params = append(params, openai.AssistantMessage(msg.Content))
		default:
			params = append(params, openai.UserMessage(msg.Content))
		}
	}
	return o.complete(ctx, params, call)
}

func (o *OpenAIProvider) complete(ctx context.Context, messages []openai.ChatCompletionMessageParamUnion, call Options) (string, error) {
	logger := common.Logger()
	temperature := o.temperature
	if call.Temperature != nil {
		temperature = *call.Temperature
	}
	maxTokens := o.maxTokens
	if call.MaxTokens != nil {
		maxTokens = *call.MaxTokens
	}
	logger.Debug("llm: sending chat completion request", "provider", "openai", "model", o.model, "messages", len(messages))
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(o.model),
		Messages:    messages,
		Temperature: openai.Float(temperature),
		MaxTokens:   openai.Int(maxTokens),
	})
	if err != nil {
		logger.Error("llm: chat completion failed", "provider", "openai", "error", err)
		return "", fmt.Errorf("openai completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai completion: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
