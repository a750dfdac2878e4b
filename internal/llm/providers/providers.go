// File path: internal/llm/providers/providers.go
package providers

import (
	"context"
	"encoding/json"
)

// Message is one turn of a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the uniform surface over interchangeable language-model
// backends. GenerateJSON returns the raw decoded document so that each caller
// can unmarshal into its own response struct and validate required fields.
// No caching or retry happens at this layer; retry policy belongs to callers.
type Provider interface {
	GenerateText(ctx context.Context, prompt string, opts ...Option) (string, error)
	GenerateJSON(ctx context.Context, prompt string, opts ...Option) (json.RawMessage, error)
	ChatCompletion(ctx context.Context, messages []Message, opts ...Option) (string, error)
	Name() string
}

// Options carries the per-call overrides shared by every backend.
type Options struct {
	System      string
	Temperature *float64
	MaxTokens   *int64
}

// Option mutates per-call Options.
type Option func(*Options)

// WithSystem sets the system instruction for the call.
func WithSystem(system string) Option {
	return func(o *Options) { o.System = system }
}

// WithTemperature overrides the backend's default sampling temperature.
func WithTemperature(t float64) Option {
	return func(o *Options) { o.Temperature = &t }
}

// WithMaxTokens overrides the backend's default completion budget.
func WithMaxTokens(n int64) Option {
	return func(o *Options) { o.MaxTokens = &n }
}

func applyOptions(opts []Option) Options {
	var out Options
	for _, opt := range opts {
		if opt != nil {
			opt(&out)
		}
	}
	return out
}
