// File path: internal/analysis/intent.go
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/llm"
)

// IntentExtractor classifies natural-language questions into a QueryIntent.
type IntentExtractor struct {
	provider llm.Provider
}

func NewIntentExtractor(provider llm.Provider) *IntentExtractor {
	return &IntentExtractor{provider: provider}
}

// Analyze runs the classification prompt at low temperature and decodes the
// response strictly: a required field the model omitted is an error, not a
// default. There are no retries; a malformed response propagates to the
// caller.
func (e *IntentExtractor) Analyze(ctx context.Context, userQuery string) (QueryIntent, error) {
	logger := common.Logger()
	raw, err := e.provider.GenerateJSON(ctx,
		fmt.Sprintf("Analyze this query: '%s'", userQuery),
		llm.WithSystem(queryClassificationPrompt),
		llm.WithTemperature(0.1),
	)
	if err != nil {
		return QueryIntent{}, fmt.Errorf("analyze intent: %w", err)
	}

	var aux struct {
		Intent     *string        `json:"intent"`
		Metrics    *[]string      `json:"metrics"`
		Dimensions *[]string      `json:"dimensions"`
		TimeRange  *string        `json:"time_range"`
		Filters    map[string]any `json:"filters"`
		Complexity *string        `json:"complexity"`
	}
	if err := json.Unmarshal(raw, &aux); err != nil {
		return QueryIntent{}, fmt.Errorf("analyze intent: decode response: %w", err)
	}

	var missing []string
	if aux.Intent == nil || strings.TrimSpace(*aux.Intent) == "" {
		missing = append(missing, "intent")
	}
	if aux.Metrics == nil {
		missing = append(missing, "metrics")
	}
	if aux.Dimensions == nil {
		missing = append(missing, "dimensions")
	}
	if aux.Complexity == nil || strings.TrimSpace(*aux.Complexity) == "" {
		missing = append(missing, "complexity")
	}
	if len(missing) > 0 {
		return QueryIntent{}, fmt.Errorf("analyze intent: response missing required fields: %s", strings.Join(missing, ", "))
	}

	intent := QueryIntent{
		Intent:     strings.ToUpper(strings.TrimSpace(*aux.Intent)),
		Metrics:    *aux.Metrics,
		Dimensions: *aux.Dimensions,
		Filters:    aux.Filters,
		Complexity: strings.ToLower(strings.TrimSpace(*aux.Complexity)),
	}
	if aux.TimeRange != nil {
		intent.TimeRange = *aux.TimeRange
	}
	if intent.Filters == nil {
		intent.Filters = map[string]any{}
	}
	logger.Debug("analysis: intent extracted", "intent", intent.Intent, "complexity", intent.Complexity)
	return intent, nil
}
