// File path: internal/analysis/sqlgen.go
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/llm"
	"github.com/querylens/querylens/internal/schema"
	"github.com/querylens/querylens/internal/sqlguard"
)

// SQLGenerator turns a question plus a schema context into a validated
// read-only SQL candidate.
type SQLGenerator struct {
	provider llm.Provider
}

func NewSQLGenerator(provider llm.Provider) *SQLGenerator {
	return &SQLGenerator{provider: provider}
}

// Generate asks the model for a SELECT-only candidate grounded in the schema
// block, then gates it through sqlguard. An unsafe candidate is neutralized
// rather than surfaced as an error: a rejected query is a normal negative
// answer, not a system fault.
func (g *SQLGenerator) Generate(ctx context.Context, userQuery string, sc schema.Context) (SQLCandidate, error) {
	logger := common.Logger()
	prompt := fmt.Sprintf(sqlGenerationPrompt, sc.Format(), userQuery)
	raw, err := g.provider.GenerateJSON(ctx, prompt, llm.WithTemperature(0.1))
	if err != nil {
		return SQLCandidate{}, fmt.Errorf("generate sql: %w", err)
	}

	var candidate SQLCandidate
	if err := json.Unmarshal(raw, &candidate); err != nil {
		return SQLCandidate{}, fmt.Errorf("generate sql: decode response: %w", err)
	}

	if candidate.CanAnswer && strings.TrimSpace(candidate.SQL) == "" {
		// A positive answer must carry a query.
		candidate.CanAnswer = false
	}
	if candidate.CanAnswer && !sqlguard.Validate(candidate.SQL) {
		logger.Warn("analysis: generated SQL rejected by validator", "sql", candidate.SQL)
		candidate = SQLCandidate{
			SQL:         "",
			Explanation: "Generated SQL was flagged as unsafe (contained forbidden keywords).",
			CanAnswer:   false,
		}
	}
	logger.Debug("analysis: sql candidate ready", "can_answer", candidate.CanAnswer)
	return candidate, nil
}
