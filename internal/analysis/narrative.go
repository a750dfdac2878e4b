// File path: internal/analysis/narrative.go
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/llm"
	"github.com/querylens/querylens/internal/stats"
	"github.com/querylens/querylens/internal/table"
)

// narrativePreviewRows bounds the table excerpt embedded in the prompt so a
// large result cannot blow the token budget.
const narrativePreviewRows = 10

// NarrativeGenerator explains results in business language.
type NarrativeGenerator struct {
	provider llm.Provider
}

func NewNarrativeGenerator(provider llm.Provider) *NarrativeGenerator {
	return &NarrativeGenerator{provider: provider}
}

// Narrate composes the analysis prompt from the question, a bounded data
// preview and the serialized statistics, then decodes the model's JSON
// answer. Temperature sits above the extraction stages so the wording reads
// naturally while the numbers stay grounded. A non-JSON response is a hard
// failure; absent optional fields just stay empty.
func (n *NarrativeGenerator) Narrate(ctx context.Context, userQuery string, t *table.Table, summary map[string]stats.ColumnStats) (Narrative, error) {
	logger := common.Logger()

	analysisBlock, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return Narrative{}, fmt.Errorf("generate narrative: marshal stats: %w", err)
	}

	prompt := fmt.Sprintf(dataAnalysisPrompt, userQuery, analysisBlock, narrativePreviewRows, previewTable(t, narrativePreviewRows))
	raw, err := n.provider.GenerateJSON(ctx, prompt, llm.WithTemperature(0.3))
	if err != nil {
		return Narrative{}, fmt.Errorf("generate narrative: %w", err)
	}

	var narrative Narrative
	if err := json.Unmarshal(raw, &narrative); err != nil {
		return Narrative{}, fmt.Errorf("generate narrative: decode response: %w", err)
	}
	logger.Debug("analysis: narrative generated", "key_points", len(narrative.KeyPoints))
	return narrative, nil
}

// previewTable renders up to limit rows as a compact pipe table.
func previewTable(t *table.Table, limit int) string {
	if t.Empty() {
		return "(no rows)"
	}
	cols := t.Columns
	if len(cols) == 0 && len(t.Rows) > 0 {
		for col := range t.Rows[0] {
			cols = append(cols, col)
		}
	}
	var b strings.Builder
	b.WriteString("| " + strings.Join(cols, " | ") + " |\n")
	seps := make([]string, len(cols))
	for i := range seps {
		seps[i] = "---"
	}
	b.WriteString("| " + strings.Join(seps, " | ") + " |\n")
	for i, row := range t.Rows {
		if i >= limit {
			break
		}
		cells := make([]string, len(cols))
		for j, col := range cols {
			cells[j] = table.String(row[col])
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return strings.TrimRight(b.String(), "\n")
}
