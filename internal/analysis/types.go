// File path: internal/analysis/types.go
package analysis

// Intent categories.
const (
	IntentDescriptive  = "DESCRIPTIVE"
	IntentDiagnostic   = "DIAGNOSTIC"
	IntentPredictive   = "PREDICTIVE"
	IntentPrescriptive = "PRESCRIPTIVE"
	IntentComparative  = "COMPARATIVE"
	IntentTrend        = "TREND"
)

// QueryIntent is the structured reading of a natural-language question.
// Produced once per question and immutable afterward.
type QueryIntent struct {
	Intent     string         `json:"intent"`
	Metrics    []string       `json:"metrics"`
	Dimensions []string       `json:"dimensions"`
	TimeRange  string         `json:"time_range,omitempty"`
	Filters    map[string]any `json:"filters,omitempty"`
	Complexity string         `json:"complexity"`
}

// SQLCandidate is the generator's answer: a read-only query, its rationale,
// and whether the schema can support an answer at all. Unsafe candidates are
// neutralized in place by the generator before they leave it.
type SQLCandidate struct {
	SQL         string `json:"sql"`
	Explanation string `json:"explanation"`
	CanAnswer   bool   `json:"can_answer"`
}

// Narrative is the business-readable explanation of a result set.
type Narrative struct {
	Summary        string   `json:"summary"`
	Narrative      string   `json:"narrative"`
	KeyPoints      []string `json:"key_points"`
	Recommendation string   `json:"recommendation,omitempty"`
}
