// File path: internal/pipeline/processor.go

// Package pipeline chains the five analysis stages into one request:
// intent -> SQL generation -> execution -> statistics -> narrative. Stages
// run strictly sequentially; each stage's output is the next one's input.
package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/querylens/querylens/internal/analysis"
	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/datasource"
	"github.com/querylens/querylens/internal/schema"
	"github.com/querylens/querylens/internal/stats"
	"github.com/querylens/querylens/internal/store"
	"github.com/querylens/querylens/internal/table"
)

// Status is the terminal state of one analysis request.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCached    Status = "cached"
)

// ErrUnknownDataSource reports a request against an unregistered source.
var ErrUnknownDataSource = errors.New("unknown data source")

// Request is one natural-language question aimed at a registered source.
type Request struct {
	Question     string `json:"natural_language_query"`
	DataSourceID string `json:"data_source_id"`
}

// Response is the composed result of the pipeline.
type Response struct {
	QueryID      string                       `json:"query_id"`
	Question     string                       `json:"natural_language_query"`
	Status       Status                       `json:"status"`
	Intent       *analysis.QueryIntent        `json:"intent,omitempty"`
	GeneratedSQL string                       `json:"generated_sql,omitempty"`
	CanAnswer    bool                         `json:"can_answer"`
	Rows         []table.Row                  `json:"results,omitempty"`
	Stats        map[string]stats.ColumnStats `json:"stats,omitempty"`
	Trend        *stats.TrendResult           `json:"trend,omitempty"`
	Narrative    *analysis.Narrative          `json:"narrative,omitempty"`
	ExecutionMS  int64                        `json:"execution_time_ms"`
	ErrorMessage string                       `json:"error_message,omitempty"`
}

// IntentAnalyzer classifies a question. Satisfied by *analysis.IntentExtractor.
type IntentAnalyzer interface {
	Analyze(ctx context.Context, userQuery string) (analysis.QueryIntent, error)
}

// SQLProducer generates a validated candidate. Satisfied by *analysis.SQLGenerator.
type SQLProducer interface {
	Generate(ctx context.Context, userQuery string, sc schema.Context) (analysis.SQLCandidate, error)
}

// Runner executes SQL against a source. Satisfied by *datasource.Executor.
type Runner interface {
	Execute(ctx context.Context, sql string, desc datasource.Descriptor) (*table.Table, error)
}

// Narrator explains results. Satisfied by *analysis.NarrativeGenerator.
type Narrator interface {
	Narrate(ctx context.Context, userQuery string, t *table.Table, summary map[string]stats.ColumnStats) (analysis.Narrative, error)
}

// Catalog is the persistence collaborator for query records.
type Catalog interface {
	GetDataSource(ctx context.Context, id string) (*store.DataSource, error)
	CreateQuery(ctx context.Context, q *store.QueryRecord) error
	UpdateQuery(ctx context.Context, q *store.QueryRecord) error
}

// Processor owns no mutable state across invocations; every call takes its
// inputs as parameters and returns a fresh response.
type Processor struct {
	intents  IntentAnalyzer
	sqlgen   SQLProducer
	runner   Runner
	narrator Narrator
	catalog  Catalog
	cache    *insightCache
}

func NewProcessor(intents IntentAnalyzer, sqlgen SQLProducer, runner Runner, narrator Narrator, catalog Catalog, cacheTTL time.Duration) *Processor {
	return &Processor{
		intents:  intents,
		sqlgen:   sqlgen,
		runner:   runner,
		narrator: narrator,
		catalog:  catalog,
		cache:    newInsightCache(cacheTTL),
	}
}

// Close stops the cache's expiration goroutine. The processor must not be
// used afterwards.
func (p *Processor) Close() {
	p.cache.stop()
}

// Analyze runs the full pipeline for one question. Stage failures finish the
// request as FAILED with a readable message; a cannot-answer outcome is a
// normal completed response, not a fault.
func (p *Processor) Analyze(ctx context.Context, req Request) (*Response, error) {
	logger := common.Logger()
	ds, err := p.catalog.GetDataSource(ctx, req.DataSourceID)
	if err != nil {
		return nil, err
	}
	if ds == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownDataSource, req.DataSourceID)
	}

	key := cacheKey(req.Question, []string{ds.ID}, "")
	if cached := p.cache.get(key); cached != nil {
		logger.Debug("pipeline: cache hit", "query_id", cached.QueryID)
		hit := *cached
		hit.Status = StatusCached
		return &hit, nil
	}

	rec := &store.QueryRecord{
		ID:           uuid.NewString(),
		Question:     req.Question,
		DataSourceID: ds.ID,
		Status:       string(StatusPending),
	}
	if err := p.catalog.CreateQuery(ctx, rec); err != nil {
		return nil, err
	}

	resp := &Response{QueryID: rec.ID, Question: req.Question, Status: StatusCompleted}
	start := time.Now()
	fail := func(stage string, err error) (*Response, error) {
		logger.Error("pipeline: stage failed", "query_id", rec.ID, "stage", stage, "error", err)
		resp.Status = StatusFailed
		resp.ErrorMessage = err.Error()
		resp.ExecutionMS = time.Since(start).Milliseconds()
		rec.Status = string(StatusFailed)
		rec.ErrorMessage = err.Error()
		rec.ExecutionMS = resp.ExecutionMS
		if uerr := p.catalog.UpdateQuery(ctx, rec); uerr != nil {
			logger.Error("pipeline: persisting failure status failed", "query_id", rec.ID, "error", uerr)
		}
		return resp, nil
	}

	// Stage 1: intent.
	intent, err := p.intents.Analyze(ctx, req.Question)
	if err != nil {
		return fail("intent", err)
	}
	resp.Intent = &intent
	rec.Intent = intent.Intent
	if entities, merr := json.Marshal(map[string]any{
		"metrics":    intent.Metrics,
		"dimensions": intent.Dimensions,
		"time_range": intent.TimeRange,
		"filters":    intent.Filters,
	}); merr == nil {
		rec.Entities = string(entities)
	}

	// Stage 2: SQL generation, already gated by the safety validator.
	candidate, err := p.sqlgen.Generate(ctx, req.Question, ds.Schema)
	if err != nil {
		return fail("sql_generation", err)
	}
	if !candidate.CanAnswer {
		explanation := candidate.Explanation
		if explanation == "" {
			explanation = "Cannot answer this question with the available schema."
		}
		resp.CanAnswer = false
		resp.Narrative = &analysis.Narrative{Summary: explanation}
		resp.ExecutionMS = time.Since(start).Milliseconds()
		rec.Status = string(StatusCompleted)
		rec.ExecutionMS = resp.ExecutionMS
		if results, merr := json.Marshal(map[string]any{"can_answer": false, "explanation": explanation}); merr == nil {
			rec.Results = string(results)
		}
		if uerr := p.catalog.UpdateQuery(ctx, rec); uerr != nil {
			logger.Error("pipeline: persisting cannot-answer failed", "query_id", rec.ID, "error", uerr)
		}
		return resp, nil
	}
	resp.CanAnswer = true
	resp.GeneratedSQL = candidate.SQL
	rec.GeneratedSQL = candidate.SQL

	// Stage 3: execution.
	tbl, err := p.runner.Execute(ctx, candidate.SQL, ds.Descriptor)
	if err != nil {
		return fail("execution", err)
	}
	resp.Rows = tbl.Rows

	// Stage 4: statistics. Pure and synchronous; cannot fail.
	resp.Stats = stats.Summary(tbl, nil)
	if intent.Intent == analysis.IntentTrend {
		if dateCol, valueCol, ok := trendColumns(tbl); ok {
			trend := stats.Trend(tbl, dateCol, valueCol)
			resp.Trend = &trend
		}
	}

	// Stage 5: narrative.
	narrative, err := p.narrator.Narrate(ctx, req.Question, tbl, resp.Stats)
	if err != nil {
		return fail("narrative", err)
	}
	resp.Narrative = &narrative
	resp.ExecutionMS = time.Since(start).Milliseconds()

	rec.Status = string(StatusCompleted)
	rec.ExecutionMS = resp.ExecutionMS
	if results, merr := json.Marshal(map[string]any{
		"data":      tbl.Rows,
		"stats":     resp.Stats,
		"narrative": narrative,
	}); merr == nil {
		rec.Results = string(results)
	}
	if uerr := p.catalog.UpdateQuery(ctx, rec); uerr != nil {
		logger.Error("pipeline: persisting completion failed", "query_id", rec.ID, "error", uerr)
	}

	p.cache.put(key, resp)
	logger.Info("pipeline: request completed", "query_id", rec.ID, "rows", len(resp.Rows), "ms", resp.ExecutionMS)
	return resp, nil
}

// trendColumns picks the first non-numeric column as the timeline and the
// first numeric column as the value series.
func trendColumns(t *table.Table) (string, string, bool) {
	numeric := t.NumericColumns()
	if len(numeric) == 0 {
		return "", "", false
	}
	isNumeric := make(map[string]bool, len(numeric))
	for _, col := range numeric {
		isNumeric[col] = true
	}
	for _, col := range t.Columns {
		if !isNumeric[col] {
			return col, numeric[0], true
		}
	}
	return "", "", false
}
