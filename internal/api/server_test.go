// File path: internal/api/server_test.go
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/querylens/querylens/internal/alerts"
	"github.com/querylens/querylens/internal/pipeline"
	"github.com/querylens/querylens/internal/store"
)

type stubAnalyzer struct {
	resp *pipeline.Response
	err  error
}

func (s *stubAnalyzer) Analyze(ctx context.Context, req pipeline.Request) (*pipeline.Response, error) {
	return s.resp, s.err
}

type stubEvaluator struct {
	outcome alerts.Outcome
}

func (s *stubEvaluator) Evaluate(ctx context.Context, alertID string) alerts.Outcome {
	out := s.outcome
	out.AlertID = alertID
	return out
}

type stubCatalog struct {
	queries    map[string]*store.QueryRecord
	sources    []store.DataSource
	alerts     []alerts.Alert
	executions []alerts.Execution
	saved      []store.DataSource
	savedAlert *alerts.Alert
}

func (c *stubCatalog) GetQuery(ctx context.Context, id string) (*store.QueryRecord, error) {
	return c.queries[id], nil
}

func (c *stubCatalog) SaveDataSource(ctx context.Context, ds *store.DataSource) error {
	c.saved = append(c.saved, *ds)
	return nil
}

func (c *stubCatalog) ListDataSources(ctx context.Context) ([]store.DataSource, error) {
	return c.sources, nil
}

func (c *stubCatalog) SaveAlert(ctx context.Context, a *alerts.Alert, dataSourceID string) error {
	c.savedAlert = a
	return nil
}

func (c *stubCatalog) ListActiveAlerts(ctx context.Context) ([]alerts.Alert, error) {
	return c.alerts, nil
}

func (c *stubCatalog) ListExecutions(ctx context.Context, alertID string, limit int) ([]alerts.Execution, error) {
	return c.executions, nil
}

func newTestServer(analyzer Analyzer, evaluator AlertEvaluator, catalog Catalog) *Server {
	if analyzer == nil {
		analyzer = &stubAnalyzer{}
	}
	if evaluator == nil {
		evaluator = &stubEvaluator{}
	}
	if catalog == nil {
		catalog = &stubCatalog{}
	}
	return NewServer(analyzer, evaluator, catalog)
}

func doJSON(t *testing.T, s *Server, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealthz(t *testing.T) {
	rec := doJSON(t, newTestServer(nil, nil, nil), http.MethodGet, "/healthz", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("unexpected body: %s", rec.Body.String())
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	analyzer := &stubAnalyzer{resp: &pipeline.Response{
		QueryID:  "q-1",
		Question: "revenue by region",
		Status:   pipeline.StatusCompleted,
	}}
	s := newTestServer(analyzer, nil, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/queries/analyze",
		`{"natural_language_query": "revenue by region", "data_source_id": "ds-1"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	var resp pipeline.Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.QueryID != "q-1" || resp.Status != pipeline.StatusCompleted {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAnalyzeRejectsMissingFields(t *testing.T) {
	s := newTestServer(nil, nil, nil)
	for _, body := range []string{
		`{}`,
		`{"natural_language_query": "q"}`,
		`{"data_source_id": "ds-1"}`,
		`not json`,
	} {
		rec := doJSON(t, s, http.MethodPost, "/api/v1/queries/analyze", body)
		if rec.Code != http.StatusBadRequest {
			t.Fatalf("body %q: expected 400, got %d", body, rec.Code)
		}
	}
}

func TestAnalyzeUnknownSourceIs404(t *testing.T) {
	analyzer := &stubAnalyzer{err: pipeline.ErrUnknownDataSource}
	s := newTestServer(analyzer, nil, nil)
	rec := doJSON(t, s, http.MethodPost, "/api/v1/queries/analyze",
		`{"natural_language_query": "q", "data_source_id": "missing"}`)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestGetQuery(t *testing.T) {
	catalog := &stubCatalog{queries: map[string]*store.QueryRecord{
		"q-1": {ID: "q-1", Question: "revenue", Status: "completed"},
	}}
	s := newTestServer(nil, nil, catalog)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/queries/q-1", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	rec = doJSON(t, s, http.MethodGet, "/api/v1/queries/q-404", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown query, got %d", rec.Code)
	}
}

func TestCreateDataSourceAssignsID(t *testing.T) {
	catalog := &stubCatalog{}
	s := newTestServer(nil, nil, catalog)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/datasources",
		`{"name": "warehouse", "descriptor": {"source_type": "postgresql", "params": {"host": "db"}}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	if len(catalog.saved) != 1 || catalog.saved[0].ID == "" {
		t.Fatalf("expected a generated id, got %+v", catalog.saved)
	}
}

func TestCreateAlertRequiresDataSource(t *testing.T) {
	catalog := &stubCatalog{}
	s := newTestServer(nil, nil, catalog)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/alerts", `{"name": "floor", "alert_type": "threshold"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without data_source_id, got %d", rec.Code)
	}

	rec = doJSON(t, s, http.MethodPost, "/api/v1/alerts",
		`{"name": "floor", "alert_type": "threshold", "data_source_id": "ds-1",
		  "condition": {"sql": "SELECT 1", "column": "c", "operator": ">", "threshold": 5}}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("unexpected status: %d (%s)", rec.Code, rec.Body.String())
	}
	if catalog.savedAlert == nil || catalog.savedAlert.ID == "" {
		t.Fatalf("expected a saved alert with a generated id, got %+v", catalog.savedAlert)
	}
}

func TestEvaluateAlertEndpoint(t *testing.T) {
	value := 30.0
	evaluator := &stubEvaluator{outcome: alerts.Outcome{
		Triggered: true,
		Value:     &value,
		Message:   "Value 30 > 25",
	}}
	s := newTestServer(nil, evaluator, nil)

	rec := doJSON(t, s, http.MethodPost, "/api/v1/alerts/a-1/evaluate", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body["alert_id"] != "a-1" || body["triggered"] != true {
		t.Fatalf("unexpected body: %v", body)
	}
	if body["value"] != 30.0 {
		t.Fatalf("unexpected value: %v", body["value"])
	}
}

func TestListExecutionsEndpoint(t *testing.T) {
	catalog := &stubCatalog{executions: []alerts.Execution{
		{ID: "e-1", AlertID: "a-1", Status: alerts.StatusTriggered},
	}}
	s := newTestServer(nil, nil, catalog)

	rec := doJSON(t, s, http.MethodGet, "/api/v1/alerts/a-1/executions", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	var execs []alerts.Execution
	if err := json.Unmarshal(rec.Body.Bytes(), &execs); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(execs) != 1 || execs[0].Status != alerts.StatusTriggered {
		t.Fatalf("unexpected executions: %+v", execs)
	}
}
