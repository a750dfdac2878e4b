// File path: internal/api/server.go

// Package api exposes the analyst pipeline over a thin chi router. It holds
// no business logic of its own.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	chi "github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/querylens/querylens/internal/alerts"
	"github.com/querylens/querylens/internal/common"
	"github.com/querylens/querylens/internal/pipeline"
	"github.com/querylens/querylens/internal/store"
)

// Analyzer runs one question through the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, req pipeline.Request) (*pipeline.Response, error)
}

// AlertEvaluator runs one alert on demand.
type AlertEvaluator interface {
	Evaluate(ctx context.Context, alertID string) alerts.Outcome
}

// Catalog is the persistence surface the handlers need.
type Catalog interface {
	GetQuery(ctx context.Context, id string) (*store.QueryRecord, error)
	SaveDataSource(ctx context.Context, ds *store.DataSource) error
	ListDataSources(ctx context.Context) ([]store.DataSource, error)
	SaveAlert(ctx context.Context, a *alerts.Alert, dataSourceID string) error
	ListActiveAlerts(ctx context.Context) ([]alerts.Alert, error)
	ListExecutions(ctx context.Context, alertID string, limit int) ([]alerts.Execution, error)
}

type Server struct {
	router    chi.Router
	analyzer  Analyzer
	evaluator AlertEvaluator
	catalog   Catalog
}

func NewServer(analyzer Analyzer, evaluator AlertEvaluator, catalog Catalog) *Server {
	s := &Server{
		router:    chi.NewRouter(),
		analyzer:  analyzer,
		evaluator: evaluator,
		catalog:   catalog,
	}
	s.routes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() {
	s.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	s.router.Route("/api/v1", func(r chi.Router) {
		r.Post("/queries/analyze", s.handleAnalyze)
		r.Get("/queries/{queryID}", s.handleGetQuery)
		r.Post("/datasources", s.handleCreateDataSource)
		r.Get("/datasources", s.handleListDataSources)
		r.Post("/alerts", s.handleCreateAlert)
		r.Get("/alerts", s.handleListAlerts)
		r.Get("/alerts/{alertID}/executions", s.handleListExecutions)
		r.Post("/alerts/{alertID}/evaluate", s.handleEvaluateAlert)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		common.Logger().Error("api: encode response failed", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req pipeline.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Question == "" || req.DataSourceID == "" {
		writeError(w, http.StatusBadRequest, "natural_language_query and data_source_id are required")
		return
	}
	resp, err := s.analyzer.Analyze(r.Context(), req)
	if err != nil {
		if errors.Is(err, pipeline.ErrUnknownDataSource) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		common.Logger().Error("api: analyze failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetQuery(w http.ResponseWriter, r *http.Request) {
	rec, err := s.catalog.GetQuery(r.Context(), chi.URLParam(r, "queryID"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "query not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleCreateDataSource(w http.ResponseWriter, r *http.Request) {
	var ds store.DataSource
	if err := json.NewDecoder(r.Body).Decode(&ds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if ds.ID == "" {
		ds.ID = uuid.NewString()
	}
	if err := s.catalog.SaveDataSource(r.Context(), &ds); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, ds)
}

func (s *Server) handleListDataSources(w http.ResponseWriter, r *http.Request) {
	sources, err := s.catalog.ListDataSources(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, sources)
}

type createAlertRequest struct {
	alerts.Alert
	DataSourceID string `json:"data_source_id"`
}

func (s *Server) handleCreateAlert(w http.ResponseWriter, r *http.Request) {
	var req createAlertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.DataSourceID == "" {
		writeError(w, http.StatusBadRequest, "data_source_id is required")
		return
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if err := s.catalog.SaveAlert(r.Context(), &req.Alert, req.DataSourceID); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, req.Alert)
}

func (s *Server) handleListAlerts(w http.ResponseWriter, r *http.Request) {
	active, err := s.catalog.ListActiveAlerts(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, active)
}

func (s *Server) handleListExecutions(w http.ResponseWriter, r *http.Request) {
	execs, err := s.catalog.ListExecutions(r.Context(), chi.URLParam(r, "alertID"), 50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, execs)
}

func (s *Server) handleEvaluateAlert(w http.ResponseWriter, r *http.Request) {
	outcome := s.evaluator.Evaluate(r.Context(), chi.URLParam(r, "alertID"))
	body := map[string]any{
		"alert_id":  outcome.AlertID,
		"triggered": outcome.Triggered,
		"message":   outcome.Message,
	}
	if outcome.Value != nil {
		body["value"] = *outcome.Value
	}
	if outcome.Err != nil {
		body["error"] = outcome.Err.Error()
	}
	writeJSON(w, http.StatusOK, body)
}
