// Package ui exposes the analysis pipeline over HTTP: submit an analysis,
// retrieve stored records, and render reports.
package ui

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"netpath/adapters/report"
	"netpath/app"
	"netpath/domain/core"
	"netpath/domain/expr"
	"netpath/domain/network"
	"netpath/domain/pathway"
	"netpath/internal"
	"netpath/ports"
)

// App represents the HTTP application
type App struct {
	router  *chi.Mux
	service *app.AnalysisService
	repo    ports.AnalysisRepository
	report  *report.Generator
	logger  *internal.Logger
}

// Config holds HTTP application configuration
type Config struct {
	Port string
}

// NewApp creates a new HTTP application around an analysis service and the
// repository its records are read back from.
func NewApp(service *app.AnalysisService, repo ports.AnalysisRepository, logger *internal.Logger) *App {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	a := &App{
		router:  chi.NewRouter(),
		service: service,
		repo:    repo,
		report:  report.NewGenerator(),
		logger:  logger,
	}
	a.routes()
	return a
}

func (a *App) routes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)

	a.router.Route("/api", func(r chi.Router) {
		r.Post("/analyses", a.handleCreateAnalysis)
		r.Get("/analyses", a.handleListAnalyses)
		r.Get("/analyses/{id}", a.handleGetAnalysis)
		r.Get("/analyses/{id}/report", a.handleGetReport)
	})
	a.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
}

// Handler returns the root http handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// Serve blocks, listening on the configured port.
func (a *App) Serve(cfg Config) error {
	addr := ":" + cfg.Port
	a.logger.Info("listening on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

// analysisPayload is the JSON body for POST /api/analyses. Matrices are
// supplied inline; file-based workflows go through the CLI instead.
type analysisPayload struct {
	Expression *expr.Matrix             `json:"expression"`
	Labels     expr.Labels              `json:"labels"`
	Indicator  *pathway.IndicatorMatrix `json:"indicator"`
	Zero       network.Mask             `json:"zero_mask,omitempty"`
	One        network.Mask             `json:"one_mask,omitempty"`
	Directed   bool                     `json:"directed,omitempty"`
	Lambdas    []float64                `json:"lambdas,omitempty"`
	Weights    []float64                `json:"weights,omitempty"`
	Lambda     float64                  `json:"lambda,omitempty"`
	Eta        float64                  `json:"eta,omitempty"`
	Eps        float64                  `json:"eps,omitempty"`
	Method     string                   `json:"method,omitempty"`
}

func (a *App) handleCreateAnalysis(w http.ResponseWriter, r *http.Request) {
	var payload analysisPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		a.writeError(w, http.StatusBadRequest, fmt.Errorf("invalid JSON body: %w", err))
		return
	}
	req := app.AnalysisRequest{
		Expr:      payload.Expression,
		Labels:    payload.Labels,
		Indicator: payload.Indicator,
		Zero:      payload.Zero,
		One:       payload.One,
		Directed:  payload.Directed,
		Lambdas:   payload.Lambdas,
		Weights:   payload.Weights,
		Lambda:    payload.Lambda,
		Eta:       payload.Eta,
		Eps:       payload.Eps,
		Method:    ports.VarianceMethod(payload.Method),
	}
	record, err := a.service.Run(r.Context(), req)
	if err != nil {
		a.writeError(w, http.StatusUnprocessableEntity, err)
		return
	}
	a.writeJSON(w, http.StatusCreated, record)
}

func (a *App) handleListAnalyses(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	records, err := a.repo.ListAnalyses(r.Context(), limit)
	if err != nil {
		a.writeError(w, http.StatusInternalServerError, err)
		return
	}
	a.writeJSON(w, http.StatusOK, records)
}

func (a *App) handleGetAnalysis(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	record, err := a.repo.GetAnalysis(r.Context(), id)
	if err != nil {
		a.writeError(w, http.StatusNotFound, err)
		return
	}
	a.writeJSON(w, http.StatusOK, record)
}

func (a *App) handleGetReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseAnalysisID(chi.URLParam(r, "id"))
	if err != nil {
		a.writeError(w, http.StatusBadRequest, err)
		return
	}
	record, err := a.repo.GetAnalysis(r.Context(), id)
	if err != nil {
		a.writeError(w, http.StatusNotFound, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(a.report.HTML(record))
}

func (a *App) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		a.logger.Error("encoding response: %v", err)
	}
}

func (a *App) writeError(w http.ResponseWriter, status int, err error) {
	a.logger.Warn("request failed: %v", err)
	a.writeJSON(w, status, map[string]string{"error": err.Error()})
}
