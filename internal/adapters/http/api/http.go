// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	service "github.com/sefakor20/kingdomvitals-insights/internal/app"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/alerts"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/forecast"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/roster"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	ComputeAssessment(ctx context.Context, in assess.Input, asOf time.Time) (assess.Assessment, error)
	Assessment(ctx context.Context, branchID string, domain types.Domain, subjectID string) (assess.Assessment, error)
	AssessmentsByBranch(ctx context.Context, branchID string, domain types.Domain) ([]assess.Assessment, error)
	EnqueueBatch(ctx context.Context, runID, branchID string, inputs []assess.Input, asOf time.Time) service.BatchResult

	Forecast(ctx context.Context, branchID string, metric forecast.Metric, history []forecast.Point, periodStart, periodEnd, asOf time.Time) (forecast.Result, error)
	RecordActual(ctx context.Context, forecastID string, actual float64) (forecast.Result, error)
	ForecastsByBranch(ctx context.Context, branchID string, metric forecast.Metric) ([]forecast.Result, error)
	BranchAccuracy(ctx context.Context, branchID string, asOf time.Time) (*float64, error)

	RankCandidates(ctx context.Context, slot model.Slot, pool []model.PoolMember, asOf time.Time) ([]roster.Suitability, []roster.Exclusion)
	OptimizeAssignments(ctx context.Context, branchID string, slots []model.Slot, pool []model.PoolMember, asOf time.Time) (roster.Plan, error)
	Plan(ctx context.Context, id string) (roster.Plan, error)

	UpsertAlertRule(ctx context.Context, rule model.AlertRule) error
	AlertRule(ctx context.Context, branchID string, t types.AlertType) model.AlertRule
	EvaluateAlerts(ctx context.Context, branchID string, domains []types.Domain, asOf time.Time) ([]alerts.Event, error)
	AlertEvents(ctx context.Context, branchID string, limit int) ([]alerts.Event, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	assessmentsHandler *AssessmentsHandler
	batchHandler       *BatchHandler
	forecastsHandler   *ForecastsHandler
	rosterHandler      *RosterHandler
	alertsHandler      *AlertsHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		assessmentsHandler: NewAssessmentsHandler(deps),
		batchHandler:       NewBatchHandler(deps),
		forecastsHandler:   NewForecastsHandler(deps),
		rosterHandler:      NewRosterHandler(deps),
		alertsHandler:      NewAlertsHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	// Specific paths first (most specific to least specific)
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/assessments", MetricsMiddleware(s.assessmentsHandler.HandleAssessments, "assessments"))
	mux.HandleFunc("/assessments/", MetricsMiddleware(s.assessmentsHandler.HandleGetAssessment, "assessment"))
	mux.HandleFunc("/batch", MetricsMiddleware(s.batchHandler.HandlePostBatch, "batch"))
	mux.HandleFunc("/forecasts", MetricsMiddleware(s.forecastsHandler.HandleForecasts, "forecasts"))
	mux.HandleFunc("/forecasts/accuracy", MetricsMiddleware(s.forecastsHandler.HandleGetAccuracy, "forecast_accuracy"))
	mux.HandleFunc("/forecasts/", MetricsMiddleware(s.forecastsHandler.HandlePostActual, "forecast_actual"))
	mux.HandleFunc("/roster/rank", MetricsMiddleware(s.rosterHandler.HandlePostRank, "roster_rank"))
	mux.HandleFunc("/roster/optimize", MetricsMiddleware(s.rosterHandler.HandlePostOptimize, "roster_optimize"))
	mux.HandleFunc("/roster/plans/", MetricsMiddleware(s.rosterHandler.HandleGetPlan, "roster_plan"))
	mux.HandleFunc("/alerts/rules", MetricsMiddleware(s.alertsHandler.HandleRules, "alert_rules"))
	mux.HandleFunc("/alerts/evaluate", MetricsMiddleware(s.alertsHandler.HandlePostEvaluate, "alert_evaluate"))
	mux.HandleFunc("/alerts/events", MetricsMiddleware(s.alertsHandler.HandleGetEvents, "alert_events"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// parseAsOf reads the evaluation time from an RFC3339 query parameter or
// body field value, defaulting to now when absent.
func parseAsOf(raw string) (time.Time, error) {
	if strings.TrimSpace(raw) == "" {
		return time.Now().UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, errors.New("invalid as_of; must be RFC3339")
	}
	return t, nil
}

// isNotFound allows the API to translate upstream not-found errors to 404.
// This stays generic to avoid tight coupling with specific packages.
func isNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "not found")
}
