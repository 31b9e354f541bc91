// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/forecast"
)

// ForecastsHandler handles forecast generation and reconciliation.
type ForecastsHandler struct {
	deps Dependencies
}

// NewForecastsHandler creates a new forecasts handler.
func NewForecastsHandler(deps Dependencies) *ForecastsHandler {
	return &ForecastsHandler{deps: deps}
}

type forecastPointDTO struct {
	PeriodStart string             `json:"period_start"`
	Value       float64            `json:"value"`
	Breakdown   map[string]float64 `json:"breakdown,omitempty"`
}

// forecastRequest mirrors the wire schema for POST /forecasts.
type forecastRequest struct {
	BranchID    string             `json:"branch_id"`
	Metric      string             `json:"metric"`
	History     []forecastPointDTO `json:"history"`
	PeriodStart string             `json:"period_start"`
	PeriodEnd   string             `json:"period_end"`
	AsOf        string             `json:"as_of"`
}

func parseMetric(raw string) (forecast.Metric, error) {
	switch forecast.Metric(raw) {
	case forecast.MetricAttendance:
		return forecast.MetricAttendance, nil
	case forecast.MetricGiving:
		return forecast.MetricGiving, nil
	}
	return "", errors.New("invalid metric; must be attendance or giving")
}

// HandleForecasts handles POST /forecasts (generate) and
// GET /forecasts?branch=&metric= (list).
func (h *ForecastsHandler) HandleForecasts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleGenerate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *ForecastsHandler) handleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_forecast"
	var req forecastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.BranchID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	metric, err := parseMetric(req.Metric)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	periodStart, err := parseTime(req.PeriodStart, "period_start")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	periodEnd, err := parseTime(req.PeriodEnd, "period_end")
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	history := make([]forecast.Point, 0, len(req.History))
	for _, p := range req.History {
		start, err := parseTime(p.PeriodStart, "history.period_start")
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		history = append(history, forecast.Point{
			PeriodStart: start,
			Value:       p.Value,
			Breakdown:   p.Breakdown,
		})
	}

	result, err := h.deps.Forecast(r.Context(), req.BranchID, metric, history, periodStart, periodEnd, asOf)
	if err != nil {
		if errors.Is(err, forecast.ErrInsufficientHistory) {
			writeError(w, http.StatusUnprocessableEntity, "insufficient_history", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *ForecastsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_forecasts"
	branchID := r.URL.Query().Get("branch")
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	metric, err := parseMetric(r.URL.Query().Get("metric"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	results, err := h.deps.ForecastsByBranch(r.Context(), branchID, metric)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, results)
}

// actualRequest mirrors the wire schema for POST /forecasts/{id}/actual.
type actualRequest struct {
	Actual float64 `json:"actual"`
}

// HandlePostActual handles POST /forecasts/{id}/actual requests.
func (h *ForecastsHandler) HandlePostActual(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_actual"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/forecasts/")
	id := strings.TrimSuffix(path, "/actual")
	if id == "" || id == path || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	var req actualRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, err := h.deps.RecordActual(r.Context(), id, req.Actual)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// accuracyResponse reports trailing forecast accuracy for a branch. Accuracy
// is null when no reconciled forecasts exist in the window.
type accuracyResponse struct {
	BranchID string   `json:"branch_id"`
	Accuracy *float64 `json:"accuracy"`
}

// HandleGetAccuracy handles GET /forecasts/accuracy?branch=&as_of= requests.
func (h *ForecastsHandler) HandleGetAccuracy(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_accuracy"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	branchID := r.URL.Query().Get("branch")
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	asOf, err := parseAsOf(r.URL.Query().Get("as_of"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	accuracy, err := h.deps.BranchAccuracy(r.Context(), branchID, asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, accuracyResponse{BranchID: branchID, Accuracy: accuracy})
}
