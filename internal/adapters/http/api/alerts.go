package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/model"
	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// AlertsHandler handles alert rule management and evaluation.
type AlertsHandler struct {
	deps Dependencies
}

// NewAlertsHandler creates a new alerts handler.
func NewAlertsHandler(deps Dependencies) *AlertsHandler {
	return &AlertsHandler{deps: deps}
}

// ruleRequest mirrors the wire schema for PUT /alerts/rules.
type ruleRequest struct {
	BranchID       string   `json:"branch_id"`
	Type           string   `json:"type"`
	Enabled        bool     `json:"enabled"`
	Threshold      float64  `json:"threshold"`
	Channels       []string `json:"channels,omitempty"`
	RecipientRoles []string `json:"recipient_roles,omitempty"`
	CooldownHours  int      `json:"cooldown_hours"`
}

// HandleRules handles PUT /alerts/rules (upsert) and
// GET /alerts/rules?branch=&type= (read the effective rule).
func (h *AlertsHandler) HandleRules(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPut:
		h.handleUpsertRule(w, r)
	case http.MethodGet:
		h.handleGetRule(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AlertsHandler) handleUpsertRule(w http.ResponseWriter, r *http.Request) {
	const op = "api.put_alert_rule"
	var req ruleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	alertType, err := types.ParseAlertType(req.Type)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	rule := model.AlertRule{
		BranchID:       req.BranchID,
		Type:           alertType,
		Enabled:        req.Enabled,
		Threshold:      req.Threshold,
		Channels:       req.Channels,
		RecipientRoles: req.RecipientRoles,
		CooldownHours:  req.CooldownHours,
	}
	if err := h.deps.UpsertAlertRule(r.Context(), rule); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, rule)
}

func (h *AlertsHandler) handleGetRule(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_alert_rule"
	branchID := r.URL.Query().Get("branch")
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	alertType, err := types.ParseAlertType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	writeJSON(w, http.StatusOK, h.deps.AlertRule(r.Context(), branchID, alertType))
}

// evaluateRequest mirrors the wire schema for POST /alerts/evaluate.
type evaluateRequest struct {
	BranchID string   `json:"branch_id"`
	Domains  []string `json:"domains,omitempty"`
	AsOf     string   `json:"as_of"`
}

// HandlePostEvaluate handles POST /alerts/evaluate requests, running the
// branch's stored assessments through its alert rules.
func (h *AlertsHandler) HandlePostEvaluate(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_evaluate"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req evaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.BranchID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	var domains []types.Domain
	for _, raw := range req.Domains {
		d, err := types.ParseDomain(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		domains = append(domains, d)
	}

	events, err := h.deps.EvaluateAlerts(r.Context(), req.BranchID, domains, asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// HandleGetEvents handles GET /alerts/events?branch=&limit= requests.
func (h *AlertsHandler) HandleGetEvents(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_alert_events"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	branchID := r.URL.Query().Get("branch")
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		limit = n
	}

	events, err := h.deps.AlertEvents(r.Context(), branchID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, events)
}
