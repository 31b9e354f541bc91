// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/roster"
)

// RosterHandler handles candidate ranking and assignment optimization.
type RosterHandler struct {
	deps Dependencies
}

// NewRosterHandler creates a new roster handler.
func NewRosterHandler(deps Dependencies) *RosterHandler {
	return &RosterHandler{deps: deps}
}

// rankRequestWire mirrors the wire schema for POST /roster/rank.
type rankRequestWire struct {
	Slot slotDTO         `json:"slot"`
	Pool []poolMemberDTO `json:"pool"`
	AsOf string          `json:"as_of"`
}

type rankResponse struct {
	Ranked   []roster.Suitability `json:"ranked"`
	Excluded []roster.Exclusion   `json:"excluded"`
}

// HandlePostRank handles POST /roster/rank requests.
func (h *RosterHandler) HandlePostRank(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_rank"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req rankRequestWire
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	slot, err := req.Slot.toModel()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	pool, err := toPool(req.Pool)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	ranked, excluded := h.deps.RankCandidates(r.Context(), slot, pool, asOf)
	writeJSON(w, http.StatusOK, rankResponse{Ranked: ranked, Excluded: excluded})
}

// optimizeRequest mirrors the wire schema for POST /roster/optimize.
type optimizeRequest struct {
	BranchID string          `json:"branch_id"`
	Slots    []slotDTO       `json:"slots"`
	Pool     []poolMemberDTO `json:"pool"`
	AsOf     string          `json:"as_of"`
}

// HandlePostOptimize handles POST /roster/optimize requests.
func (h *RosterHandler) HandlePostOptimize(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_optimize"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req optimizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.BranchID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	slots, err := toSlots(req.Slots)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	pool, err := toPool(req.Pool)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	plan, err := h.deps.OptimizeAssignments(r.Context(), req.BranchID, slots, pool, asOf)
	if err != nil {
		if errors.Is(err, roster.ErrNoSlots) {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}

// HandleGetPlan handles GET /roster/plans/{id} requests.
func (h *RosterHandler) HandleGetPlan(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_plan"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	id := strings.TrimPrefix(r.URL.Path, "/roster/plans/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	plan, err := h.deps.Plan(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, plan)
}
