// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/types"
)

// AssessmentsHandler handles synchronous assessment requests.
type AssessmentsHandler struct {
	deps Dependencies
}

// NewAssessmentsHandler creates a new assessments handler.
func NewAssessmentsHandler(deps Dependencies) *AssessmentsHandler {
	return &AssessmentsHandler{deps: deps}
}

// assessRequest mirrors the wire schema for POST /assessments.
type assessRequest struct {
	AsOf    string         `json:"as_of"`
	Subject subjectRequest `json:"subject"`
}

// HandleAssessments handles POST /assessments (compute one subject now) and
// GET /assessments?branch=&domain= (list a branch's latest results).
func (h *AssessmentsHandler) HandleAssessments(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCompute(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *AssessmentsHandler) handleCompute(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_assessment"
	var req assessRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	in, err := req.Subject.toInput()
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	assessment, err := h.deps.ComputeAssessment(r.Context(), in, asOf)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}

func (h *AssessmentsHandler) handleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_assessments"
	branchID := r.URL.Query().Get("branch")
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	domain, err := types.ParseDomain(r.URL.Query().Get("domain"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	assessments, err := h.deps.AssessmentsByBranch(r.Context(), branchID, domain)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, assessments)
}

// HandleGetAssessment handles GET /assessments/{domain}/{subject_id}?branch=.
func (h *AssessmentsHandler) HandleGetAssessment(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_assessment"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	path := strings.TrimPrefix(r.URL.Path, "/assessments/")
	parts := strings.SplitN(path, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	domain, err := types.ParseDomain(parts[0])
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	branchID := r.URL.Query().Get("branch")
	if branchID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	assessment, err := h.deps.Assessment(r.Context(), branchID, domain, parts[1])
	if err != nil {
		if isNotFound(err) {
			writeError(w, http.StatusNotFound, "not_found", err)
			return
		}
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, assessment)
}
