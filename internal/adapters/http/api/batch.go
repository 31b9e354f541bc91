// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sefakor20/kingdomvitals-insights/internal/domain/assess"
)

// BatchHandler handles batch assessment submissions.
type BatchHandler struct {
	deps Dependencies
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(deps Dependencies) *BatchHandler {
	return &BatchHandler{deps: deps}
}

// batchRequest mirrors the wire schema for POST /batch.
type batchRequest struct {
	RunID    string           `json:"run_id"`
	BranchID string           `json:"branch_id"`
	AsOf     string           `json:"as_of"`
	Subjects []subjectRequest `json:"subjects"`
}

func (b batchRequest) validate() error {
	switch {
	case strings.TrimSpace(b.RunID) == "":
		return errors.New("missing run_id")
	case strings.TrimSpace(b.BranchID) == "":
		return errors.New("missing branch_id")
	case len(b.Subjects) == 0:
		return errors.New("missing subjects")
	}
	return nil
}

// HandlePostBatch handles POST /batch requests. Subjects are enqueued for
// asynchronous assessment; the response reports how many were accepted,
// skipped as duplicates of this run, or rejected by backpressure.
func (h *BatchHandler) HandlePostBatch(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_batch"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	asOf, err := parseAsOf(req.AsOf)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	inputs := make([]assess.Input, 0, len(req.Subjects))
	for _, s := range req.Subjects {
		in, err := s.toInput()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		inputs = append(inputs, in)
	}

	res := h.deps.EnqueueBatch(r.Context(), req.RunID, req.BranchID, inputs, asOf)
	if res.Rejected > 0 && res.Accepted == 0 {
		writeError(w, http.StatusTooManyRequests, "backpressure", NewKind(op, ErrBackpressure))
		return
	}
	writeJSON(w, http.StatusAccepted, res)
}
