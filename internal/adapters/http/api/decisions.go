package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	service "github.com/okian/tourdesk/internal/app"
	"github.com/okian/tourdesk/internal/domain/model"
	"github.com/okian/tourdesk/internal/domain/types"
)

// DecisionDependencies queues and reads review decisions.
type DecisionDependencies interface {
	// Decide reports duplicate=true when userID already has a decision.
	Decide(ctx context.Context, userID string, verdict model.Verdict) (bool, error)
	Decision(ctx context.Context, userID string) (types.DecisionView, error)
}

// DecisionsHandler handles the review endpoints.
type DecisionsHandler struct {
	deps         DecisionDependencies
	maxBodyBytes int64
}

// NewDecisionsHandler creates a new decisions handler.
func NewDecisionsHandler(deps DecisionDependencies, maxBodyBytes int64) *DecisionsHandler {
	return &DecisionsHandler{deps: deps, maxBodyBytes: maxBodyBytes}
}

type decisionRequest struct {
	UserID string `json:"userId"`
}

type ackResponse struct {
	Status    string `json:"status"`
	Duplicate bool   `json:"duplicate"`
}

// HandleAccept handles POST /accept-request.
func (h *DecisionsHandler) HandleAccept(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "api.accept_request", model.VerdictApproved)
}

// HandleReject handles POST /reject-request.
func (h *DecisionsHandler) HandleReject(w http.ResponseWriter, r *http.Request) {
	h.decide(w, r, "api.reject_request", model.VerdictRejected)
}

func (h *DecisionsHandler) decide(w http.ResponseWriter, r *http.Request, op string, verdict model.Verdict) {
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req decisionRequest
	if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if strings.TrimSpace(req.UserID) == "" {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, errors.New("missing userId")))
		return
	}

	duplicate, err := h.deps.Decide(r.Context(), req.UserID, verdict)
	if err != nil {
		status, code, kind := classify(err)
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}
	if duplicate {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", Duplicate: true})
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "queued", Duplicate: false})
}

// HandleGetDecision handles GET /decisions/{userId}.
func (h *DecisionsHandler) HandleGetDecision(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_decision"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	userID := strings.TrimPrefix(r.URL.Path, "/decisions/")
	if userID == "" || strings.Contains(userID, "/") {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}

	view, err := h.deps.Decision(r.Context(), userID)
	if err != nil {
		status, code, kind := classify(err)
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// classify maps service errors onto an HTTP status, an error code and a kind.
func classify(err error) (int, string, error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		return http.StatusBadRequest, "bad_request", ErrBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound, "not_found", ErrNotFound
	case errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure", ErrBackpressure
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable", ErrUnavailable
	default:
		return http.StatusInternalServerError, "internal_error", ErrInternal
	}
}
