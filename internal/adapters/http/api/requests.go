package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/okian/tourdesk/internal/domain/listing"
	"github.com/okian/tourdesk/internal/domain/types"
)

// ListDependencies reads pages of the request collection.
type ListDependencies interface {
	List(ctx context.Context, q listing.Query) (types.Page, error)
}

// RequestsHandler handles GET /requests.
type RequestsHandler struct {
	deps            ListDependencies
	defaultPageSize int
	maxPageSize     int
}

// NewRequestsHandler creates a new listing handler.
func NewRequestsHandler(deps ListDependencies, defaultPageSize, maxPageSize int) *RequestsHandler {
	return &RequestsHandler{
		deps:            deps,
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
	}
}

// HandleList handles GET /requests?page=&pageSize=&search= requests.
func (h *RequestsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_requests"
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}

	query := r.URL.Query()
	page, err := intParam(query.Get("page"), 1)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("page: %w", err)))
		return
	}
	pageSize, err := intParam(query.Get("pageSize"), h.defaultPageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, fmt.Errorf("pageSize: %w", err)))
		return
	}
	if pageSize > h.maxPageSize {
		writeError(w, http.StatusBadRequest, "page_size_exceeded",
			WrapKind(op, ErrBadRequest, fmt.Errorf("pageSize must be at most %d", h.maxPageSize)))
		return
	}

	result, err := h.deps.List(r.Context(), listing.Query{
		Page:     page,
		PageSize: pageSize,
		Search:   query.Get("search"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
			return 0, fmt.Errorf("%q is out of range", raw)
		}
		return 0, fmt.Errorf("%q is not an integer", raw)
	}
	return n, nil
}
