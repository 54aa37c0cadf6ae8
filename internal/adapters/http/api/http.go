// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"
)

const (
	defaultPageSize = 10
	maxPageSize     = 100
	maxBodyBytes    = 1 << 20
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	SubmitDependencies
	ListDependencies
	DecisionDependencies
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
	submitHandler    *SubmitHandler
	requestsHandler  *RequestsHandler
	decisionsHandler *DecisionsHandler

	defaultPageSize int
	maxPageSize     int
	maxBodyBytes    int64
}

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithDefaultPageSize sets the pageSize used when the query omits it.
func WithDefaultPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.defaultPageSize = n
		}
	}
}

// WithMaxPageSize sets the largest pageSize a client may ask for.
func WithMaxPageSize(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxPageSize = n
		}
	}
}

// WithMaxBodyBytes caps the size of JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...Option) *Server {
	s := &Server{
		defaultPageSize: defaultPageSize,
		maxPageSize:     maxPageSize,
		maxBodyBytes:    maxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.healthHandler = NewHealthHandler()
	s.statsHandler = NewStatsHandler(statsProvider)
	s.submitHandler = NewSubmitHandler(deps, s.maxBodyBytes)
	s.requestsHandler = NewRequestsHandler(deps, s.defaultPageSize, s.maxPageSize)
	s.decisionsHandler = NewDecisionsHandler(deps, s.maxBodyBytes)
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/submit-user-data", MetricsMiddleware(s.submitHandler.HandleSubmit, "submit"))
	mux.HandleFunc("/requests", MetricsMiddleware(s.requestsHandler.HandleList, "requests"))
	mux.HandleFunc("/accept-request", MetricsMiddleware(s.decisionsHandler.HandleAccept, "accept"))
	mux.HandleFunc("/reject-request", MetricsMiddleware(s.decisionsHandler.HandleReject, "reject"))
	mux.HandleFunc("/decisions/", MetricsMiddleware(s.decisionsHandler.HandleGetDecision, "decisions"))
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
