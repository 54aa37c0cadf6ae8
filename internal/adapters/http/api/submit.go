package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"net/url"
	"strings"

	"github.com/okian/tourdesk/internal/domain/model"
	"github.com/okian/tourdesk/pkg/logger"
)

// SubmitDependencies appends registration requests.
type SubmitDependencies interface {
	Submit(ctx context.Context, rec model.Request) (model.Request, error)
}

// SubmitHandler handles POST /submit-user-data.
type SubmitHandler struct {
	deps         SubmitDependencies
	maxBodyBytes int64
	logger       logger.Logger
}

// NewSubmitHandler creates a new submission handler.
func NewSubmitHandler(deps SubmitDependencies, maxBodyBytes int64) *SubmitHandler {
	return &SubmitHandler{
		deps:         deps,
		maxBodyBytes: maxBodyBytes,
		logger:       logger.Get().Named("submit"),
	}
}

// submission mirrors the OpenAPI schema for POST /submit-user-data.
type submission struct {
	UID              string            `json:"uid"`
	Username         string            `json:"username"`
	Email            string            `json:"email"`
	AuthState        json.RawMessage   `json:"authState"`
	RegistrationData *registrationData `json:"registrationData"`
}

type registrationData struct {
	Description string `json:"description"`
	UploadedURL string `json:"uploadedUrl"`
}

func (s submission) validate() error {
	switch {
	case s.RegistrationData == nil:
		return errors.New("missing registrationData")
	case strings.TrimSpace(s.Username) == "":
		return errors.New("missing username")
	case strings.TrimSpace(s.Email) == "":
		return errors.New("missing email")
	}
	if _, err := mail.ParseAddress(s.Email); err != nil {
		return fmt.Errorf("invalid email %q", s.Email)
	}
	if raw := s.RegistrationData.UploadedURL; raw != "" {
		u, err := url.Parse(raw)
		if err != nil || !u.IsAbs() || u.Host == "" {
			return fmt.Errorf("invalid uploadedUrl %q; must be an absolute URL", raw)
		}
	}
	return nil
}

func (s submission) record() model.Request {
	return model.Request{
		UserID:      strings.TrimSpace(s.UID),
		Name:        strings.TrimSpace(s.Username),
		Email:       strings.TrimSpace(s.Email),
		Message:     s.RegistrationData.Description,
		UploadedURL: s.RegistrationData.UploadedURL,
	}
}

type submitResponse struct {
	Message string `json:"message"`
}

// HandleSubmit handles POST /submit-user-data requests.
func (h *SubmitHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_user_data"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req submission
	if err := decodeBody(w, r, h.maxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	stored, err := h.deps.Submit(r.Context(), req.record())
	if err != nil {
		status, code, kind := classify(err)
		writeError(w, status, code, WrapKind(op, kind, err))
		return
	}

	h.logger.Info(r.Context(), "received user data",
		logger.String("uid", stored.UserID),
		logger.String("username", stored.Name),
		logger.String("email", stored.Email),
		logger.Bool("authState", len(req.AuthState) > 0 && string(req.AuthState) != "null"),
		logger.String("description", stored.Message),
		logger.String("uploadedUrl", stored.UploadedURL),
	)
	writeJSON(w, http.StatusOK, submitResponse{Message: "User data received successfully"})
}

// decodeBody reads exactly one JSON value from a size-limited body.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limit))
	err := dec.Decode(v)
	if err == nil {
		if extra := dec.Decode(&json.RawMessage{}); !errors.Is(extra, io.EOF) {
			err = extra
			if err == nil {
				err = errors.New("unexpected data after JSON value")
			}
		}
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return fmt.Errorf("body exceeds %d bytes", tooLarge.Limit)
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}
