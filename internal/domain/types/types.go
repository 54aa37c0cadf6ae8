// Package types contains the JSON read shapes shared by the API and tools.
package types

import (
	"time"

	"github.com/okian/tourdesk/internal/domain/model"
)

// RequestView is one row of GET /requests.
type RequestView struct {
	ID          string `json:"id,omitempty"`
	UserID      string `json:"user_id,omitempty"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Message     string `json:"message"`
	UploadedURL string `json:"uploaded_url,omitempty"`
}

// Page is the body of GET /requests.
type Page struct {
	Requests   []RequestView `json:"requests"`
	TotalItems int           `json:"totalItems"`
}

// DecisionView is the body of GET /decisions/{userId}.
type DecisionView struct {
	UserID    string    `json:"user_id"`
	Verdict   string    `json:"verdict"`
	DecidedAt time.Time `json:"decided_at"`
}

// NewRequestView converts a stored record to its wire form.
func NewRequestView(r model.Request) RequestView {
	return RequestView{
		ID:          r.ID,
		UserID:      r.UserID,
		Name:        r.Name,
		Email:       r.Email,
		Message:     r.Message,
		UploadedURL: r.UploadedURL,
	}
}

// NewPage builds a Page; Requests is never nil so it encodes as [].
func NewPage(records []model.Request, total int) Page {
	views := make([]RequestView, 0, len(records))
	for _, r := range records {
		views = append(views, NewRequestView(r))
	}
	return Page{Requests: views, TotalItems: total}
}

// NewDecisionView converts a decision to its wire form.
func NewDecisionView(d model.Decision) DecisionView {
	return DecisionView{UserID: d.UserID, Verdict: string(d.Verdict), DecidedAt: d.DecidedAt}
}
