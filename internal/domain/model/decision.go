package model

import (
	"time"
)

// Verdict is the outcome of reviewing a registration request.
type Verdict string

const (
	VerdictApproved Verdict = "approved"
	VerdictRejected Verdict = "rejected"
)

// Valid reports whether v is a known verdict.
func (v Verdict) Valid() bool {
	return v == VerdictApproved || v == VerdictRejected
}

// Decision records a reviewer's verdict for every request of one user.
type Decision struct {
	UserID    string
	Verdict   Verdict
	DecidedAt time.Time
}
