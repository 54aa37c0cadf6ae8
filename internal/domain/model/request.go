// Package model contains domain models passed between layers.
package model

import "time"

// Request is one registration request held by the service.
// Records are append-only: once stored they are never modified.
type Request struct {
	ID          string    // server-assigned identifier
	UserID      string    // submitter uid; generated when the submitter has none
	Name        string    // display name, the field searched by listings
	Email       string    // contact email; duplicates allowed
	Message     string    // free-text description of the applicant
	UploadedURL string    // optional link to an uploaded document or photo
	CreatedAt   time.Time // time the record entered the collection
}
