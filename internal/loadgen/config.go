// Package loadgen drives a running tourdesk server with generated
// submissions and checks that the listing reflects every one of them.
package loadgen

import "time"

// Config holds configuration for a load run.
type Config struct {
	BaseURL     string        // Base URL of the service
	NumRequests int           // Number of submissions to generate
	Workers     int           // Number of concurrent submitters
	PageSize    int           // pageSize used while verifying the listing
	Decide      bool          // Approve every generated user after submitting
	Timeout     time.Duration // HTTP request timeout
	OutputFile  string        // Optional JSON dump of the generated submissions
}

// Submission is the POST /submit-user-data body.
type Submission struct {
	UID              string           `json:"uid"`
	Username         string           `json:"username"`
	Email            string           `json:"email"`
	AuthState        map[string]any   `json:"authState,omitempty"`
	RegistrationData RegistrationData `json:"registrationData"`
}

// RegistrationData is the nested part of a Submission.
type RegistrationData struct {
	Description string `json:"description"`
	UploadedURL string `json:"uploadedUrl,omitempty"`
}

// Stats holds run statistics.
type Stats struct {
	Generated       int
	Submitted       int
	Successful      int
	Failed          int
	DecisionsQueued int
	DecisionsFailed int
	ListedTotal     int
	PagesRead       int
	StartTime       time.Time
	EndTime         time.Time
	Duration        time.Duration
}
