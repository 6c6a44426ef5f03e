package types

import "time"

// Outcome is the terminal state of an upload session.
type Outcome string

const (
	OutcomePending   Outcome = "pending"
	OutcomeSucceeded Outcome = "succeeded"
	OutcomeFailed    Outcome = "failed"
)

// SessionState is a snapshot of one upload session for the upload view.
type SessionState struct {
	ID              string    `json:"id"`
	Uploading       bool      `json:"uploading"`
	RawProgress     int       `json:"rawProgress"`
	DisplayProgress float64   `json:"displayProgress"`
	Outcome         Outcome   `json:"outcome"`
	Error           string    `json:"error,omitempty"`
	Message         string    `json:"message,omitempty"`
	Summary         []string  `json:"summary,omitempty"`
	Redirect        string    `json:"redirect,omitempty"`
	Files           int       `json:"files"`
	StartedAt       time.Time `json:"startedAt"`
}
