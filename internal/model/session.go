package model

import (
	"time"
)

// SubmissionStatus enumerates the submission lifecycle of a session.
type SubmissionStatus string

const (
	StatusNotSubmitted SubmissionStatus = "not-submitted"
	StatusSubmitting   SubmissionStatus = "submitting"
	StatusSubmitted    SubmissionStatus = "submitted"
	StatusBackedUp     SubmissionStatus = "failed-locally-backed-up"
)

// SessionSnapshot is the durable record of an in-progress session. It is
// rewritten on every answer update so a reload or crash loses nothing, and
// cleared once the upstream confirms the submission.
type SessionSnapshot struct {
	UserID     string           `json:"user_id"`
	Descriptor TestDescriptor   `json:"descriptor"`
	Identity   *Identity        `json:"identity,omitempty"`
	Answers    []string         `json:"answers"`
	StartedAt  time.Time        `json:"started_at"`
	Status     SubmissionStatus `json:"status"`
	SavedAt    time.Time        `json:"saved_at"`
}

// BackupRecord is written synchronously before every submission attempt and
// removed only when the upstream confirms acceptance. Its presence after a
// session is otherwise resolved signals an unresolved submission.
type BackupRecord struct {
	TestID    string    `json:"test_id"`
	UserID    string    `json:"user_id"`
	Identity  Identity  `json:"identity"`
	Answers   []string  `json:"answers"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Timestamp time.Time `json:"timestamp"`
}

// Submission is the upstream submit-test request body.
type Submission struct {
	TestID      string   `json:"test_id"`
	Username    string   `json:"username"`
	Lastname    string   `json:"lastname"`
	City        string   `json:"city"`
	UserID      string   `json:"user_id"`
	StartedAt   string   `json:"started_at"`
	CompletedAt string   `json:"completed_at"`
	Answers     []string `json:"answers"`
}

// CheckCodeRequest is the code-entry stage payload.
type CheckCodeRequest struct {
	TestCode string `json:"test_code" binding:"required,min=1,max=64"`
}

// UpdateAnswerRequest is the single-slot answer mutation payload.
// Value may be empty: that clears the slot back to unanswered.
type UpdateAnswerRequest struct {
	Value string `json:"value"`
}
