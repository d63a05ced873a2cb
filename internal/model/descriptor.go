package model

import (
	"time"
)

// TestDescriptor identifies an assignable test as returned by the upstream
// check-test endpoint. It is immutable for the lifetime of a session.
type TestDescriptor struct {
	TestID         string    `json:"test_id"`
	TestName       string    `json:"test_name"`
	Minutes        int       `json:"minutes"`
	CloseQuestions int       `json:"close_questions"`
	OpenQuestions  int       `json:"open_questions"`
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	IsEnded        bool      `json:"is_ended"`
	AdminID        string    `json:"admin_id"`
}

// TotalQuestions returns the answer set length for this test.
func (d *TestDescriptor) TotalQuestions() int {
	return d.CloseQuestions + d.OpenQuestions
}

// Duration returns the total allotted time.
func (d *TestDescriptor) Duration() time.Duration {
	return time.Duration(d.Minutes) * time.Minute
}
