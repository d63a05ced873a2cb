package session

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingIdentity: no requester identifier was supplied with the request.
	ErrMissingIdentity = errors.New("requester identifier is missing")
	// ErrSessionNotFound: no live session and no fresh snapshot for this user.
	ErrSessionNotFound = errors.New("no active session")
	// ErrIdentityRequired: a test-stage operation ran before identity capture.
	ErrIdentityRequired = errors.New("identity not recorded")
	// ErrInvalidServerResponse: the upstream payload was structurally unusable.
	ErrInvalidServerResponse = errors.New("invalid server response")
	// ErrTransportUnavailable: check-test could not reach the upstream.
	ErrTransportUnavailable = errors.New("test service unreachable")
	// ErrSubmissionFailed: the single submit attempt did not get a 2xx.
	// The backup record stays in place; retry is user-initiated.
	ErrSubmissionFailed = errors.New("submission failed")
	// ErrSubmissionInFlight guards the submit affordance against duplicates.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrAlreadySubmitted: the session is resolved.
	ErrAlreadySubmitted = errors.New("test already submitted")
	// ErrNoBackup: a retry was requested but nothing is backed up.
	ErrNoBackup = errors.New("no backup record")
)

// WindowOutcome is one of the three mutually exclusive test-window
// violations detected client-side after a successful check.
type WindowOutcome string

const (
	WindowNotYetStarted WindowOutcome = "not-yet-started"
	WindowExpired       WindowOutcome = "expired"
	WindowAdminEnded    WindowOutcome = "administrator-ended"
)

// WindowError carries the violation and a human-readable detail computed
// from the descriptor's timestamps.
type WindowError struct {
	Outcome WindowOutcome
	Detail  string
}

func (e *WindowError) Error() string {
	return fmt.Sprintf("test window: %s (%s)", e.Outcome, e.Detail)
}

// AccessDeniedError is an explicit upstream refusal (allowed=false).
type AccessDeniedError struct {
	Reason string
}

func (e *AccessDeniedError) Error() string {
	return "access denied: " + e.Reason
}

// ValidationError carries field-scoped identity validation messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	return "identity validation failed"
}
