package session

import (
	"github.com/repetit/testflow-backend/internal/model"
)

// EventKind labels messages pushed over the session stream.
type EventKind string

const (
	// EventTick is one countdown second elapsing.
	EventTick EventKind = "tick"
	// EventThreshold fires at the low-time marks (300s, 60s remaining).
	EventThreshold EventKind = "threshold"
	// EventExpired is the terminal time-up notice preceding auto-submit.
	EventExpired EventKind = "expired"
	// EventAnswer acknowledges an answer-set mutation.
	EventAnswer EventKind = "answer"
	// EventSubmitted announces upstream acceptance.
	EventSubmitted EventKind = "submitted"
	// EventBackedUp announces a failed attempt preserved locally.
	EventBackedUp EventKind = "backed-up"
)

// Event is a session stream message.
type Event struct {
	Kind      EventKind              `json:"event"`
	Remaining int                    `json:"remaining,omitempty"`
	Answered  int                    `json:"answered,omitempty"`
	Status    model.SubmissionStatus `json:"status,omitempty"`
}
