package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionAutosave Action = "autosave"
	ActionPing     Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// AutosaveRequest is sent by the client to save a single answer.
type AutosaveRequest struct {
	Action Action `json:"action"`
	Index  int    `json:"index"`
	Answer string `json:"ans"`
}

// PingRequest keeps the connection alive across proxies.
type PingRequest struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError   Event = "error"
	EventSuccess Event = "success"
	EventSession Event = "session"
	EventPong    Event = "pong"
)

type AutosaveResponse struct {
	Event  Event  `json:"event"`
	Status string `json:"status"`
}

// SessionResponse carries a session stream notification: timer ticks,
// threshold crossings, expiry and submission status changes.
type SessionResponse struct {
	Event     Event  `json:"event"`
	Kind      string `json:"kind"`
	Remaining int    `json:"remaining,omitempty"`
	Answered  int    `json:"answered,omitempty"`
	Status    string `json:"status,omitempty"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
