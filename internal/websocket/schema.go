package websocket

import "github.com/certlab/certprep-backend/internal/quiz"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope is used to peek at the action before full parsing.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSession  Event = "session"
	EventSnapshot Event = "snapshot"
	EventError    Event = "error"
	EventPong     Event = "pong"
)

// SessionFrame wraps one quiz engine event for the wire.
type SessionFrame struct {
	Event   Event      `json:"event"`
	Payload quiz.Event `json:"payload"`
}

// SnapshotFrame carries the full session snapshot, sent once on connect so
// the client renders current state before incremental events arrive.
type SnapshotFrame struct {
	Event   Event         `json:"event"`
	Payload quiz.Snapshot `json:"payload"`
}

type PongResponse struct {
	Event Event `json:"event"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}
