package websocket

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing Action = "ping"
)

// RequestEnvelope carries the action of an inbound client frame. The monitor
// accepts only keepalive pings; anything else is answered with an error event.
type RequestEnvelope struct {
	Action Action `json:"action"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventSubmission Event = "submission"
	EventError      Event = "error"
	EventPong       Event = "pong"
)

// SubmissionEvent is pushed to the monitoring teacher whenever a student
// submits. Payload carries the JSON event published by the quiz service.
type SubmissionEvent struct {
	Event   Event  `json:"event"`
	Payload string `json:"payload"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
