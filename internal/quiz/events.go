package quiz

// EventType identifies a session state-change notification.
type EventType string

const (
	EventStarted    EventType = "started"
	EventAnswered   EventType = "answered"
	EventCursor     EventType = "cursor"
	EventFlagged    EventType = "flagged"
	EventTick       EventType = "tick"
	EventCompleted  EventType = "completed"
	EventReviewing  EventType = "reviewing"
	EventRestarted  EventType = "restarted"
	EventSyncStatus EventType = "sync_status"
)

// Event is pushed to the session's Notifier on every state change. UI layers
// subscribe to these instead of polling; the engine never depends on a
// subscriber being present.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data,omitempty"`
}

// Notifier receives session events. It is called while the session lock is
// NOT held and must not call back into mutating session methods.
type Notifier func(Event)
