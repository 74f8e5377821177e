package websocket

import (
	"sync"

	"github.com/certlab/certprep-backend/internal/quiz"
	"github.com/rs/zerolog"
)

// subscriberBuffer bounds how far a slow reader may lag before events are
// dropped for it. A reconnecting client recovers via the snapshot frame.
const subscriberBuffer = 64

// Hub fans quiz session events out to the owning user's live WebSocket
// connections. Publish never blocks the session's mutation path.
type Hub struct {
	mu   sync.Mutex
	subs map[int]map[chan quiz.Event]struct{}
	log  zerolog.Logger
}

// NewHub creates an empty hub.
func NewHub(log zerolog.Logger) *Hub {
	return &Hub{
		subs: make(map[int]map[chan quiz.Event]struct{}),
		log:  log.With().Str("component", "ws_hub").Logger(),
	}
}

// Subscribe registers a new listener for the user's session events. The
// returned cancel func must be called when the connection closes.
func (h *Hub) Subscribe(userID int) (<-chan quiz.Event, func()) {
	ch := make(chan quiz.Event, subscriberBuffer)

	h.mu.Lock()
	set := h.subs[userID]
	if set == nil {
		set = make(map[chan quiz.Event]struct{})
		h.subs[userID] = set
	}
	set[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if set, ok := h.subs[userID]; ok {
			delete(set, ch)
			if len(set) == 0 {
				delete(h.subs, userID)
			}
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers an event to all of the user's subscribers. A full
// subscriber drops the event rather than stalling the session.
func (h *Hub) Publish(userID int, ev quiz.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[userID] {
		select {
		case ch <- ev:
		default:
			h.log.Debug().Int("user_id", userID).Str("type", string(ev.Type)).Msg("Subscriber lagging, event dropped")
		}
	}
}
