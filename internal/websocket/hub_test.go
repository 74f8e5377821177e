package websocket

import (
	"testing"

	"github.com/certlab/certprep-backend/internal/quiz"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubPublishReachesOwnSubscribersOnly(t *testing.T) {
	h := NewHub(zerolog.Nop())

	mine, cancelMine := h.Subscribe(1)
	defer cancelMine()
	other, cancelOther := h.Subscribe(2)
	defer cancelOther()

	h.Publish(1, quiz.Event{Type: quiz.EventTick})

	select {
	case ev := <-mine:
		assert.Equal(t, quiz.EventTick, ev.Type)
	default:
		t.Fatal("expected event for subscriber")
	}

	select {
	case <-other:
		t.Fatal("event leaked to another user's subscriber")
	default:
	}
}

func TestHubUnsubscribeStopsDelivery(t *testing.T) {
	h := NewHub(zerolog.Nop())

	ch, cancel := h.Subscribe(1)
	cancel()

	h.Publish(1, quiz.Event{Type: quiz.EventStarted})
	select {
	case <-ch:
		t.Fatal("cancelled subscriber still receiving")
	default:
	}
}

func TestHubDropsWhenSubscriberFull(t *testing.T) {
	h := NewHub(zerolog.Nop())

	ch, cancel := h.Subscribe(1)
	defer cancel()

	// Overfill the buffer; Publish must never block.
	for i := 0; i < subscriberBuffer+10; i++ {
		h.Publish(1, quiz.Event{Type: quiz.EventTick})
	}
	require.Len(t, ch, subscriberBuffer)
}
