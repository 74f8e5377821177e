package handler

import (
	"net/http"
	"strings"

	"github.com/certlab/certprep-backend/internal/middleware"
	"github.com/certlab/certprep-backend/internal/service"
	ws "github.com/certlab/certprep-backend/internal/websocket"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allowedOrigins slice permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// StreamHandler streams live session events over WebSocket so clients render
// timer ticks and progress without polling.
type StreamHandler struct {
	sessionService *service.SessionService
	hub            *ws.Hub
	log            zerolog.Logger
	upgrader       websocket.Upgrader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(sessionService *service.SessionService, hub *ws.Hub, log zerolog.Logger, allowedOrigins []string) *StreamHandler {
	return &StreamHandler{
		sessionService: sessionService,
		hub:            hub,
		log:            log.With().Str("component", "stream_handler").Logger(),
		upgrader:       buildUpgrader(allowedOrigins),
	}
}

// SessionStream godoc
// WS /ws/v1/sessions/stream?token=...
// Upgrades to WebSocket, sends the current snapshot once, then streams the
// session's events as they happen.
func (h *StreamHandler) SessionStream(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	session, err := h.sessionService.Get(claims.UserID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no active session"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	wsLog := h.log.With().
		Int("user_id", claims.UserID).
		Str("session_id", session.ID().String()).
		Logger()
	wsLog.Info().Msg("Client connected")

	events, cancel := h.hub.Subscribe(claims.UserID)
	defer cancel()

	// Single writer goroutine owns all conn writes; the read loop and the
	// event forwarder only push frames through outbound.
	outbound := make(chan any, 8)
	quit := make(chan struct{})
	done := make(chan struct{})
	defer close(quit)
	go func() {
		defer close(done)
		for {
			select {
			case <-quit:
				return
			case v := <-outbound:
				if err := ws.WriteTyped(conn, v); err != nil {
					return
				}
			}
		}
	}()

	outbound <- ws.SnapshotFrame{Event: ws.EventSnapshot, Payload: session.Snapshot()}

	go func() {
		for {
			select {
			case <-done:
				return
			case <-quit:
				return
			case ev := <-events:
				select {
				case outbound <- ws.SessionFrame{Event: ws.EventSession, Payload: ev}:
				case <-done:
					return
				case <-quit:
					return
				}
			}
		}
	}()

	for {
		var msg ws.RequestEnvelope
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				wsLog.Warn().Err(err).Msg("Unexpected close")
			} else {
				wsLog.Debug().Msg("Connection closed")
			}
			return
		}

		if msg.Action == ws.ActionPing {
			select {
			case outbound <- ws.PongResponse{Event: ws.EventPong}:
			case <-done:
				return
			}
		}
	}
}
