package handler

import (
	"errors"
	"net/http"

	"github.com/certlab/certprep-backend/internal/middleware"
	"github.com/certlab/certprep-backend/internal/model"
	"github.com/certlab/certprep-backend/internal/quiz"
	"github.com/certlab/certprep-backend/internal/response"
	"github.com/certlab/certprep-backend/internal/service"
	"github.com/certlab/certprep-backend/internal/validator"
	"github.com/gin-gonic/gin"
)

// SessionHandler handles the live quiz session endpoints. Every route
// operates on the caller's single current session; question indexes come
// from the request body and are validated by the engine itself.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// Create godoc
// POST /api/v1/sessions
// Creates a new session on a test, superseding any prior one.
func (h *SessionHandler) Create(c *gin.Context) {
	claims := middleware.GetClaims(c)
	var req model.CreateSessionRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session, err := h.sessionService.Create(c.Request.Context(), claims.UserID, &req)
	if err != nil {
		switch {
		case errors.Is(err, quiz.ErrUnknownMode):
			response.Fail(c, http.StatusBadRequest, response.ErrUnknownMode)
		case errors.Is(err, quiz.ErrNoQuestions):
			response.Fail(c, http.StatusUnprocessableEntity, response.ErrNoQuestions)
		case errors.Is(err, service.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{"session": session.Snapshot()})
}

// Current godoc
// GET /api/v1/sessions/current
// Returns the full snapshot of the caller's live session. When none exists
// the resumability marker (if any) is returned alongside the error so the
// client can offer to resume.
func (h *SessionHandler) Current(c *gin.Context) {
	claims := middleware.GetClaims(c)
	session, err := h.sessionService.Get(claims.UserID)
	if err != nil {
		marker, _ := h.sessionService.ActiveMarker(c.Request.Context(), claims.UserID)
		if marker != nil {
			response.Success(c, http.StatusOK, gin.H{"session": nil, "resumable": marker})
			return
		}
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Start godoc
// POST /api/v1/sessions/current/start
// Transitions the session to IN_PROGRESS and starts the countdown for mock.
func (h *SessionHandler) Start(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	if !session.Start() {
		response.Fail(c, http.StatusConflict, response.ErrConflict)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Answer godoc
// POST /api/v1/sessions/current/answer
// Selects a choice. Single-answer questions finalize immediately;
// multi-answer questions toggle and wait for submit.
func (h *SessionHandler) Answer(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	fb := session.SelectAnswer(req.Index, req.Label)
	response.Success(c, http.StatusOK, gin.H{"feedback": fb})
}

// Submit godoc
// POST /api/v1/sessions/current/submit
// Finalizes the pending multi-answer selection on one question.
func (h *SessionHandler) Submit(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	var req model.SubmitRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	fb := session.SubmitAnswer(req.Index)
	response.Success(c, http.StatusOK, gin.H{"feedback": fb})
}

// Cursor godoc
// PUT /api/v1/sessions/current/cursor
// Moves the cursor to an absolute index, clamped into range.
func (h *SessionHandler) Cursor(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	var req model.CursorRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session.Jump(req.Index)
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Next godoc
// POST /api/v1/sessions/current/next
func (h *SessionHandler) Next(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	session.Advance()
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Previous godoc
// POST /api/v1/sessions/current/previous
func (h *SessionHandler) Previous(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	session.Previous()
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Flag godoc
// POST /api/v1/sessions/current/flag
// Toggles the review flag on one question (mock mode only).
func (h *SessionHandler) Flag(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	var req model.FlagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	session.ToggleFlag(req.Index)
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Complete godoc
// POST /api/v1/sessions/current/complete
// Explicitly ends the session. For mock this dispatches the result record.
func (h *SessionHandler) Complete(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	if !session.Complete() {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotStarted)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Review godoc
// POST /api/v1/sessions/current/review
// Enters per-question review of a completed session.
func (h *SessionHandler) Review(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	if !session.Review() {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotCompleted)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Summary godoc
// POST /api/v1/sessions/current/summary
// Returns from review back to the completion summary.
func (h *SessionHandler) Summary(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	if !session.BackToSummary() {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotCompleted)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// Restart godoc
// POST /api/v1/sessions/current/restart
// Discards the finished attempt and redraws a fresh one on the same test.
func (h *SessionHandler) Restart(c *gin.Context) {
	session, ok := h.current(c)
	if !ok {
		return
	}
	if !session.Restart() {
		response.Fail(c, http.StatusConflict, response.ErrSessionNotCompleted)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"session": session.Snapshot()})
}

// End godoc
// DELETE /api/v1/sessions/current
// Tears the session down and clears the resumability marker.
func (h *SessionHandler) End(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if err := h.sessionService.End(c.Request.Context(), claims.UserID); err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return
	}
	response.Success(c, http.StatusOK, gin.H{})
}

// current loads the caller's live session or writes the error response.
func (h *SessionHandler) current(c *gin.Context) (*quiz.Session, bool) {
	claims := middleware.GetClaims(c)
	session, err := h.sessionService.Get(claims.UserID)
	if err != nil {
		response.Fail(c, http.StatusNotFound, response.ErrNoActiveSession)
		return nil, false
	}
	return session, true
}
