package handler

import (
	"errors"
	"net/http"

	"github.com/edustack/assess-backend/internal/middleware"
	"github.com/edustack/assess-backend/internal/response"
	"github.com/edustack/assess-backend/internal/service"
	"github.com/edustack/assess-backend/internal/session"
	"github.com/edustack/assess-backend/internal/store"
	"github.com/edustack/assess-backend/internal/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// SessionHandler drives the test-taking flow: device gating, start,
// navigation, answers, submit/cancel, proctor flags.
type SessionHandler struct {
	sessionService *service.SessionService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{sessionService: sessionService}
}

// CreateSession godoc
// POST /api/v1/student/tests/:test_id/sessions
func (h *SessionHandler) CreateSession(c *gin.Context) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return
	}

	testID, err := uuid.Parse(c.Param("test_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	sess, err := h.sessionService.CreateSession(c.Request.Context(), testID, claims.UserID, claims.BatchID)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrTestNotFound):
			response.Fail(c, http.StatusNotFound, response.ErrNotFound)
		case errors.Is(err, service.ErrTestNotJoinable):
			response.Fail(c, http.StatusConflict, response.ErrTestNotAvailable)
		case errors.Is(err, service.ErrWrongBatch):
			response.Fail(c, http.StatusForbidden, response.ErrWrongBatch)
		default:
			response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		}
		return
	}

	response.Success(c, http.StatusCreated, gin.H{
		"session_id": sess.ID(),
		"state":      sess.State(),
		"gate_state": sess.GateState(),
	})
}

// ReportDevice godoc
// POST /api/v1/student/sessions/:session_id/device
// The client reports the outcome of its capture attempt; a denial leaves the
// session blocked but retryable.
func (h *SessionHandler) ReportDevice(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req service.DeviceReport
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	state, err := h.sessionService.ReportDevice(c.Request.Context(), sessionID, claims.UserID, req)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"gate_state": state})
}

// StartSession godoc
// POST /api/v1/student/sessions/:session_id/start
func (h *SessionHandler) StartSession(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	sess, err := h.sessionService.Start(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"state":    sess.State(),
		"deadline": sess.Deadline(),
	})
}

// GetSession godoc
// GET /api/v1/student/sessions/:session_id
func (h *SessionHandler) GetSession(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	view, err := h.sessionService.View(sessionID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"session": view})
}

// saveAnswerRequest is the answer upsert payload.
type saveAnswerRequest struct {
	QuestionID string `json:"question_id" binding:"required,uuid"`
	Value      string `json:"value"`
}

// SaveAnswer godoc
// POST /api/v1/student/sessions/:session_id/answers
func (h *SessionHandler) SaveAnswer(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req saveAnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	questionID, err := uuid.Parse(req.QuestionID)
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	if err := h.sessionService.SaveAnswer(c.Request.Context(), sessionID, claims.UserID, questionID, req.Value); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"saved": true})
}

// navigateRequest is the navigation payload. Index is only read for jumps.
type navigateRequest struct {
	Op    string `json:"op" binding:"required,oneof=next previous jump"`
	Index int    `json:"index" binding:"min=0"`
}

// Navigate godoc
// POST /api/v1/student/sessions/:session_id/navigate
// Boundary moves clamp; an out-of-range jump leaves the index unchanged.
// Navigation never returns a navigation error.
func (h *SessionHandler) Navigate(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req navigateRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	sess, err := h.sessionService.Get(sessionID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	switch req.Op {
	case "next":
		err = sess.Next()
	case "previous":
		err = sess.Previous()
	case "jump":
		err = sess.JumpTo(req.Index)
	}
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"current_index": sess.Index()})
}

// SubmitSession godoc
// POST /api/v1/student/sessions/:session_id/submit
// Always permitted from the active phase, answered or not. Returns the score
// pair synchronously.
func (h *SessionHandler) SubmitSession(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	result, err := h.sessionService.Submit(c.Request.Context(), sessionID, claims.UserID)
	if err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"score": result.Score,
		"total": result.Total,
	})
}

// CancelSession godoc
// POST /api/v1/student/sessions/:session_id/cancel
// Discards the session without scoring or persisting.
func (h *SessionHandler) CancelSession(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	if err := h.sessionService.Cancel(c.Request.Context(), sessionID, claims.UserID); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"cancelled": true})
}

// flagRequest is a client-reported proctor flag.
type flagRequest struct {
	Kind   string `json:"kind" binding:"required,min=1,max=64"`
	Detail string `json:"detail" binding:"max=2000"`
}

// ReportFlag godoc
// POST /api/v1/student/sessions/:session_id/flags
func (h *SessionHandler) ReportFlag(c *gin.Context) {
	claims, sessionID, ok := h.sessionParams(c)
	if !ok {
		return
	}

	var req flagRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	if err := h.sessionService.Flag(c.Request.Context(), sessionID, claims.UserID, req.Kind, req.Detail); err != nil {
		h.failSessionError(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"flagged": true})
}

func (h *SessionHandler) sessionParams(c *gin.Context) (*service.Claims, uuid.UUID, bool) {
	claims := middleware.GetClaims(c)
	if claims == nil {
		response.Fail(c, http.StatusUnauthorized, response.ErrTokenRequired)
		return nil, uuid.Nil, false
	}

	sessionID, err := uuid.Parse(c.Param("session_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return nil, uuid.Nil, false
	}

	return claims, sessionID, true
}

func (h *SessionHandler) failSessionError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrSessionNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrSessionNotFound)
	case errors.Is(err, service.ErrNotSessionOwner):
		response.Fail(c, http.StatusForbidden, response.ErrNotSessionOwner)
	case errors.Is(err, session.ErrRequestPending):
		response.Fail(c, http.StatusConflict, response.ErrDevicePending)
	case errors.Is(err, session.ErrGateNotGranted):
		response.Fail(c, http.StatusConflict, response.ErrDeviceNotGranted)
	case errors.Is(err, session.ErrNotReady):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotReady)
	case errors.Is(err, session.ErrNotActive):
		response.Fail(c, http.StatusConflict, response.ErrSessionNotActive)
	case errors.Is(err, session.ErrTerminal):
		response.Fail(c, http.StatusConflict, response.ErrSessionEnded)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
