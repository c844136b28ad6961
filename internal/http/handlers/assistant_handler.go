// Assistant HTTP handlers.
//
//   - POST /assistant/sessions                (start a session)
//   - GET  /assistant/sessions/{id}/messages  (transcript)
//   - POST /assistant/sessions/{id}/messages  (ask within a session)
//   - POST /assistant/reply                   (one-off question)
package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/services"
)

// AskRequest carries one user question.
type AskRequest struct {
	Message string `json:"message" example:"What documents are needed for GST registration?"`
}

// TranscriptResponse lists a session's messages in order.
type TranscriptResponse struct {
	SessionID string               `json:"session_id"`
	Messages  []domain.ChatMessage `json:"messages"`
}

// CreateSession godoc
// @ID          createAssistantSession
// @Summary     Start an assistant session
// @Tags        Assistant
// @Produce     json
// @Success     201  {object}  services.Session
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /assistant/sessions [post]
func (h *Handlers) CreateSession(c *gin.Context) {
	sess, err := h.asstSvc.CreateSession(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not start session")
		return
	}
	ok(c, http.StatusCreated, sess)
}

// ListSessionMessages godoc
// @ID          listAssistantMessages
// @Summary     Session transcript
// @Description Returns the session's messages, user and bot alternating, oldest first.
// @Tags        Assistant
// @Produce     json
// @Param       id   path  string  true  "Session ID (UUID)"  format(uuid)
// @Success     200  {object}  handlers.TranscriptResponse
// @Failure     400  {object}  handlers.ErrorResponse  "Bad request"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Router      /assistant/sessions/{id}/messages [get]
func (h *Handlers) ListSessionMessages(c *gin.Context) {
	id, valid := sessionID(c)
	if !valid {
		return
	}
	msgs, err := h.asstSvc.Transcript(c.Request.Context(), id)
	if err != nil {
		assistantFail(c, err)
		return
	}
	ok(c, http.StatusOK, TranscriptResponse{SessionID: id, Messages: msgs})
}

// PostSessionMessage godoc
// @ID          askAssistant
// @Summary     Ask within a session
// @Description Appends the question and the assistant's reply to the transcript. Only one
// @Description question per session is processed at a time.
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Param       id    path  string  true  "Session ID (UUID)"  format(uuid)
// @Param       body  body  handlers.AskRequest  true  "Question"
// @Success     200  {object}  services.Turn
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or too long"
// @Failure     404  {object}  handlers.ErrorResponse  "Session not found"
// @Failure     409  {object}  handlers.ErrorResponse  "Session busy"
// @Router      /assistant/sessions/{id}/messages [post]
func (h *Handlers) PostSessionMessage(c *gin.Context) {
	id, valid := sessionID(c)
	if !valid {
		return
	}
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	turn, err := h.asstSvc.Ask(c.Request.Context(), id, req.Message)
	if err != nil {
		assistantFail(c, err)
		return
	}
	ok(c, http.StatusOK, turn)
}

// AssistantReply godoc
// @ID          assistantReply
// @Summary     One-off assistant reply
// @Tags        Assistant
// @Accept      json
// @Produce     json
// @Param       body  body  handlers.AskRequest  true  "Question"
// @Success     200  {object}  assistant.Reply
// @Failure     400  {object}  handlers.ErrorResponse  "Empty or too long"
// @Router      /assistant/reply [post]
func (h *Handlers) AssistantReply(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	reply, err := h.asstSvc.Reply(c.Request.Context(), req.Message)
	if err != nil {
		assistantFail(c, err)
		return
	}
	ok(c, http.StatusOK, reply)
}

func sessionID(c *gin.Context) (string, bool) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "session id must be a UUID")
		return "", false
	}
	return id, true
}

func assistantFail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrEmptyPrompt):
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "message required")
	case errors.Is(err, services.ErrTooLong):
		fail(c, http.StatusBadRequest, ErrCodePromptTooLong, "message too long")
	case errors.Is(err, services.ErrSessionNotFound):
		fail(c, http.StatusNotFound, ErrCodeNotFound, "session not found")
	case errors.Is(err, services.ErrSessionBusy):
		fail(c, http.StatusConflict, ErrCodeSessionBusy, "a reply is already being generated for this session")
	default:
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "assistant unavailable")
	}
}
