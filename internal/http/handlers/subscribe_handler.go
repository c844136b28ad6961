// Subscription HTTP handlers.
//
//   - POST /subscribe          (newsletter signup, {msg} contract)
//   - GET  /subscribers/stats  (subscriber count)
package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/negga-dot/LaunchMate/internal/http/middleware"
	"github.com/negga-dot/LaunchMate/internal/repo"
	"github.com/negga-dot/LaunchMate/internal/services"
)

// ScopeSubscribe is the idempotency scope of POST /subscribe.
const ScopeSubscribe = "subscribe"

// MsgReplayed answers a retry whose Idempotency-Key already produced a
// subscription.
const MsgReplayed = "Subscription successful!"

// SubscribeRequest is the signup form posted by the landing page.
type SubscribeRequest struct {
	FirstName string `json:"firstName" example:"Priya"`
	Email     string `json:"email" example:"priya@example.com"`
}

// Subscribe godoc
// @ID          subscribe
// @Summary     Subscribe to LaunchMate updates
// @Description Stores a newsletter subscriber and sends the welcome email. A retry carrying an
// @Description Idempotency-Key that already produced a subscription for the same email is
// @Description answered with 201 and the Idempotency-Replayed header instead of a duplicate
// @Description error. A key reused for another email is processed as a new signup.
// @Tags        Subscriptions
// @Accept      json
// @Produce     json
//
// @Param       Idempotency-Key  header  string  false  "Safe-retry key"  example(signup-7f3a)
// @Param       body             body    handlers.SubscribeRequest  true  "Signup form"
//
// @Success     201  {object}  handlers.MsgResponse
// @Failure     400  {object}  handlers.MsgResponse  "Missing fields or already subscribed"
// @Failure     500  {object}  handlers.MsgResponse  "Server error"
// @Router      /subscribe [post]
func (h *Handlers) Subscribe(c *gin.Context) {
	if _, replay := middleware.ReplayRecord(c); replay && middleware.IdempotencyScope(c) == ScopeSubscribe {
		c.Header(middleware.HeaderIdempotencyReplayed, "true")
		ok(c, http.StatusCreated, MsgResponse{Msg: MsgReplayed})
		return
	}

	var req SubscribeRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil {
		ok(c, http.StatusBadRequest, MsgResponse{Msg: services.MsgMissingFields})
		return
	}

	res, err := h.subSvc.Subscribe(c.Request.Context(), req.FirstName, req.Email)
	switch res.Status {
	case services.StatusCreated:
		h.rememberSignup(c, res)
		ok(c, http.StatusCreated, MsgResponse{Msg: res.Message})
	case services.StatusInvalid, services.StatusConflict:
		ok(c, http.StatusBadRequest, MsgResponse{Msg: res.Message})
	default:
		middleware.LoggerFrom(c).Error().Err(err).Msg("subscribe failed")
		ok(c, http.StatusInternalServerError, MsgResponse{Msg: services.MsgServerError})
	}
}

// rememberSignup stores the Idempotency-Key of a successful signup. Failures
// are logged only; the subscription itself already succeeded.
func (h *Handlers) rememberSignup(c *gin.Context, res services.SubscribeResult) {
	key, present := middleware.GetIdempotencyKey(c)
	if !present || h.idem == nil || res.Subscriber == nil || middleware.IdempotencyScope(c) != ScopeSubscribe {
		return
	}
	fp := services.EmailFingerprint(res.Subscriber.Email)
	err := h.idem.Save(c.Request.Context(), ScopeSubscribe, key, res.Subscriber.ID, fp, http.StatusCreated, h.idemTTL)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		middleware.LoggerFrom(c).Warn().Err(err).Msg("idempotency record not saved")
	}
}

// SubscribeFingerprint is the idempotency fingerprint of a signup request:
// the email fingerprint of its body, or "" when the body has no usable
// email. The body stays cached in the context for the handler's own bind.
func SubscribeFingerprint(c *gin.Context, _ string) string {
	var req SubscribeRequest
	if err := c.ShouldBindBodyWith(&req, binding.JSON); err != nil || strings.TrimSpace(req.Email) == "" {
		return ""
	}
	return services.EmailFingerprint(req.Email)
}

// SubscriberStats godoc
// @ID          subscriberStats
// @Summary     Subscriber count
// @Tags        Subscriptions
// @Produce     json
// @Success     200  {object}  services.SubscriberStats
// @Failure     500  {object}  handlers.ErrorResponse  "Internal error"
// @Router      /subscribers/stats [get]
func (h *Handlers) SubscriberStats(c *gin.Context) {
	stats, err := h.subSvc.Stats(c.Request.Context())
	if err != nil {
		middleware.LoggerFrom(c).Error().Err(err).Msg("subscriber stats failed")
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not load subscriber stats")
		return
	}
	ok(c, http.StatusOK, stats)
}
