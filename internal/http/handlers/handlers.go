// Package handlers exposes the LaunchMate HTTP endpoints.
//
// Handlers are transport-thin: they bind and validate input, call the
// application services through the interfaces below and translate results
// into HTTP responses. Routes are mounted by the httpapi package.
package handlers

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/negga-dot/LaunchMate/internal/assistant"
	"github.com/negga-dot/LaunchMate/internal/calendar"
	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/services"
	"github.com/negga-dot/LaunchMate/internal/utils"
)

//
// Service contracts (context-aware)
//

// SubscriptionService handles newsletter signups.
type SubscriptionService interface {
	Subscribe(ctx context.Context, firstName, email string) (services.SubscribeResult, error)
	Stats(ctx context.Context) (services.SubscriberStats, error)
}

// AssistantService runs assistant sessions and one-off replies.
type AssistantService interface {
	CreateSession(ctx context.Context) (services.Session, error)
	Ask(ctx context.Context, sessionID, question string) (*services.Turn, error)
	Transcript(ctx context.Context, sessionID string) ([]domain.ChatMessage, error)
	Reply(ctx context.Context, question string) (assistant.Reply, error)
}

// CalendarService manages compliance tasks and calendar views.
type CalendarService interface {
	AddTask(ctx context.Context, ownerID string, in services.NewTask) (*domain.ComplianceTask, error)
	ListTasks(ctx context.Context, ownerID string, page, pageSize int) ([]domain.ComplianceTask, int64, error)
	// TasksVersion returns the task count and latest update time, used for ETags.
	TasksVersion(ctx context.Context, ownerID string) (int64, *time.Time, error)
	ToggleTask(ctx context.Context, ownerID, id string) (*domain.ComplianceTask, error)
	DeleteTask(ctx context.Context, ownerID, id string) error
	Events(ctx context.Context, ownerID, from, to string) ([]calendar.Event, error)
	Upcoming(ctx context.Context, ownerID string, n int) ([]services.UpcomingEvent, error)
}

// IdempotencyStore records completed operations so that retries carrying the
// same Idempotency-Key and payload fingerprint can be replayed.
type IdempotencyStore interface {
	Save(ctx context.Context, scope, key, resourceID, fingerprint string, status int, ttl time.Duration) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for subscriptions, the assistant and
// the compliance calendar.
type Handlers struct {
	subSvc  SubscriptionService
	asstSvc AssistantService
	calSvc  CalendarService

	idem    IdempotencyStore
	idemTTL time.Duration
}

// New constructs a Handlers bound to the given services. It also installs the
// custom binding tags the request DTOs rely on.
func New(subSvc SubscriptionService, asstSvc AssistantService, calSvc CalendarService) *Handlers {
	RegisterValidators()
	return &Handlers{subSvc: subSvc, asstSvc: asstSvc, calSvc: calSvc}
}

// WithIdempotency enables recording of successful signups under their
// Idempotency-Key for ttl.
func (h *Handlers) WithIdempotency(store IdempotencyStore, ttl time.Duration) *Handlers {
	h.idem = store
	h.idemTTL = ttl
	return h
}

// userID extracts the caller identity from the Gin context (set by upstream
// middleware), then the X-User-ID header, and finally falls back to
// "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

func newPagination(page, pageSize int, total int64) Pagination {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	return Pagination{
		Page:       page,
		PageSize:   pageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
	}
}

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.IntParam(c.Query("page"), defaultPage, 1, math.MaxInt32)
	pageSize = utils.IntParam(c.Query("page_size"), defaultPageSize, 1, maxPageSize)
	return
}

var registerOnce sync.Once

// RegisterValidators installs the custom binding tags used by request DTOs:
//
//	isodate  a calendar day in YYYY-MM-DD form
//
// It is safe to call more than once.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := calendar.ParseDate(fl.Field().String())
			return err == nil
		})
	})
}
