// Package httpapi mounts the LaunchMate API on a Gin engine: the signup,
// assistant and calendar handlers plus the middleware chain in front of them.
// Every collaborator arrives through Deps; nil fields get development
// defaults so tests can build a router from a bare database.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	_ "github.com/negga-dot/LaunchMate/docs"
	"github.com/negga-dot/LaunchMate/internal/assistant"
	"github.com/negga-dot/LaunchMate/internal/calendar"
	"github.com/negga-dot/LaunchMate/internal/config"
	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/http/handlers"
	"github.com/negga-dot/LaunchMate/internal/http/middleware"
	"github.com/negga-dot/LaunchMate/internal/mailer"
	"github.com/negga-dot/LaunchMate/internal/repo"
	"github.com/negga-dot/LaunchMate/internal/services"
)

// Per-route budgets layered on top of RATE_RPS/RATE_BURST. Signups send
// email and asking may call the generative API, so both get tighter buckets.
const (
	subscribeRPS   = 0.2
	subscribeBurst = 3
	askRPS         = 1.0
	askBurst       = 5
)

// Deps carries the collaborators built once at startup.
type Deps struct {
	// DB holds tasks and idempotency records, and subscribers unless
	// Subscribers is set.
	DB *gorm.DB
	// Subscribers overrides the SQLite subscriber store (e.g. MongoDB).
	Subscribers services.SubscriberStore
	// Mailer sends welcome emails. Nil logs them instead.
	Mailer mailer.Sender
	// Assistant owns assistant sessions. Nil uses the built-in rules with no
	// external fallback.
	Assistant *services.AssistantService
	// Schedule lists recurring obligations. Nil uses the built-in schedule.
	Schedule *calendar.Schedule
}

// subscriberStoreShim adapts the repository free functions to the
// services.SubscriberStore interface.
type subscriberStoreShim struct{ db *gorm.DB }

func (s subscriberStoreShim) FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error) {
	return repo.GetSubscriberByEmail(ctx, s.db, email)
}

func (s subscriberStoreShim) Create(ctx context.Context, sub *domain.Subscriber) error {
	return repo.CreateSubscriber(ctx, s.db, sub)
}

func (s subscriberStoreShim) Delete(ctx context.Context, id string) error {
	return repo.DeleteSubscriber(ctx, s.db, id)
}

func (s subscriberStoreShim) Count(ctx context.Context) (int64, error) {
	return repo.CountSubscribers(ctx, s.db)
}

// taskRepoShim adapts the repository free functions to the
// services.TaskRepo interface expected by the CalendarService.
type taskRepoShim struct{}

// CreateTask proxies repo.CreateTask.
func (taskRepoShim) CreateTask(ctx context.Context, db *gorm.DB, t *domain.ComplianceTask) error {
	return repo.CreateTask(ctx, db, t)
}

// GetTask proxies repo.GetTask.
func (taskRepoShim) GetTask(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.ComplianceTask, error) {
	return repo.GetTask(ctx, db, id, ownerID)
}

// CountTasks proxies repo.CountTasks (pagination support).
func (taskRepoShim) CountTasks(ctx context.Context, db *gorm.DB, ownerID string) (int64, error) {
	return repo.CountTasks(ctx, db, ownerID)
}

// ListTasksPage proxies repo.ListTasksPage (pagination support).
func (taskRepoShim) ListTasksPage(ctx context.Context, db *gorm.DB, ownerID string, offset, limit int) ([]domain.ComplianceTask, error) {
	return repo.ListTasksPage(ctx, db, ownerID, offset, limit)
}

// ListTasksDueBetween proxies repo.ListTasksDueBetween.
func (taskRepoShim) ListTasksDueBetween(ctx context.Context, db *gorm.DB, ownerID, from, to string) ([]domain.ComplianceTask, error) {
	return repo.ListTasksDueBetween(ctx, db, ownerID, from, to)
}

// ToggleTaskCompleted proxies repo.ToggleTaskCompleted.
func (taskRepoShim) ToggleTaskCompleted(ctx context.Context, db *gorm.DB, id, ownerID string) (*domain.ComplianceTask, error) {
	return repo.ToggleTaskCompleted(ctx, db, id, ownerID)
}

// DeleteTask proxies repo.DeleteTask.
func (taskRepoShim) DeleteTask(ctx context.Context, db *gorm.DB, id, ownerID string) error {
	return repo.DeleteTask(ctx, db, id, ownerID)
}

// TasksStats proxies repo.TasksStats (ETag support).
func (taskRepoShim) TasksStats(ctx context.Context, db *gorm.DB, ownerID string) (int64, *time.Time, error) {
	return repo.TasksStats(ctx, db, ownerID)
}

// idempotencyShim stores and looks up Idempotency-Key records in SQLite.
type idempotencyShim struct{ db *gorm.DB }

// Save implements handlers.IdempotencyStore.
func (s idempotencyShim) Save(ctx context.Context, scope, key, resourceID, fingerprint string, status int, ttl time.Duration) error {
	_, err := repo.CreateIdempotency(ctx, s.db, scope, key, resourceID, fingerprint, status, ttl)
	return err
}

// Lookup implements middleware.IdempotencyLookup. A missing or expired
// record is a miss, not an error.
func (s idempotencyShim) Lookup(ctx context.Context, scope, key string, now time.Time) (*middleware.IdempotencyRecord, error) {
	rec, err := repo.GetIdempotency(ctx, s.db, scope, key, now)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &middleware.IdempotencyRecord{ResourceID: rec.ResourceID, Status: rec.Status, Fingerprint: rec.Fingerprint}, nil
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), idempotency and rate
// limiting, CORS and security headers, health and metrics endpoints, and then
// mounts the public API under cfg.APIBasePath.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing, request-scoped logger
//  4. Recovery: capture panics after logger
//  5. Body size limiter
//  6. Gzip
//  7. Metrics
//  8. Idempotency validator (before rate limiter to allow bypass on replay)
//  9. Rate limiter (per user/IP, bypass on replay)
//  10. CORS and Security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true
	// ClientIP feeds rate limiting; only configured proxies may override it.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		log.Warn().Err(err).Strs("proxies", cfg.TrustedProxies).Msg("invalid TRUSTED_PROXIES, trusting none")
		_ = r.SetTrustedProxies(nil)
	}

	apiBase := cfg.APIBasePath
	route := func(p string) string {
		if apiBase == "" || apiBase == "/" {
			return p
		}
		return apiBase + p
	}
	idem := idempotencyShim{db: deps.DB}

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"X-API-Key"},
	}))

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Global body size limit (64 KiB; the largest payload is a task)
	r.Use(limitBody(64 << 10))

	// 6) Compress JSON responses; Prometheus negotiates its own encoding.
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Idempotency validation (before rate limiting). Only signups are
	// replayable, and only for the email the key was first used with; other
	// routes accept the header but never look it up.
	subscribePath := route("/subscribe")
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
			Scope: func(c *gin.Context) string {
				if c.FullPath() == subscribePath {
					return handlers.ScopeSubscribe
				}
				return ""
			},
			Fingerprint: handlers.SubscribeFingerprint,
		},
		idem.Lookup,
	))

	// 9) Token-bucket rate limiter per user/IP. The costly routes key by
	// client IP only, since X-User-ID is caller-controlled.
	byIP := middleware.KeyByIP()
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP()).
		RouteKeyed(subscribePath, subscribeRPS, subscribeBurst, byIP).
		RouteKeyed(route("/assistant/sessions/:id/messages"), askRPS, askBurst, byIP).
		RouteKeyed(route("/assistant/reply"), askRPS, askBurst, byIP)
	r.Use(rl.Handler())

	// 10) CORS posture (safe defaults: allow all if none configured)
	allowHeaders := []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", "If-None-Match", middleware.HeaderIdempotencyKey}
	exposeHeaders := []string{"X-Request-ID", "Content-Length", "ETag", middleware.HeaderIdempotencyReplayed}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     allowHeaders,
			ExposeHeaders:    exposeHeaders,
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		EnablePolicy: true,
		NoStorePaths: []string{route("/assistant/sessions"), route("/subscribers")},
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: services ← repo/db/mailer/responder
	store := deps.Subscribers
	if store == nil {
		store = subscriberStoreShim{db: deps.DB}
	}
	sender := deps.Mailer
	if sender == nil {
		sender = mailer.NewLogSender(log.Logger)
	}
	subSvc := services.NewSubscriptionService(store, sender)
	subSvc.RequireWelcome = cfg.Mail.Delivery == config.DeliveryRequired
	if cfg.Mail.Timeout > 0 {
		subSvc.MailTimeout = cfg.Mail.Timeout
	}

	asstSvc := deps.Assistant
	if asstSvc == nil {
		asstSvc = services.NewAssistantService(
			assistant.NewResponder(nil, assistant.UnconfiguredFallback{}),
			cfg.Assistant.MaxPromptRunes,
			cfg.Assistant.SessionIdleTTL,
		)
	}

	calSvc := services.NewCalendarService(deps.DB, taskRepoShim{}, deps.Schedule)

	h := handlers.New(subSvc, asstSvc, calSvc).WithIdempotency(idem, cfg.IdempotencyTTL)

	// Public API
	api := groupWithPrefix(r, apiBase)
	{
		// Subscriptions
		api.POST("/subscribe", h.Subscribe)
		api.GET("/subscribers/stats", h.SubscriberStats)

		// Assistant
		api.POST("/assistant/sessions", h.CreateSession)
		api.GET("/assistant/sessions/:id/messages", h.ListSessionMessages)
		api.POST("/assistant/sessions/:id/messages", h.PostSessionMessage)
		api.POST("/assistant/reply", h.AssistantReply)

		// Compliance calendar
		api.GET("/calendar/events", h.ListEvents)
		api.GET("/calendar/upcoming", h.ListUpcoming)
		api.GET("/calendar/tasks", h.ListTasks)
		api.POST("/calendar/tasks", h.CreateTask)
		api.PATCH("/calendar/tasks/:id/toggle", h.ToggleTask)
		api.DELETE("/calendar/tasks/:id", h.DeleteTask)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
