// Command server runs the LaunchMate HTTP API.
//
// @title          LaunchMate API
// @version        1.0
// @description    Newsletter signups, the startup compliance assistant and the compliance calendar.
// @BasePath       /api
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/negga-dot/LaunchMate/internal/assistant"
	"github.com/negga-dot/LaunchMate/internal/calendar"
	"github.com/negga-dot/LaunchMate/internal/config"
	httpapi "github.com/negga-dot/LaunchMate/internal/http"
	"github.com/negga-dot/LaunchMate/internal/mailer"
	"github.com/negga-dot/LaunchMate/internal/observability"
	"github.com/negga-dot/LaunchMate/internal/repo"
	"github.com/negga-dot/LaunchMate/internal/services"
	"github.com/negga-dot/LaunchMate/internal/sysutil"
)

// version is set via -ldflags "-X main.version=..." in release builds.
var version = "dev"

// janitorInterval is how often expired idempotency keys and idle assistant
// sessions are swept.
const janitorInterval = 5 * time.Minute

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		sysutil.SetupLogger(os.Stderr, "info", false, "launchmate")
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	sysutil.SetupLogger(os.Stdout, cfg.LogLevel, cfg.LogPretty, cfg.OTEL.ServiceName)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}

func run(ctx context.Context, cfg config.Config) error {
	ver := sysutil.FirstNonEmpty(os.Getenv("APP_VERSION"), version)

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, ver)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(sctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	// SQLite always backs tasks and idempotency keys; subscribers live there
	// too unless MongoDB is selected.
	db, err := repo.OpenSQLite(cfg.Store.DBPath)
	if err != nil {
		return err
	}
	if err := repo.AutoMigrate(db); err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}()

	deps := httpapi.Deps{DB: db}

	if cfg.Store.Driver == config.StoreMongo {
		mc, err := repo.ConnectMongo(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		if err != nil {
			return err
		}
		defer func() {
			cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = mc.Close(cctx)
		}()
		if err := mc.EnsureIndexes(ctx); err != nil {
			return err
		}
		deps.Subscribers = mc.Subscribers()
	}

	if deps.Mailer, err = buildMailer(cfg.Mail); err != nil {
		return err
	}

	responder, err := buildResponder(ctx, cfg.Assistant)
	if err != nil {
		return err
	}
	deps.Assistant = services.NewAssistantService(responder, cfg.Assistant.MaxPromptRunes, cfg.Assistant.SessionIdleTTL)

	if deps.Schedule, err = calendar.LoadSchedule(cfg.Calendar.SchedulePath); err != nil {
		return err
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, deps, cfg)

	go janitor(ctx, db, deps.Assistant)

	srv := &http.Server{
		Addr:              net.JoinHostPort("", cfg.Port),
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("version", ver).
			Str("store", cfg.Store.Driver).
			Str("mail", cfg.Mail.Driver).
			Str("fallback", cfg.Assistant.Fallback).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(sctx)
}

func buildMailer(mc config.MailConfig) (mailer.Sender, error) {
	if mc.Driver == config.MailLog {
		log.Warn().Msg("MAIL_DRIVER=log: welcome emails are logged, not sent")
		return mailer.NewLogSender(log.Logger), nil
	}
	s, err := mailer.NewSMTPSender(mailer.SMTPOptions{
		Host:     mc.Host,
		Port:     mc.Port,
		Username: mc.Username,
		Password: mc.Password,
		FromName: mc.FromName,
		Timeout:  mc.Timeout,
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

// buildResponder creates the rule table and the configured fallback once.
// The external strategy without an API key degrades to a fixed "not
// configured" answer instead of failing startup.
func buildResponder(ctx context.Context, ac config.AssistantConfig) (*assistant.Responder, error) {
	rules, err := assistant.LoadRules(ac.RulesPath)
	if err != nil {
		return nil, err
	}

	var gen assistant.Generator
	if ac.Fallback == config.FallbackExternal {
		if ac.GeminiAPIKey == "" {
			log.Warn().Msg("GEMINI_API_KEY not set: unmatched questions get the not-configured reply")
		} else {
			g, err := assistant.NewGeminiGenerator(ctx, ac.GeminiAPIKey, ac.GeminiModel)
			if err != nil {
				return nil, err
			}
			gen = g
		}
	}

	fb, err := assistant.NewFallback(ac.Fallback, gen)
	if err != nil {
		return nil, err
	}
	log.Info().Int("rules", rules.Len()).Str("fallback", string(fb.Source())).Msg("assistant ready")
	return assistant.NewResponder(rules, fb, assistant.WithTimeout(ac.Timeout)), nil
}

// janitor periodically removes expired idempotency keys and idle sessions
// until ctx is done.
func janitor(ctx context.Context, db *gorm.DB, asst *services.AssistantService) {
	t := time.NewTicker(janitorInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			n, err := repo.PurgeExpiredIdempotency(ctx, db, now.UTC())
			if err != nil {
				log.Warn().Err(err).Msg("purge idempotency keys")
			}
			evicted := asst.EvictIdle()
			if n > 0 || evicted > 0 {
				log.Debug().Int64("idempotency_purged", n).Int("sessions_evicted", evicted).Msg("janitor sweep")
			}
		}
	}
}
