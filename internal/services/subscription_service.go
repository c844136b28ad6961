// Package services – SubscriptionService
//
// This file implements newsletter signup: input validation, email
// normalization, duplicate detection, persistence and the welcome email.
// Uniqueness is ultimately enforced by the store (unique index on email), so
// two concurrent signups for one address yield one "created" and one
// "conflict".
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/mailer"
	"github.com/negga-dot/LaunchMate/internal/repo"
)

// SubscriberStore persists subscribers. Create must return repo.ErrDuplicate
// on a unique email violation; lookups return repo.ErrNotFound.
type SubscriberStore interface {
	FindByEmail(ctx context.Context, email string) (*domain.Subscriber, error)
	Create(ctx context.Context, s *domain.Subscriber) error
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
}

// SubscribeStatus is the outcome class of a subscribe attempt.
type SubscribeStatus string

const (
	StatusCreated  SubscribeStatus = "created"
	StatusInvalid  SubscribeStatus = "invalid"
	StatusConflict SubscribeStatus = "conflict"
	StatusError    SubscribeStatus = "error"
)

// User-visible subscribe messages.
const (
	MsgMissingFields   = "Please provide a first name and email."
	MsgAlreadyExists   = "This email is already subscribed."
	MsgWelcomeSent     = "Subscription successful! A welcome email has been sent."
	MsgWelcomeDeferred = "Subscription successful! We could not send the welcome email right now."
	MsgServerError     = "Server error"
)

// SubscribeResult describes the outcome of Subscribe. Subscriber is set only
// for StatusCreated.
type SubscribeResult struct {
	Status     SubscribeStatus
	Message    string
	Subscriber *domain.Subscriber
}

// SubscriberStats summarizes the subscriber list.
type SubscriberStats struct {
	Total      int64  `json:"total"`
	TotalHuman string `json:"total_human" example:"1,204"`
}

// SubscriptionService handles newsletter signups.
type SubscriptionService struct {
	Store  SubscriberStore
	Mailer mailer.Sender

	// RequireWelcome rolls back the signup when the welcome email fails.
	// When false, delivery is best effort and the subscriber is kept.
	RequireWelcome bool
	// MailTimeout bounds the welcome email send (0 = no extra bound).
	MailTimeout time.Duration
}

// NewSubscriptionService constructs a SubscriptionService with best-effort
// welcome delivery.
func NewSubscriptionService(store SubscriberStore, sender mailer.Sender) *SubscriptionService {
	return &SubscriptionService{Store: store, Mailer: sender, MailTimeout: 15 * time.Second}
}

// Subscribe validates input, stores a new subscriber and sends the welcome
// email. A non-nil error accompanies StatusError only; it carries detail for
// logs and must not be shown to the caller.
func (s *SubscriptionService) Subscribe(ctx context.Context, firstName, email string) (res SubscribeResult, err error) {
	ctx, span := otel.Tracer("services/SubscriptionService").Start(ctx, "Subscribe")
	defer func() {
		span.SetAttributes(attribute.String("subscribe.status", string(res.Status)))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "subscribe failed")
		}
		subscriptionsTotal.WithLabelValues(string(res.Status)).Inc()
		span.End()
	}()

	firstName = strings.TrimSpace(firstName)
	email = NormalizeEmail(email)
	if firstName == "" || email == "" {
		return SubscribeResult{Status: StatusInvalid, Message: MsgMissingFields}, nil
	}

	existing, err := s.Store.FindByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return SubscribeResult{Status: StatusConflict, Message: MsgAlreadyExists}, nil
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		return serverError(), err
	}

	sub := &domain.Subscriber{FirstName: firstName, Email: email}
	if err := s.Store.Create(ctx, sub); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return SubscribeResult{Status: StatusConflict, Message: MsgAlreadyExists}, nil
		}
		return serverError(), err
	}
	span.SetAttributes(attribute.String("subscriber.id", sub.ID))

	if sendErr := s.sendWelcome(ctx, sub); sendErr != nil {
		if !s.RequireWelcome {
			log.Warn().Err(sendErr).Str("subscriber_id", sub.ID).Msg("welcome email not delivered; subscription kept")
			return SubscribeResult{Status: StatusCreated, Message: MsgWelcomeDeferred, Subscriber: sub}, nil
		}
		if delErr := s.Store.Delete(context.WithoutCancel(ctx), sub.ID); delErr != nil {
			log.Error().Err(delErr).Str("subscriber_id", sub.ID).Msg("rollback after failed welcome email")
			return serverError(), errors.Join(sendErr, delErr)
		}
		return serverError(), sendErr
	}

	return SubscribeResult{Status: StatusCreated, Message: MsgWelcomeSent, Subscriber: sub}, nil
}

// sendWelcome renders and sends the welcome email. The send is detached from
// request cancellation so a client disconnect cannot abort it halfway.
func (s *SubscriptionService) sendWelcome(ctx context.Context, sub *domain.Subscriber) (err error) {
	defer func() {
		result := "sent"
		if err != nil {
			result = "failed"
		}
		welcomeEmailsTotal.WithLabelValues(result).Inc()
	}()
	if s.Mailer == nil {
		return errors.New("no mail sender configured")
	}
	msg, err := mailer.WelcomeMessage(sub.FirstName, sub.Email)
	if err != nil {
		return err
	}

	ctx = context.WithoutCancel(ctx)
	if s.MailTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.MailTimeout)
		defer cancel()
	}
	return s.Mailer.Send(ctx, msg)
}

// Lookup returns the subscriber stored under email (after normalization).
func (s *SubscriptionService) Lookup(ctx context.Context, email string) (*domain.Subscriber, error) {
	return s.Store.FindByEmail(ctx, NormalizeEmail(email))
}

// Stats returns the number of subscribers.
func (s *SubscriptionService) Stats(ctx context.Context) (SubscriberStats, error) {
	ctx, span := otel.Tracer("services/SubscriptionService").Start(ctx, "Stats",
		trace.WithSpanKind(trace.SpanKindInternal))
	defer span.End()

	n, err := s.Store.Count(ctx)
	if err != nil {
		return SubscriberStats{}, err
	}
	return SubscriberStats{Total: n, TotalHuman: humanize.Comma(n)}, nil
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// EmailFingerprint is a hex SHA-256 of the normalized address. It ties an
// Idempotency-Key to the signup it was issued for without storing the
// address a second time.
func EmailFingerprint(email string) string {
	sum := sha256.Sum256([]byte(NormalizeEmail(email)))
	return hex.EncodeToString(sum[:])
}

func serverError() SubscribeResult {
	return SubscribeResult{Status: StatusError, Message: MsgServerError}
}
