// Package services – AssistantService
//
// This file implements assistant sessions: process-local transcripts to which
// every turn appends exactly two entries (user, then bot). A session runs at
// most one turn at a time; a concurrent Ask is rejected with ErrSessionBusy
// rather than queued. Sessions idle longer than IdleTTL are evicted.
package services

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/negga-dot/LaunchMate/internal/assistant"
	"github.com/negga-dot/LaunchMate/internal/domain"
)

// Responder produces the bot side of a turn. It must not fail.
type Responder interface {
	Respond(ctx context.Context, question string) assistant.Reply
}

// Session identifies an assistant conversation.
type Session struct {
	ID        string    `json:"id" example:"0190f5a4-8a9c-7cc1-b4a0-1f7e6d3f4a11"`
	CreatedAt time.Time `json:"created_at"`
}

// Turn is the pair of transcript entries appended by one Ask.
type Turn struct {
	User   domain.ChatMessage `json:"user"`
	Bot    domain.ChatMessage `json:"bot"`
	Source assistant.Source   `json:"source" example:"rule"`
	Rule   string             `json:"rule,omitempty" example:"gst-registration"`
}

type session struct {
	mu       sync.Mutex
	busy     bool
	lastSeen time.Time
	created  time.Time
	messages []domain.ChatMessage
}

// AssistantService owns assistant sessions. Safe for concurrent use.
type AssistantService struct {
	Responder Responder

	// MaxPromptRunes caps a question by rune count (0 = unlimited).
	MaxPromptRunes int
	// IdleTTL evicts sessions untouched for this long (0 = never).
	IdleTTL time.Duration

	now func() time.Time

	mu       sync.Mutex
	sessions map[string]*session
}

// NewAssistantService constructs an AssistantService.
func NewAssistantService(r Responder, maxPromptRunes int, idleTTL time.Duration) *AssistantService {
	return &AssistantService{
		Responder:      r,
		MaxPromptRunes: maxPromptRunes,
		IdleTTL:        idleTTL,
		now:            time.Now,
		sessions:       make(map[string]*session),
	}
}

// CreateSession starts an empty transcript.
func (s *AssistantService) CreateSession(ctx context.Context) (Session, error) {
	now := s.clock()
	id := uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sessions == nil {
		s.sessions = make(map[string]*session)
	}
	s.evictLocked(now)
	s.sessions[id] = &session{created: now, lastSeen: now}
	return Session{ID: id, CreatedAt: now.UTC()}, nil
}

// Ask runs one turn in sessionID: it validates the question, obtains a reply
// and appends the user and bot entries to the transcript.
func (s *AssistantService) Ask(ctx context.Context, sessionID, question string) (*Turn, error) {
	ctx, span := otel.Tracer("services/AssistantService").Start(ctx, "Ask",
		trace.WithAttributes(attribute.String("session.id", sessionID)),
	)
	defer span.End()

	question, err := s.validate(question)
	if err != nil {
		return nil, err
	}

	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	sess.mu.Lock()
	if sess.busy {
		sess.mu.Unlock()
		return nil, ErrSessionBusy
	}
	sess.busy = true
	sess.mu.Unlock()

	userMsg := s.message(question, domain.SenderUser)
	reply := s.Responder.Respond(ctx, question)
	botMsg := s.message(reply.Text, domain.SenderBot)
	assistantRepliesTotal.WithLabelValues(string(reply.Source)).Inc()
	span.SetAttributes(attribute.String("reply.source", string(reply.Source)))

	sess.mu.Lock()
	sess.messages = append(sess.messages, userMsg, botMsg)
	sess.lastSeen = s.clock()
	sess.busy = false
	sess.mu.Unlock()

	return &Turn{User: userMsg, Bot: botMsg, Source: reply.Source, Rule: reply.Rule}, nil
}

// Transcript returns a copy of the session's messages in order.
func (s *AssistantService) Transcript(ctx context.Context, sessionID string) ([]domain.ChatMessage, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	out := make([]domain.ChatMessage, len(sess.messages))
	copy(out, sess.messages)
	return out, nil
}

// Reply answers a one-off question without a session.
func (s *AssistantService) Reply(ctx context.Context, question string) (assistant.Reply, error) {
	question, err := s.validate(question)
	if err != nil {
		return assistant.Reply{}, err
	}
	reply := s.Responder.Respond(ctx, question)
	assistantRepliesTotal.WithLabelValues(string(reply.Source)).Inc()
	return reply, nil
}

// EvictIdle drops sessions idle past IdleTTL and reports how many went.
func (s *AssistantService) EvictIdle() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(s.clock())
}

func (s *AssistantService) validate(question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyPrompt
	}
	if s.MaxPromptRunes > 0 && utf8.RuneCountInString(question) > s.MaxPromptRunes {
		return "", ErrTooLong
	}
	return question, nil
}

func (s *AssistantService) lookup(id string) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	now := s.clock()
	if s.expired(sess, now) {
		delete(s.sessions, id)
		return nil, ErrSessionNotFound
	}
	sess.mu.Lock()
	sess.lastSeen = now
	sess.mu.Unlock()
	return sess, nil
}

// evictLocked requires s.mu.
func (s *AssistantService) evictLocked(now time.Time) int {
	n := 0
	for id, sess := range s.sessions {
		if s.expired(sess, now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n
}

func (s *AssistantService) expired(sess *session, now time.Time) bool {
	if s.IdleTTL <= 0 {
		return false
	}
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return !sess.busy && now.Sub(sess.lastSeen) > s.IdleTTL
}

func (s *AssistantService) message(text, sender string) domain.ChatMessage {
	return domain.ChatMessage{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Message:   text,
		Sender:    sender,
		Timestamp: s.clock().UTC().Format(time.RFC3339Nano),
	}
}

func (s *AssistantService) clock() time.Time {
	if s.now != nil {
		return s.now()
	}
	return time.Now()
}
