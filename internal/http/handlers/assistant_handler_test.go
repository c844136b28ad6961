package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/negga-dot/LaunchMate/internal/assistant"
	"github.com/negga-dot/LaunchMate/internal/domain"
	"github.com/negga-dot/LaunchMate/internal/services"
)

func newAssistantRouter(svc AssistantService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(&stubSubSvc{}, svc, nil)
	r.POST("/assistant/sessions", h.CreateSession)
	r.GET("/assistant/sessions/:id/messages", h.ListSessionMessages)
	r.POST("/assistant/sessions/:id/messages", h.PostSessionMessage)
	r.POST("/assistant/reply", h.AssistantReply)
	return r
}

func TestCreateSession_201(t *testing.T) {
	id := uuid.NewString()
	svc := stubAsstSvc{create: func(context.Context) (services.Session, error) {
		return services.Session{ID: id, CreatedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)}, nil
	}}
	w := doJSON(t, newAssistantRouter(svc), http.MethodPost, "/assistant/sessions", nil, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if got := decode[services.Session](t, w); got.ID != id {
		t.Fatalf("session id = %q", got.ID)
	}
}

func TestListSessionMessages(t *testing.T) {
	id := uuid.NewString()
	svc := stubAsstSvc{transcript: func(_ context.Context, sid string) ([]domain.ChatMessage, error) {
		if sid != id {
			return nil, services.ErrSessionNotFound
		}
		return []domain.ChatMessage{
			{ID: "m1", Sender: domain.SenderUser, Message: "hello"},
			{ID: "m2", Sender: domain.SenderBot, Message: "Hi there!"},
		}, nil
	}}
	r := newAssistantRouter(svc)

	w := doJSON(t, r, http.MethodGet, "/assistant/sessions/"+id+"/messages", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	got := decode[TranscriptResponse](t, w)
	if got.SessionID != id || len(got.Messages) != 2 || got.Messages[1].Sender != domain.SenderBot {
		t.Fatalf("unexpected transcript: %+v", got)
	}

	w = doJSON(t, r, http.MethodGet, "/assistant/sessions/"+uuid.NewString()+"/messages", nil, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodGet, "/assistant/sessions/not-a-uuid/messages", nil, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad id, got %d", w.Code)
	}
}

func TestPostSessionMessage_OK(t *testing.T) {
	id := uuid.NewString()
	svc := stubAsstSvc{ask: func(_ context.Context, sid, q string) (*services.Turn, error) {
		return &services.Turn{
			User:   domain.ChatMessage{ID: sid + "-u", Sender: domain.SenderUser, Message: q},
			Bot:    domain.ChatMessage{ID: sid + "-b", Sender: domain.SenderBot, Message: "GST registration needs PAN and address proof."},
			Source: assistant.SourceRule,
			Rule:   "gst-registration",
		}, nil
	}}
	w := doJSON(t, newAssistantRouter(svc), http.MethodPost, "/assistant/sessions/"+id+"/messages",
		AskRequest{Message: "How do I get GST registration?"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", w.Code, w.Body.String())
	}
	got := decode[services.Turn](t, w)
	if got.Source != assistant.SourceRule || got.Rule != "gst-registration" || got.User.Message != "How do I get GST registration?" {
		t.Fatalf("unexpected turn: %+v", got)
	}
}

func TestPostSessionMessage_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"empty", services.ErrEmptyPrompt, http.StatusBadRequest, ErrCodeBadRequest},
		{"too long", services.ErrTooLong, http.StatusBadRequest, ErrCodePromptTooLong},
		{"missing", services.ErrSessionNotFound, http.StatusNotFound, ErrCodeNotFound},
		{"busy", services.ErrSessionBusy, http.StatusConflict, ErrCodeSessionBusy},
		{"other", errors.New("boom"), http.StatusInternalServerError, ErrCodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := stubAsstSvc{ask: func(context.Context, string, string) (*services.Turn, error) {
				return nil, tc.err
			}}
			w := doJSON(t, newAssistantRouter(svc), http.MethodPost, "/assistant/sessions/"+uuid.NewString()+"/messages",
				AskRequest{Message: "x"}, nil)
			if w.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, w.Code)
			}
			got := decode[ErrorResponse](t, w)
			if got.Code != tc.code {
				t.Fatalf("code = %q; want %q", got.Code, tc.code)
			}
			if strings.Contains(w.Body.String(), "boom") {
				t.Fatalf("internal error leaked: %s", w.Body.String())
			}
		})
	}
}

func TestPostSessionMessage_BadJSON(t *testing.T) {
	w := doJSON(t, newAssistantRouter(stubAsstSvc{}), http.MethodPost, "/assistant/sessions/"+uuid.NewString()+"/messages", "{", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestAssistantReply(t *testing.T) {
	svc := stubAsstSvc{reply: func(_ context.Context, q string) (assistant.Reply, error) {
		if strings.TrimSpace(q) == "" {
			return assistant.Reply{}, services.ErrEmptyPrompt
		}
		return assistant.Reply{Text: "Hi there!", Source: assistant.SourceRule}, nil
	}}
	r := newAssistantRouter(svc)

	w := doJSON(t, r, http.MethodPost, "/assistant/reply", AskRequest{Message: "hello"}, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode[assistant.Reply](t, w); got.Text != "Hi there!" {
		t.Fatalf("unexpected reply: %+v", got)
	}

	w = doJSON(t, r, http.MethodPost, "/assistant/reply", AskRequest{Message: "   "}, nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty prompt, got %d", w.Code)
	}
}
