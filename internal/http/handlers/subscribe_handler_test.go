package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/negga-dot/LaunchMate/internal/http/middleware"
	"github.com/negga-dot/LaunchMate/internal/services"
)

type savedKey struct {
	scope, key, resourceID, fingerprint string
	status                              int
	ttl                                 time.Duration
}

type memIdem struct {
	saved []savedKey
	err   error
}

func (m *memIdem) Save(_ context.Context, scope, key, resourceID, fingerprint string, status int, ttl time.Duration) error {
	m.saved = append(m.saved, savedKey{scope, key, resourceID, fingerprint, status, ttl})
	return m.err
}

func (m *memIdem) lookup(_ context.Context, scope, key string, _ time.Time) (*middleware.IdempotencyRecord, error) {
	for _, s := range m.saved {
		if s.scope == scope && s.key == key {
			return &middleware.IdempotencyRecord{ResourceID: s.resourceID, Status: s.status, Fingerprint: s.fingerprint}, nil
		}
	}
	return nil, nil
}

func newSubscribeRouter(sub *stubSubSvc, idem *memIdem) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := New(sub, stubAsstSvc{}, nil)
	if idem != nil {
		h.WithIdempotency(idem, time.Hour)
		r.Use(middleware.IdempotencyValidator(middleware.IdempotencyOptions{
			Scope: func(c *gin.Context) string {
				if c.FullPath() == "/subscribe" {
					return ScopeSubscribe
				}
				return ""
			},
			Fingerprint: SubscribeFingerprint,
		}, idem.lookup))
	}
	r.POST("/subscribe", h.Subscribe)
	r.GET("/subscribers/stats", h.SubscriberStats)
	return r
}

func TestSubscribe_Created(t *testing.T) {
	sub := &stubSubSvc{}
	r := newSubscribeRouter(sub, nil)

	w := doJSON(t, r, http.MethodPost, "/subscribe", SubscribeRequest{FirstName: "Priya", Email: "priya@example.com"}, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d %s", w.Code, w.Body.String())
	}
	if got := decode[MsgResponse](t, w); got.Msg != services.MsgWelcomeSent {
		t.Fatalf("msg = %q", got.Msg)
	}
}

func TestSubscribe_InvalidAndConflict_Are400WithMsg(t *testing.T) {
	cases := []struct {
		name string
		res  services.SubscribeResult
	}{
		{"invalid", services.SubscribeResult{Status: services.StatusInvalid, Message: services.MsgMissingFields}},
		{"conflict", services.SubscribeResult{Status: services.StatusConflict, Message: services.MsgAlreadyExists}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			sub := &stubSubSvc{subscribe: func(context.Context, string, string) (services.SubscribeResult, error) {
				return tc.res, nil
			}}
			w := doJSON(t, newSubscribeRouter(sub, nil), http.MethodPost, "/subscribe", SubscribeRequest{FirstName: "A", Email: "a@example.com"}, nil)
			if w.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", w.Code)
			}
			if got := decode[MsgResponse](t, w); got.Msg != tc.res.Message {
				t.Fatalf("msg = %q; want %q", got.Msg, tc.res.Message)
			}
		})
	}
}

func TestSubscribe_MalformedJSON_IsMissingFields(t *testing.T) {
	sub := &stubSubSvc{}
	w := doJSON(t, newSubscribeRouter(sub, nil), http.MethodPost, "/subscribe", "{not json", nil)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if got := decode[MsgResponse](t, w); got.Msg != services.MsgMissingFields {
		t.Fatalf("msg = %q", got.Msg)
	}
	if sub.calls != 0 {
		t.Fatalf("service must not be called on malformed input")
	}
}

func TestSubscribe_ServerError_DoesNotLeakDetail(t *testing.T) {
	logs := captureLogs(t)
	sub := &stubSubSvc{subscribe: func(context.Context, string, string) (services.SubscribeResult, error) {
		return services.SubscribeResult{Status: services.StatusError, Message: services.MsgServerError}, errors.New("dial tcp 10.0.0.7:5432: refused")
	}}
	w := doJSON(t, newSubscribeRouter(sub, nil), http.MethodPost, "/subscribe", SubscribeRequest{FirstName: "A", Email: "a@example.com"}, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := decode[MsgResponse](t, w); got.Msg != "Server error" {
		t.Fatalf("msg = %q", got.Msg)
	}
	if strings.Contains(w.Body.String(), "10.0.0.7") {
		t.Fatalf("internal detail leaked: %s", w.Body.String())
	}
	if !strings.Contains(logs.String(), "10.0.0.7") {
		t.Fatalf("expected the cause in server logs, got: %s", logs.String())
	}
}

func TestSubscribe_IdempotentRetryReplays201(t *testing.T) {
	sub := &stubSubSvc{}
	idem := &memIdem{}
	r := newSubscribeRouter(sub, idem)
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "signup-7f3a"}
	body := SubscribeRequest{FirstName: "Priya", Email: "priya@example.com"}

	first := doJSON(t, r, http.MethodPost, "/subscribe", body, hdr)
	if first.Code != http.StatusCreated {
		t.Fatalf("first: expected 201, got %d", first.Code)
	}
	if len(idem.saved) != 1 {
		t.Fatalf("expected one saved key, got %+v", idem.saved)
	}
	s := idem.saved[0]
	if s.scope != ScopeSubscribe || s.resourceID != "sub-1" || s.status != http.StatusCreated || s.ttl != time.Hour {
		t.Fatalf("unexpected saved record: %+v", s)
	}
	if s.fingerprint != services.EmailFingerprint("PRIYA@example.com ") {
		t.Fatalf("fingerprint should be the normalized email digest, got %q", s.fingerprint)
	}

	retry := doJSON(t, r, http.MethodPost, "/subscribe", body, hdr)
	if retry.Code != http.StatusCreated {
		t.Fatalf("retry: expected 201, got %d", retry.Code)
	}
	if retry.Header().Get(middleware.HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("expected replay header")
	}
	if got := decode[MsgResponse](t, retry); got.Msg != MsgReplayed {
		t.Fatalf("msg = %q", got.Msg)
	}
	if sub.calls != 1 {
		t.Fatalf("service must run once, ran %d times", sub.calls)
	}
}

func TestSubscribe_SameKeyOtherEmail_RunsService(t *testing.T) {
	sub := &stubSubSvc{}
	idem := &memIdem{}
	r := newSubscribeRouter(sub, idem)
	hdr := map[string]string{middleware.HeaderIdempotencyKey: "k1"}

	doJSON(t, r, http.MethodPost, "/subscribe", SubscribeRequest{FirstName: "A", Email: "a@example.com"}, hdr)
	w := doJSON(t, r, http.MethodPost, "/subscribe", SubscribeRequest{FirstName: "B", Email: "b@example.com"}, hdr)
	if w.Code != http.StatusCreated || w.Header().Get(middleware.HeaderIdempotencyReplayed) != "" {
		t.Fatalf("expected a fresh 201, got %d replayed=%q", w.Code, w.Header().Get(middleware.HeaderIdempotencyReplayed))
	}
	if sub.calls != 2 {
		t.Fatalf("service should run for the second email, ran %d times", sub.calls)
	}
	if got := decode[MsgResponse](t, w); got.Msg != services.MsgWelcomeSent {
		t.Fatalf("msg = %q", got.Msg)
	}
}

func TestSubscribeFingerprint(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		body string
		want string
	}{
		{`{"firstName":"A","email":" A@Example.com"}`, services.EmailFingerprint("a@example.com")},
		{`{"firstName":"A","email":""}`, ""},
		{`{not json`, ""},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodPost, "/subscribe", strings.NewReader(tc.body))
		c.Request.Header.Set("Content-Type", "application/json")
		if got := SubscribeFingerprint(c, ScopeSubscribe); got != tc.want {
			t.Fatalf("body %s: fingerprint = %q; want %q", tc.body, got, tc.want)
		}
	}
}

func TestSubscribe_NoKeyNoRecord(t *testing.T) {
	idem := &memIdem{}
	r := newSubscribeRouter(&stubSubSvc{}, idem)
	if w := doJSON(t, r, http.MethodPost, "/subscribe", SubscribeRequest{FirstName: "A", Email: "a@example.com"}, nil); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", w.Code)
	}
	if len(idem.saved) != 0 {
		t.Fatalf("nothing should be recorded without a key: %+v", idem.saved)
	}
}

func TestSubscriberStats(t *testing.T) {
	w := doJSON(t, newSubscribeRouter(&stubSubSvc{}, nil), http.MethodGet, "/subscribers/stats", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if got := decode[services.SubscriberStats](t, w); got.Total != 1204 || got.TotalHuman != "1,204" {
		t.Fatalf("unexpected stats: %+v", got)
	}

	failing := &stubSubSvc{stats: func(context.Context) (services.SubscriberStats, error) {
		return services.SubscriberStats{}, errors.New("boom")
	}}
	w = doJSON(t, newSubscribeRouter(failing, nil), http.MethodGet, "/subscribers/stats", nil, nil)
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if got := decode[ErrorResponse](t, w); got.Code != ErrCodeInternal {
		t.Fatalf("unexpected error body: %+v", got)
	}
}
