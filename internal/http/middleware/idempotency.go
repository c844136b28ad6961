// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements idempotency support for unsafe HTTP methods. It
// validates the Idempotency-Key request header, asks a lookup whether the
// operation behind the current route already completed under that key, and
// annotates the request context so downstream handlers can:
//   - read the validated key (GetIdempotencyKey)
//   - detect replayed requests (IsReplay) and answer without repeating side
//     effects such as a second welcome email
//   - skip rate limiting when a replay is served (via an internal flag)
//
// A stored record only counts as a replay when the request carries the same
// payload fingerprint it was saved with. A key reused for a different payload
// is processed as a fresh request.
//
// Persistence stays behind the narrow IdempotencyLookup function type; which
// routes take part is decided by IdempotencyOptions.Scope.
package middleware

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
)

// HeaderIdempotencyKey is the canonical request header that clients use to
// convey an idempotency key for unsafe operations.
const HeaderIdempotencyKey = "Idempotency-Key"

// HeaderIdempotencyReplayed is set on responses served from a stored record.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

const (
	ctxKeyIdemKey    = "idem.key"
	ctxKeyIdemScope  = "idem.scope"
	ctxKeyIdemPrint  = "idem.fingerprint"
	ctxKeyIdemReplay = "idem.replay" // *IdempotencyRecord when a stored result exists
	ctxKeyRateBypass = "rate.bypass" // bool: true to skip rate limiting
)

// IdempotencyRecord is what a lookup hands back for a completed operation.
type IdempotencyRecord struct {
	ResourceID  string
	Status      int
	Fingerprint string
}

// GetIdempotencyKey returns the validated idempotency key stored in the Gin
// context by IdempotencyValidator. The second return value indicates presence.
func GetIdempotencyKey(c *gin.Context) (string, bool) {
	v, ok := c.Get(ctxKeyIdemKey)
	if !ok {
		return "", false
	}
	s, _ := v.(string)
	return s, s != ""
}

// IdempotencyScope returns the scope the validator resolved for this route,
// or "" when the route does not take part in idempotency.
func IdempotencyScope(c *gin.Context) string {
	v, _ := c.Get(ctxKeyIdemScope)
	s, _ := v.(string)
	return s
}

// RequestFingerprint returns the payload fingerprint computed for this
// request, or "" when the route has none.
func RequestFingerprint(c *gin.Context) string {
	v, _ := c.Get(ctxKeyIdemPrint)
	s, _ := v.(string)
	return s
}

// IsReplay reports whether the validator found a completed operation for the
// request's scope and key.
func IsReplay(c *gin.Context) bool {
	_, ok := ReplayRecord(c)
	return ok
}

// ReplayRecord returns the stored record behind a replay.
func ReplayRecord(c *gin.Context) (IdempotencyRecord, bool) {
	v, ok := c.Get(ctxKeyIdemReplay)
	if !ok {
		return IdempotencyRecord{}, false
	}
	rec, ok := v.(*IdempotencyRecord)
	if !ok || rec == nil {
		return IdempotencyRecord{}, false
	}
	return *rec, true
}

// IdempotencyOptions configures IdempotencyValidator.
type IdempotencyOptions struct {
	// MaxLen caps the accepted key length. Values <= 0 default to 200.
	MaxLen int
	// Pattern restricts allowed characters. If nil, a conservative RFC7230-like
	// token pattern is used: ^[A-Za-z0-9._~\-:]+$
	Pattern *regexp.Regexp
	// Scope maps a request to the operation name its key is stored under.
	// Returning "" skips the lookup. If nil, the matched route path is used.
	Scope func(c *gin.Context) string
	// Fingerprint summarizes the request payload for a scope. A stored record
	// replays only when its fingerprint matches. If nil, every record with the
	// same scope and key replays.
	Fingerprint func(c *gin.Context, scope string) string
}

// IdempotencyLookup returns the stored record for (scope, key) if one is
// still valid at now. TTL enforcement belongs to the implementation. A nil
// record with a nil error means "not seen"; errors never block the request.
type IdempotencyLookup func(ctx context.Context, scope, key string, now time.Time) (*IdempotencyRecord, error)

// IdempotencyValidator validates the Idempotency-Key header (if present),
// stashes it together with the resolved scope, and consults lookup. When a
// stored record exists the request is marked as a replay and exempted from
// rate limiting. Invalid keys are rejected with 400. Handlers stay in charge
// of what a replay response looks like.
func IdempotencyValidator(opts IdempotencyOptions, lookup IdempotencyLookup) gin.HandlerFunc {
	maxLen := opts.MaxLen
	if maxLen <= 0 {
		maxLen = 200
	}
	pat := opts.Pattern
	if pat == nil {
		pat = regexp.MustCompile(`^[A-Za-z0-9._~\-:]+$`)
	}
	scopeOf := opts.Scope
	if scopeOf == nil {
		scopeOf = func(c *gin.Context) string { return c.FullPath() }
	}

	return func(c *gin.Context) {
		key := c.GetHeader(HeaderIdempotencyKey)
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxLen || !pat.MatchString(key) {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"request_id": c.Writer.Header().Get(requestIDHeader),
				"code":       "bad_idempotency_key",
				"message":    "invalid Idempotency-Key",
			})
			return
		}

		c.Set(ctxKeyIdemKey, key)

		scope := scopeOf(c)
		if scope == "" {
			c.Next()
			return
		}
		c.Set(ctxKeyIdemScope, scope)

		fp := ""
		if opts.Fingerprint != nil {
			fp = opts.Fingerprint(c, scope)
			c.Set(ctxKeyIdemPrint, fp)
		}

		if lookup != nil {
			rec, err := lookup(c.Request.Context(), scope, key, time.Now().UTC())
			switch {
			case err != nil:
				LoggerFrom(c).Warn().Err(err).Str("scope", scope).Msg("idempotency lookup failed")
			case rec == nil:
			case opts.Fingerprint != nil && rec.Fingerprint != fp:
				LoggerFrom(c).Info().Str("scope", scope).Msg("idempotency key reused with a different payload")
			default:
				c.Set(ctxKeyIdemReplay, rec)
				c.Set(ctxKeyRateBypass, true)
			}
		}

		c.Next()
	}
}
