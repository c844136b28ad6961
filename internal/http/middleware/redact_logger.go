// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, the structured access logger. It
// attaches a request-scoped zerolog.Logger for handlers (see LoggerFrom) and
// scrubs obvious PII from request metadata before emitting the access line.
//
// What gets scrubbed:
//   - email addresses (subscribers submit theirs)
//   - Indian tax identifiers: GSTIN before PAN, since a PAN is embedded in
//     every GSTIN
//   - UUID-like identifiers and phone numbers
//   - sensitive header values, fully masked
//
// Request and response bodies are never logged.
//
// Usage:
//
//	r := gin.New()
//	r.Use(middleware.RequestID())
//	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
//	    MaskHeaders: []string{"X-Api-Key"},
//	}))
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// the built-in sensitive headers.
type RedactOptions struct {
	MaskHeaders []string
}

var (
	uuidRE  = regexp.MustCompile(`(?i)\b[0-9a-f]{8}\-[0-9a-f]{4}\-[1-8][0-9a-f]{3}\-[89ab][0-9a-f]{3}\-[0-9a-f]{12}\b`)
	emailRE = regexp.MustCompile(`(?i)\b[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}\b`)
	gstinRE = regexp.MustCompile(`(?i)\b\d{2}[a-z]{5}\d{4}[a-z][1-9a-z]z[0-9a-z]\b`)
	panRE   = regexp.MustCompile(`(?i)\b[a-z]{5}\d{4}[a-z]\b`)
	// Digits-only so that hex runs inside UUIDs never match.
	phoneRE = regexp.MustCompile(`\b(?:\+?\d{1,3}[ .-]?)?(?:\(?\d{2,4}\)?[ .-]?)?\d{3,4}[ .-]?\d{4}\b`)
)

// builtinMaskedHeaders are always fully masked.
var builtinMaskedHeaders = []string{
	"authorization",
	"cookie",
	"set-cookie",
	"x-goog-api-key",
}

// redact scrubs s. Order matters: UUIDs and GSTINs go before the looser
// phone and PAN patterns that would otherwise eat parts of them.
func redact(s string) string {
	if s == "" {
		return s
	}
	s = uuidRE.ReplaceAllString(s, "[REDACTED:id]")
	s = emailRE.ReplaceAllString(s, "[REDACTED:email]")
	s = gstinRE.ReplaceAllString(s, "[REDACTED:gstin]")
	s = panRE.ReplaceAllString(s, "[REDACTED:pan]")
	s = phoneRE.ReplaceAllString(s, "[REDACTED:phone]")
	return s
}

// RedactingLogger returns a Gin middleware that attaches a request-scoped
// logger and writes one access line per request with sensitive values
// scrubbed.
//
// The scoped logger carries request_id, user_id, method and route path. The
// access line adds the redacted query, redacted headers, status, size and
// latency; it is logged at INFO, WARN for 4xx and ERROR for 5xx or when Gin
// collected errors.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	maskHeaders := make(map[string]struct{}, len(builtinMaskedHeaders)+len(opts.MaskHeaders))
	for _, h := range builtinMaskedHeaders {
		maskHeaders[h] = struct{}{}
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}

		reqID := asString(c.Value(requestIDKey))
		if reqID == "" {
			reqID = c.Writer.Header().Get(requestIDHeader)
		}
		if reqID == "" {
			reqID = c.GetHeader(requestIDHeader)
		}
		uid := asString(c.Value("userID"))
		if uid == "" {
			uid = c.GetHeader("X-User-ID")
		}

		scoped := log.With().
			Str("request_id", reqID).
			Str("user_id", redact(uid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set(loggerKey, &scoped)

		safeQuery := redact(truncate(c.Request.URL.RawQuery, maxQueryLogLength))

		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			if _, ok := maskHeaders[strings.ToLower(k)]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(strings.Join(vv, ", "))
		}

		c.Next()

		status := c.Writer.Status()

		ev := scoped.Info()
		switch {
		case len(c.Errors) > 0 || status >= 500:
			ev = scoped.Error()
			if len(c.Errors) > 0 {
				ev = ev.Str("errors", redact(c.Errors.String()))
			}
		case status >= 400:
			ev = scoped.Warn()
		}

		ev.
			Str("query", safeQuery).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
