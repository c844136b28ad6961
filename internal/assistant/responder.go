package assistant

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
)

// Source says where a reply came from.
type Source string

const (
	SourceRule         Source = "rule"
	SourceExternal     Source = "external"
	SourceGeneric      Source = "generic"
	SourceApology      Source = "apology"
	SourceUnconfigured Source = "unconfigured"
)

// Reply is the outcome of one assistant turn. Rule names the matching rule
// when Source is SourceRule.
type Reply struct {
	Text   string `json:"text"`
	Source Source `json:"source"`
	Rule   string `json:"rule,omitempty"`
}

// Option configures a Responder.
type Option func(*Responder)

// WithTimeout bounds each fallback call. Zero means no bound beyond ctx.
func WithTimeout(d time.Duration) Option {
	return func(r *Responder) {
		if d >= 0 {
			r.timeout = d
		}
	}
}

// Responder resolves a question against the rule table, then the fallback.
// It never fails: every fallback error or panic becomes the Apology.
type Responder struct {
	rules    *RuleSet
	fallback Fallback
	timeout  time.Duration
}

// NewResponder returns a Responder. A nil rules uses DefaultRules; a nil
// fallback answers unmatched questions with the apology.
func NewResponder(rules *RuleSet, fb Fallback, opts ...Option) *Responder {
	if rules == nil {
		rules = DefaultRules()
	}
	if fb == nil {
		fb = ApologyFallback{}
	}
	r := &Responder{rules: rules, fallback: fb}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Respond answers question. The first matching rule wins; otherwise the
// fallback is consulted exactly once.
func (r *Responder) Respond(ctx context.Context, question string) Reply {
	if rule, ok := r.rules.Match(question); ok {
		return Reply{Text: rule.Response, Source: SourceRule, Rule: rule.Name}
	}

	text, err := r.callFallback(ctx, question)
	if err != nil {
		log.Warn().Err(err).Str("fallback", string(r.fallback.Source())).Msg("assistant fallback failed")
		return Reply{Text: Apology, Source: SourceApology}
	}
	return Reply{Text: text, Source: r.fallback.Source()}
}

func (r *Responder) callFallback(ctx context.Context, question string) (text string, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("fallback panic: %v", p)
		}
	}()
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}
	return r.fallback.Reply(ctx, question)
}
