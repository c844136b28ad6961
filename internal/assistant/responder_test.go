package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeGenerator struct {
	text   string
	err    error
	panic  bool
	calls  int
	prompt string
	wait   bool
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.prompt = prompt
	if f.panic {
		panic("boom")
	}
	if f.wait {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return f.text, f.err
}

func TestRespond_RuleBeatsFallback(t *testing.T) {
	gen := &fakeGenerator{text: "generated"}
	fb, err := NewFallback(StrategyExternal, gen)
	require.NoError(t, err)

	r := NewResponder(nil, fb)
	got := r.Respond(context.Background(), "What documents do I need for GST registration?")

	require.Equal(t, SourceRule, got.Source)
	require.Equal(t, "gst-registration", got.Rule)
	require.True(t, strings.HasPrefix(got.Text, "For GST registration, you'll need:"))
	require.Zero(t, gen.calls, "fallback must not be consulted on a rule hit")
}

func TestRespond_ExternalFallback(t *testing.T) {
	gen := &fakeGenerator{text: "Udyam is free."}
	fb, _ := NewFallback(StrategyExternal, gen)

	got := NewResponder(nil, fb).Respond(context.Background(), "What is Udyam?")
	require.Equal(t, Reply{Text: "Udyam is free.", Source: SourceExternal}, got)
	require.Equal(t, 1, gen.calls)
	require.Contains(t, gen.prompt, "You are LaunchMate Assistant")
	require.True(t, strings.HasSuffix(gen.prompt, "USER QUERY: \"What is Udyam?\"\n\nPlease provide a helpful response:"))
}

func TestRespond_FallbackFailuresBecomeApology(t *testing.T) {
	cases := map[string]*fakeGenerator{
		"error": {err: errors.New("503 unavailable")},
		"empty": {text: "   "},
		"panic": {panic: true},
	}
	for name, gen := range cases {
		t.Run(name, func(t *testing.T) {
			fb, _ := NewFallback(StrategyExternal, gen)
			got := NewResponder(nil, fb).Respond(context.Background(), "something unrelated")
			require.Equal(t, Reply{Text: Apology, Source: SourceApology}, got)
		})
	}
}

func TestRespond_TimeoutBecomesApology(t *testing.T) {
	gen := &fakeGenerator{wait: true}
	fb, _ := NewFallback(StrategyExternal, gen)
	r := NewResponder(nil, fb, WithTimeout(10*time.Millisecond))

	got := r.Respond(context.Background(), "slow question")
	require.Equal(t, SourceApology, got.Source)
}

func TestRespond_Strategies(t *testing.T) {
	req := require.New(t)
	ctx := context.Background()

	none, err := NewFallback("none", nil)
	req.NoError(err)
	req.Equal(Reply{Text: Apology, Source: SourceApology}, NewResponder(nil, none).Respond(ctx, "hello"))

	unconfigured, err := NewFallback("external", nil)
	req.NoError(err)
	req.Equal(Reply{Text: Unconfigured, Source: SourceUnconfigured}, NewResponder(nil, unconfigured).Respond(ctx, "hello"))

	generic, err := NewFallback(" Generic ", nil)
	req.NoError(err)
	got := NewResponder(nil, generic).Respond(ctx, "hello")
	req.Equal(SourceGeneric, got.Source)
	req.True(strings.HasPrefix(got.Text, `I understand you're asking about "hello".`))
	req.Contains(got.Text, "• Application status tracking")

	_, err = NewFallback("oracle", nil)
	req.ErrorIs(err, ErrUnknownStrategy)
}

func TestNewResponder_NilFallbackApologises(t *testing.T) {
	got := NewResponder(nil, nil).Respond(context.Background(), "hello")
	require.Equal(t, SourceApology, got.Source)
}

func TestBuildPrompt_AppendsQuestionVerbatim(t *testing.T) {
	p := BuildPrompt(`say "hi"`)
	require.True(t, strings.HasPrefix(p, "You are LaunchMate Assistant"))
	require.Contains(t, p, `USER QUERY: "say "hi""`)
}
