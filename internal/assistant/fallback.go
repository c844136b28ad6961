package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Fixed user-visible texts.
const (
	Apology      = "I'm sorry, I'm having trouble processing your request right now. Please try again later or contact support for assistance."
	Unconfigured = "I'm sorry, but the AI service is not properly configured. Please contact support."
)

// Fallback strategies selectable by configuration.
const (
	StrategyNone     = "none"
	StrategyGeneric  = "generic"
	StrategyExternal = "external"
)

// ErrUnknownStrategy is returned by NewFallback for an unrecognised name.
var ErrUnknownStrategy = errors.New("unknown fallback strategy")

// Generator produces free text for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Fallback answers questions no rule matched. A returned error is turned
// into the apology by the Responder; implementations need not do it.
type Fallback interface {
	Reply(ctx context.Context, question string) (string, error)
	Source() Source
}

// NewFallback builds the strategy named by strategy. For "external" a nil
// gen means no API key was configured; the result then answers with the
// Unconfigured text instead of calling out.
func NewFallback(strategy string, gen Generator) (Fallback, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case StrategyNone:
		return ApologyFallback{}, nil
	case StrategyGeneric:
		return GenericFallback{}, nil
	case StrategyExternal:
		if gen == nil {
			return UnconfiguredFallback{}, nil
		}
		return ExternalFallback{Generator: gen}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}

// ApologyFallback always answers with the fixed apology.
type ApologyFallback struct{}

func (ApologyFallback) Reply(context.Context, string) (string, error) { return Apology, nil }
func (ApologyFallback) Source() Source                                  { return SourceApology }

// UnconfiguredFallback stands in for the external strategy when no API key is set.
type UnconfiguredFallback struct{}

func (UnconfiguredFallback) Reply(context.Context, string) (string, error) { return Unconfigured, nil }
func (UnconfiguredFallback) Source() Source                                  { return SourceUnconfigured }

// GenericFallback echoes the question and lists what the assistant can help with.
type GenericFallback struct{}

func (GenericFallback) Reply(_ context.Context, question string) (string, error) {
	return `I understand you're asking about "` + question + `". 

I'm here to help with:
• License applications and requirements
• Government scheme eligibility
• Fee calculations and timelines
• Document preparation
• Application status tracking

Could you please be more specific about what you'd like to know? For example:
- "What documents do I need for GST registration?"
- "Which schemes am I eligible for?"
- "How much does company registration cost?"

You can also use the quick action buttons below for common queries!`, nil
}

func (GenericFallback) Source() Source { return SourceGeneric }

// ExternalFallback forwards the question, wrapped in the persona prompt, to
// a Generator.
type ExternalFallback struct {
	Generator Generator
}

func (f ExternalFallback) Reply(ctx context.Context, question string) (string, error) {
	text, err := f.Generator.Generate(ctx, BuildPrompt(question))
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (ExternalFallback) Source() Source { return SourceExternal }
