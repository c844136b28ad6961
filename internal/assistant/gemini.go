package assistant

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.0-flash"

var (
	// ErrNoCandidates means the model returned no usable candidate, e.g.
	// because every candidate was blocked by the safety filter.
	ErrNoCandidates = errors.New("gemini: no candidates in response")
	// ErrEmptyResponse means a candidate came back without text.
	ErrEmptyResponse = errors.New("empty generated response")
)

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// GeminiGenerator calls the Gemini API with a fixed sampling and safety
// configuration.
type GeminiGenerator struct {
	models contentGenerator
	model  string
	config *genai.GenerateContentConfig
}

// NewGeminiGenerator creates a Gemini API client for apiKey.
func NewGeminiGenerator(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini: api key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: new client: %w", err)
	}
	return newGeminiGenerator(client.Models, model), nil
}

func newGeminiGenerator(models contentGenerator, model string) *GeminiGenerator {
	if strings.TrimSpace(model) == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{models: models, model: model, config: generationConfig()}
}

func generationConfig() *genai.GenerateContentConfig {
	block := func(c genai.HarmCategory) *genai.SafetySetting {
		return &genai.SafetySetting{Category: c, Threshold: genai.HarmBlockThresholdBlockMediumAndAbove}
	}
	return &genai.GenerateContentConfig{
		Temperature:     genai.Ptr[float32](0.7),
		TopK:            genai.Ptr[float32](40),
		TopP:            genai.Ptr[float32](0.95),
		MaxOutputTokens: 1024,
		SafetySettings: []*genai.SafetySetting{
			block(genai.HarmCategoryHarassment),
			block(genai.HarmCategoryHateSpeech),
			block(genai.HarmCategorySexuallyExplicit),
			block(genai.HarmCategoryDangerousContent),
		},
	}
}

// Model returns the model name requests are sent to.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate sends prompt as a single user turn and returns the text of the
// first candidate.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, span := otel.Tracer("assistant/GeminiGenerator").Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("gen_ai.request.model", g.model),
			attribute.Int("prompt.bytes", len(prompt)),
		),
	)
	defer span.End()

	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), g.config)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content")
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		span.SetStatus(codes.Error, "no candidates")
		return "", ErrNoCandidates
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		span.SetStatus(codes.Error, "empty text")
		return "", ErrEmptyResponse
	}
	return text, nil
}
