package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"resumatch/resume-matcher/internal/models"
)

// JobSkills carries the two skill lists handed to the evaluator.
type JobSkills struct {
	RequiredSkills   []string `json:"required_skills"`
	NiceToHaveSkills []string `json:"nice_to_have_skills"`
}

// EvaluationResult is the raw evaluator output. MissingSkills is reported as
// received but the orchestrator recomputes the missing set locally and never
// trusts this field.
type EvaluationResult struct {
	MatchedSkills []string `json:"matched_skills"`
	MissingSkills []string `json:"missing_skills"`
	Rationale     string   `json:"rationale"`
}

// Embedder generates a fixed-length vector for a text. It never fails: total
// failure yields an all-zero vector of the agreed dimensionality.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Evaluator is the external high-fidelity evaluation capability. It may fail;
// the orchestrator catches and falls back.
type Evaluator interface {
	Evaluate(ctx context.Context, jdText string, skills JobSkills, resumeText string) (*EvaluationResult, error)
}

// SkillExtractor splits a job description into skill lists.
type SkillExtractor interface {
	ExtractSkills(ctx context.Context, jdText string) (*JobSkills, error)
}

// ResumeParser structures raw resume text.
type ResumeParser interface {
	ParseResume(ctx context.Context, resumeText string) (*models.ParsedResume, error)
}

type GeminiService struct {
	client           *genai.Client
	generationModels []string
	embeddingModels  []string
	embeddingDim     int
	maxRetries       int
	promptBuilder    *PromptBuilder
	logger           *zap.Logger
}

func NewGeminiService(apiKey string, embeddingDim, maxRetries int, logger *zap.Logger) (*GeminiService, error) {
	ctx := context.Background()

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &GeminiService{
		client: client,
		// Primary first; later entries absorb rate limits and outages.
		generationModels: []string{
			"gemini-2.0-flash",
			"gemini-2.0-flash-lite",
			"gemini-2.5-flash",
		},
		embeddingModels: []string{
			"text-embedding-004",
			"text-embedding-002",
		},
		embeddingDim:  embeddingDim,
		maxRetries:    maxRetries,
		promptBuilder: NewPromptBuilder(),
		logger:        logger,
	}, nil
}

// Embed implements Embedder with tiered model fallback. When every model
// fails it logs the last error and returns a zero vector instead of failing
// the caller.
func (g *GeminiService) Embed(ctx context.Context, text string) []float32 {
	if text == "" {
		return make([]float32, g.embeddingDim)
	}
	// Stay under the embedding model's token ceiling.
	if len(text) > 40000 {
		text = text[:40000]
	}

	var lastErr error
	for _, model := range g.embeddingModels {
		result, err := g.client.Models.EmbedContent(ctx, model, genai.Text(text), nil)
		if err != nil {
			lastErr = err
			g.logger.Warn("embedding model failed",
				zap.String("model", model),
				zap.Error(err),
			)
			continue
		}
		if result == nil || len(result.Embeddings) == 0 {
			lastErr = fmt.Errorf("empty embedding result from %s", model)
			continue
		}
		return result.Embeddings[0].Values
	}

	g.logger.Error("all embedding models failed, returning zero vector", zap.Error(lastErr))
	return make([]float32, g.embeddingDim)
}

// Evaluate implements Evaluator.
func (g *GeminiService) Evaluate(ctx context.Context, jdText string, skills JobSkills, resumeText string) (*EvaluationResult, error) {
	prompt := g.promptBuilder.BuildEvaluationPrompt(jdText, skills.RequiredSkills, skills.NiceToHaveSkills, resumeText)

	var result EvaluationResult
	if err := g.generateJSON(ctx, prompt, 0.3, &result); err != nil {
		return nil, fmt.Errorf("failed to evaluate resume: %w", err)
	}
	return &result, nil
}

// ExtractSkills implements SkillExtractor.
func (g *GeminiService) ExtractSkills(ctx context.Context, jdText string) (*JobSkills, error) {
	prompt := g.promptBuilder.BuildSkillExtractionPrompt(jdText)

	var result JobSkills
	if err := g.generateJSON(ctx, prompt, 0.2, &result); err != nil {
		return nil, fmt.Errorf("failed to extract skills: %w", err)
	}
	return &result, nil
}

// ParseResume implements ResumeParser.
func (g *GeminiService) ParseResume(ctx context.Context, resumeText string) (*models.ParsedResume, error) {
	prompt := g.promptBuilder.BuildResumeParsePrompt(resumeText)

	var result models.ParsedResume
	if err := g.generateJSON(ctx, prompt, 0.2, &result); err != nil {
		return nil, fmt.Errorf("failed to parse resume: %w", err)
	}
	return &result, nil
}

// generateJSON runs the prompt through the generation model tiers with bounded
// retry per model and unmarshals the JSON payload of the first success.
func (g *GeminiService) generateJSON(ctx context.Context, prompt string, temperature float32, target any) error {
	config := &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  4096,
		ResponseMIMEType: "application/json",
	}

	var lastErr error
	for _, model := range g.generationModels {
		for attempt := 1; attempt <= g.maxRetries; attempt++ {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled: %w", ctx.Err())
			default:
			}

			resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
			if err != nil {
				lastErr = err
				g.logger.Warn("generation attempt failed",
					zap.String("model", model),
					zap.Int("attempt", attempt),
					zap.Error(err),
				)
				continue
			}

			text := ""
			if resp != nil {
				text = resp.Text()
			}
			if text == "" {
				lastErr = fmt.Errorf("no text content in response from %s", model)
				continue
			}

			if err := json.Unmarshal([]byte(extractJSON(text)), target); err != nil {
				lastErr = fmt.Errorf("failed to unmarshal response from %s: %w", model, err)
				continue
			}
			return nil
		}
	}

	return fmt.Errorf("all generation models failed: %w", lastErr)
}

// extractJSON strips markdown fences and trims to the outermost JSON object
// or array, since models occasionally wrap structured output in prose.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj != -1 && endObj > startObj {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}
	return text
}
