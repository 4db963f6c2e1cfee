package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"triage_server/core/domain"

	"github.com/goccy/go-json"
)

const (
	classifySystemPrompt = "You are a customer support triage assistant. Return concise reasoning and follow the JSON schema strictly."

	defaultConfidence = 0.5
	defaultReasoning  = "No reasoning provided."
)

// ErrInvalidJSON is returned when no JSON object can be recovered from the completion.
var ErrInvalidJSON = errors.New("invalid JSON from model")

// rawClassification keeps every field loosely typed; models do not always honor the schema.
type rawClassification struct {
	PrimaryCategory any `json:"primaryCategory"`
	Categories      any `json:"categories"`
	Confidence      any `json:"confidence"`
	Reasoning       any `json:"reasoning"`
}

func buildClassifyPrompt(message string) string {
	allowed := make([]string, len(domain.AllCategories))
	for i, c := range domain.AllCategories {
		allowed[i] = string(c)
	}
	return fmt.Sprintf(
		"Return ONLY valid JSON with keys: \"primaryCategory\" (string), \"categories\" (array of 1-3 strings), \"confidence\" (0-1), \"reasoning\" (string).\n\nAllowed categories: %s\n\nMessage: \"\"\"%s\"\"\"",
		strings.Join(allowed, ", "), message,
	)
}

// Classify asks the model for a category assignment. It implements out.Classifier.
func (c *Client) Classify(ctx context.Context, message string) (*domain.Classification, error) {
	start := time.Now()
	resp, err := c.CompleteWithSystem(ctx, classifySystemPrompt, buildClassifyPrompt(message))
	if err != nil {
		return nil, fmt.Errorf("classification request failed: %w", err)
	}

	raw, err := parseJSONFromText(resp)
	if err != nil {
		return nil, err
	}

	result := normalizeRaw(raw, c.model)
	latency := time.Since(start).Milliseconds()
	result.LatencyMs = &latency
	return result, nil
}

// parseJSONFromText tries the whole completion, then the outermost {...} span.
func parseJSONFromText(text string) (*rawClassification, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	var raw rawClassification
	if err := json.Unmarshal([]byte(text), &raw); err == nil {
		return &raw, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrInvalidJSON
	}
	raw = rawClassification{}
	if err := json.Unmarshal([]byte(text[start:end+1]), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	return &raw, nil
}

// normalizeRaw keeps only exact vocabulary labels and fills defaults.
func normalizeRaw(raw *rawClassification, model string) *domain.Classification {
	primary := domain.CategoryUnknown
	if s, ok := raw.PrimaryCategory.(string); ok && domain.IsAllowed(s) {
		primary = domain.Category(s)
	}

	var cats []domain.Category
	if list, ok := raw.Categories.([]any); ok {
		seen := make(map[domain.Category]bool)
		for _, item := range list {
			s, ok := item.(string)
			if !ok || !domain.IsAllowed(s) || seen[domain.Category(s)] {
				continue
			}
			seen[domain.Category(s)] = true
			cats = append(cats, domain.Category(s))
		}
	}
	if len(cats) == 0 {
		cats = []domain.Category{primary}
	}
	if len(cats) > domain.MaxCategories {
		cats = cats[:domain.MaxCategories]
	}

	confidence := defaultConfidence
	if f, ok := raw.Confidence.(float64); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		confidence = math.Max(0, math.Min(1, f))
	}

	reasoning := defaultReasoning
	if s, ok := raw.Reasoning.(string); ok && strings.TrimSpace(s) != "" {
		reasoning = s
	}

	return &domain.Classification{
		PrimaryCategory: primary,
		Categories:      cats,
		Confidence:      confidence,
		Reasoning:       reasoning,
		Model:           model,
	}
}
