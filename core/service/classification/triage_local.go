package classification

import (
	"context"
	"strings"

	"triage_server/core/domain"
)

// ModelLocal is reported by classifications produced without the remote model.
const ModelLocal = "mock"

type keywordRule struct {
	category   domain.Category
	confidence float64
	reasoning  string
	keywords   []string
}

// first match wins
var localRules = []keywordRule{
	{domain.CategoryOutage, 0.7, "Message indicates downtime or outage impacting availability.",
		[]string{"outage", "server down", "production", "database"}},
	{domain.CategoryAccountAccess, 0.65, "Message mentions login or access issues.",
		[]string{"password", "login", "locked out"}},
	{domain.CategoryBilling, 0.6, "Billing or payment keywords detected.",
		[]string{"billing", "payment", "invoice", "refund"}},
	{domain.CategoryFeatureRequest, 0.55, "Feature request language detected.",
		[]string{"feature", "could you add", "would like to see"}},
	{domain.CategoryFeedback, 0.6, "Positive feedback detected.",
		[]string{"thank", "appreciate"}},
	{domain.CategoryTechnical, 0.6, "Technical issue keywords detected.",
		[]string{"error", "bug", "not working"}},
}

var localDefault = keywordRule{
	category:   domain.CategoryGeneralInquiry,
	confidence: 0.45,
	reasoning:  "Defaulted to general inquiry due to limited signals.",
}

// ClassifyLocal is the deterministic keyword classifier. It never fails.
func ClassifyLocal(message string) *domain.Classification {
	lower := strings.ToLower(message)
	rule := localDefault
	for _, r := range localRules {
		if containsAny(lower, r.keywords) {
			rule = r
			break
		}
	}
	return &domain.Classification{
		PrimaryCategory: rule.category,
		Categories:      []domain.Category{rule.category},
		Confidence:      rule.confidence,
		Reasoning:       rule.reasoning,
		Model:           ModelLocal,
	}
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// LocalClassifier adapts ClassifyLocal to out.Classifier.
type LocalClassifier struct{}

func (LocalClassifier) Classify(_ context.Context, message string) (*domain.Classification, error) {
	return ClassifyLocal(message), nil
}

func (LocalClassifier) Model() string { return ModelLocal }
