package analysis

import (
	"math"
	"strings"
	"time"

	"triage_server/core/domain"

	"github.com/google/uuid"
)

const (
	DefaultConfidence = 0.5
	DefaultReasoning  = "No reasoning provided."
	ModelMock         = "mock"
)

// Signals is the output of the detectors that need no classifier.
type Signals struct {
	Validation ValidationResult `json:"validation"`
	PII        []string         `json:"piiFindings"`
	Profanity  []string         `json:"profanityFindings"`
	Language   LanguageResult   `json:"language"`
	Sentiment  SentimentResult  `json:"sentiment"`
	Urgency    UrgencyResult    `json:"urgency"`
}

// Detect runs every rule-based detector on text.
func Detect(text string) Signals {
	return Signals{
		Validation: Validate(text),
		PII:        DetectPII(text),
		Profanity:  DetectProfanity(text),
		Language:   DetectLanguage(text),
		Sentiment:  ExtractSentiment(text),
		Urgency:    ScoreUrgency(text),
	}
}

// NormalizeClassification enforces the record invariants on a classifier answer:
// vocabulary categories with the primary first, confidence in [0,1], non-empty reasoning.
func NormalizeClassification(c *domain.Classification) *domain.Classification {
	out := &domain.Classification{}
	if c != nil {
		out = c.Clone()
	}

	cats := domain.NormalizeCategories(domain.CategoryStrings(out.Categories))
	primary, ok := domain.ParseCategory(string(out.PrimaryCategory))
	if !ok {
		// only an unreadable primary is replaced; an answered Unknown stays
		primary = cats[0]
	}
	out.PrimaryCategory = primary
	out.Categories = domain.WithPrimaryFirst(primary, cats)

	switch {
	case math.IsNaN(out.Confidence):
		out.Confidence = DefaultConfidence
	case out.Confidence < 0:
		out.Confidence = 0
	case out.Confidence > 1:
		out.Confidence = 1
	}
	if strings.TrimSpace(out.Reasoning) == "" {
		out.Reasoning = DefaultReasoning
	}
	if out.Model == "" {
		out.Model = ModelMock
	}
	return out
}

// RecordInput is everything needed to compose one history entry.
type RecordInput struct {
	ID             string
	Message        string
	Classification *domain.Classification
	Signals        *Signals
	Now            time.Time
}

// ComposeRecord combines classifier output with the rule-based signals.
func ComposeRecord(r *Resolver, in RecordInput) domain.AnalysisRecord {
	cls := NormalizeClassification(in.Classification)
	sig := in.Signals
	if sig == nil {
		s := Detect(in.Message)
		sig = &s
	}
	id := in.ID
	if id == "" {
		id = uuid.NewString()
	}
	now := in.Now
	if now.IsZero() {
		now = time.Now()
	}

	urgency := sig.Urgency
	return domain.AnalysisRecord{
		ID:                   id,
		Message:              in.Message,
		Category:             cls.PrimaryCategory,
		Categories:           cls.Categories,
		Confidence:           cls.Confidence,
		Urgency:              urgency.Level,
		UrgencyScore:         urgency.Score,
		ExpectedResponseTime: urgency.ExpectedResponseTime,
		Sentiment:            sig.Sentiment.Sentiment,
		RecommendedAction:    r.RecommendedAction(cls.Categories, urgency.Level),
		RoutingDestination:   r.RoutingDestination(cls.Categories),
		Escalate:             ShouldEscalate(cls.PrimaryCategory, urgency.Level, in.Message),
		NeedsReview:          domain.NeedsReview(cls.Confidence, len(cls.Categories), len(sig.PII)),
		PIIFindings:          nonNil(sig.PII),
		ProfanityFindings:    nonNil(sig.Profanity),
		Language:             sig.Language.PrimaryLanguage,
		Reasoning:            cls.Reasoning,
		Timestamp:            domain.FormatTimestamp(now),
		Model:                cls.Model,
		LatencyMs:            cls.LatencyMs,
		Cached:               cls.Cached,
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
