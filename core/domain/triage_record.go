package domain

import "time"

// TimestampLayout is the ISO-8601 form stored on records.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Classification is the classifier's answer for one message.
type Classification struct {
	PrimaryCategory Category   `json:"primaryCategory"`
	Categories      []Category `json:"categories"`
	Confidence      float64    `json:"confidence"`
	Reasoning       string     `json:"reasoning"`
	Model           string     `json:"model"`
	LatencyMs       *int64     `json:"latencyMs"`
	Cached          bool       `json:"cached"`
}

// Clone returns a copy that does not share the categories slice.
func (c *Classification) Clone() *Classification {
	if c == nil {
		return nil
	}
	out := *c
	out.Categories = append([]Category(nil), c.Categories...)
	if c.LatencyMs != nil {
		v := *c.LatencyMs
		out.LatencyMs = &v
	}
	return &out
}

// AnalysisRecord is one entry of the triage history. It is never mutated after creation.
type AnalysisRecord struct {
	ID                   string     `json:"id"`
	Message              string     `json:"message"`
	Category             Category   `json:"category"`
	Categories           []Category `json:"categories"`
	Confidence           float64    `json:"confidence"`
	Urgency              Urgency    `json:"urgency"`
	UrgencyScore         int        `json:"urgencyScore"`
	ExpectedResponseTime string     `json:"expectedResponseTime"`
	Sentiment            Sentiment  `json:"sentiment"`
	RecommendedAction    string     `json:"recommendedAction"`
	RoutingDestination   string     `json:"routingDestination"`
	Escalate             bool       `json:"escalate"`
	NeedsReview          bool       `json:"needsReview"`
	PIIFindings          []string   `json:"piiFindings"`
	ProfanityFindings    []string   `json:"profanityFindings"`
	Language             string     `json:"language,omitempty"`
	Reasoning            string     `json:"reasoning"`
	Timestamp            string     `json:"timestamp"`
	Model                string     `json:"model"`
	LatencyMs            *int64     `json:"latencyMs"`
	Cached               bool       `json:"cached"`
}

// Time parses Timestamp. ok is false for records with an unparseable timestamp.
func (r *AnalysisRecord) Time() (time.Time, bool) {
	if r.Timestamp == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, r.Timestamp)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// FormatTimestamp renders t the way records store it.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// NeedsReview is the review rule shared by every record constructor.
func NeedsReview(confidence float64, categories int, piiFindings int) bool {
	return confidence < 0.6 || categories > 1 || piiFindings > 0
}
