package analysis

import (
	"strings"

	"triage_server/core/domain"
)

var (
	positiveWords = []string{
		"thank", "appreciate", "love", "great", "excellent", "awesome",
		"amazing", "happy", "wonderful", "fantastic", "pleased", "helpful",
	}
	negativeWords = []string{
		"frustrat", "disappoint", "angry", "annoy", "terrible", "awful", "horrible",
		"worst", "unacceptable", "upset", "poor", "useless", "ridiculous",
	}
	urgentWords = []string{
		"urgent", "asap", "immediately", "emergency", "critical", "right now", "as soon as possible",
	}
)

// SentimentResult carries the verdict and the raw lexicon counts.
type SentimentResult struct {
	Sentiment     domain.Sentiment `json:"sentiment"`
	PositiveCount int              `json:"positiveCount"`
	NegativeCount int              `json:"negativeCount"`
	UrgentCount   int              `json:"urgentCount"`
}

// ExtractSentiment counts lexicon substrings; urgency words override the tone.
func ExtractSentiment(text string) SentimentResult {
	lower := strings.ToLower(text)
	res := SentimentResult{
		PositiveCount: countAll(lower, positiveWords),
		NegativeCount: countAll(lower, negativeWords),
		UrgentCount:   countAll(lower, urgentWords),
	}

	switch {
	case res.PositiveCount > res.NegativeCount && res.PositiveCount > 0:
		res.Sentiment = domain.SentimentPositive
	case res.NegativeCount > res.PositiveCount && res.NegativeCount > 0:
		res.Sentiment = domain.SentimentNegative
	default:
		res.Sentiment = domain.SentimentNeutral
	}

	if res.UrgentCount > 0 {
		if res.NegativeCount > 0 {
			res.Sentiment = domain.SentimentFrustrated
		} else {
			res.Sentiment = domain.SentimentUrgent
		}
	}
	return res
}

func countAll(lower string, words []string) int {
	n := 0
	for _, w := range words {
		n += strings.Count(lower, w)
	}
	return n
}
