package domain

// Urgency is the three-level urgency label derived from a score.
type Urgency string

const (
	UrgencyHigh   Urgency = "High"
	UrgencyMedium Urgency = "Medium"
	UrgencyLow    Urgency = "Low"
)

func (u Urgency) IsValid() bool {
	return u == UrgencyHigh || u == UrgencyMedium || u == UrgencyLow
}

// ParseUrgency accepts the canonical labels; anything else is Low.
func ParseUrgency(s string) Urgency {
	switch Urgency(s) {
	case UrgencyHigh, UrgencyMedium:
		return Urgency(s)
	}
	return UrgencyLow
}

// Sentiment is the lexicon-based tone of a message.
type Sentiment string

const (
	SentimentPositive   Sentiment = "positive"
	SentimentNegative   Sentiment = "negative"
	SentimentNeutral    Sentiment = "neutral"
	SentimentUrgent     Sentiment = "urgent"
	SentimentFrustrated Sentiment = "frustrated"
)

// KeywordType tags a scorer match.
type KeywordType string

const (
	KeywordCritical    KeywordType = "critical"
	KeywordUrgent      KeywordType = "urgent"
	KeywordPositive    KeywordType = "positive"
	KeywordLowPriority KeywordType = "low-priority"
	KeywordModifier    KeywordType = "modifier"
)

// MatchedKeyword is one signal that contributed to an urgency score.
type MatchedKeyword struct {
	Keyword string      `json:"keyword"`
	Weight  int         `json:"weight"`
	Type    KeywordType `json:"type"`
}
