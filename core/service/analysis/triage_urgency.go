package analysis

import (
	"math"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"triage_server/core/domain"
)

// =============================================================================
// Urgency Scoring
// =============================================================================
//
// The score is additive over weighted patterns, then adjusted by modifiers
// in a fixed order. The final score maps onto level and SLA through
// UrgencyForScore, so the level-only and detailed variants always agree.

// -----------------------------------------------------------------------------
// Modifier weights
// -----------------------------------------------------------------------------
const (
	PositiveWeight    = -15
	LowPriorityWeight = -20
	QuestionWeight    = -10
	ShoutingWeight    = 15
	ExclaimWeight     = 10 // per tier, tiers at 3 and 5
	NegationWeight    = -20

	MixedSignalFactor = 0.7

	shoutingMinLength = 20
)

// -----------------------------------------------------------------------------
// Thresholds
// -----------------------------------------------------------------------------
const (
	ThresholdHighCritical = 60
	ThresholdHigh         = 40
	ThresholdMedium       = 20
	ThresholdLowFloor     = -20

	SLA15Minutes = "15 minutes"
	SLA30Minutes = "30 minutes"
	SLA2Hours    = "2 hours"
	SLA4Hours    = "4 hours"
	SLA24Hours   = "24 hours"
	SLA48Hours   = "48 hours"
)

type weightedPattern struct {
	label   string
	weight  int
	pattern *regexp.Regexp
}

func wp(label string, weight int, expr string) weightedPattern {
	return weightedPattern{label: label, weight: weight, pattern: regexp.MustCompile(expr)}
}

// Patterns run against lowercased text.
var criticalPatterns = []weightedPattern{
	wp("outage", 60, `\boutages?\b`),
	wp("server down", 55, `\bservers?\s+(?:is\s+|are\s+)?down\b`),
	wp("system down", 50, `\b(?:system|site|service|platform|website|app|application)\s+(?:is\s+)?(?:completely\s+|totally\s+)?down\b`),
	wp("production down", 65, `\b(?:production|prod)\s+(?:is\s+)?(?:down|outage|broken)\b`),
	wp("database failure", 55, `\bdatabase\s+(?:is\s+)?(?:down|failure|failed|crashed|corrupt(?:ed)?)\b`),
	wp("connection lost", 40, `\b(?:connection\s+lost|lost\s+connection)\b`),
	wp("access denied", 40, `\baccess\s+denied\b`),
	wp("security breach", 70, `\b(?:security\s+breach|breach(?:ed)?)\b`),
	wp("data leak", 70, `\bdata\s+leak(?:ed|s)?\b`),
}

var urgentPatterns = []weightedPattern{
	wp("down", 30, `\bdown\b`),
	wp("crash", 30, `\bcrash(?:ed|es|ing)?\b`),
	wp("timeout", 20, `\btime(?:d|s)?\s?outs?\b`),
	wp("error", 20, `\berrors?\b`),
	wp("bug", 15, `\bbugs?\b`),
	wp("not working", 30, `\b(?:not|isn't|isnt|stopped)\s+working\b`),
	wp("broken", 25, `\bbroken\b`),
	wp("failed", 25, `\bfail(?:ed|ing|s|ures?)?\b`),
	wp("payment failed", 35, `\bpayments?\s+(?:failed|declined|failure|failing)\b`),
	wp("double charge", 35, `\b(?:double[\s-]?charged?|charged\s+(?:twice|double)|twice\s+charged)\b`),
	wp("refund", 15, `\brefunds?\b`),
	wp("urgent", 30, `\burgent(?:ly)?\b`),
	wp("asap", 25, `\basap\b`),
	wp("immediately", 25, `\bimmediately\b`),
	wp("critical", 30, `\bcritical\b`),
	wp("emergency", 40, `\bemergency\b`),
}

var positivePatterns = []weightedPattern{
	wp("thanks", PositiveWeight, `\bthank(?:s| you)?\b`),
	wp("appreciate", PositiveWeight, `\bappreciate[ds]?\b`),
	wp("love", PositiveWeight, `\blove[ds]?\b`),
	wp("great", PositiveWeight, `\bgreat\b`),
	wp("excellent", PositiveWeight, `\bexcellent\b`),
	wp("wonderful", PositiveWeight, `\bwonderful\b`),
	wp("awesome", PositiveWeight, `\bawesome\b`),
	wp("amazing", PositiveWeight, `\bamazing\b`),
	wp("happy", PositiveWeight, `\bhappy\b`),
	wp("pleased", PositiveWeight, `\bpleased\b`),
	wp("fantastic", PositiveWeight, `\bfantastic\b`),
}

var lowPriorityPatterns = []weightedPattern{
	wp("feature request", LowPriorityWeight, `\bfeature\s+requests?\b`),
	wp("would like to see", LowPriorityWeight, `\bwould\s+like\s+to\s+see\b`),
	wp("no rush", LowPriorityWeight, `\bno\s+rush\b`),
	wp("when you get a chance", LowPriorityWeight, `\bwhen\s+you\s+get\s+a\s+chance\b`),
	wp("could you add", LowPriorityWeight, `\bcould\s+you\s+(?:please\s+)?add\b`),
	wp("suggestion", LowPriorityWeight, `\bsuggestions?\b`),
	wp("enhancement", LowPriorityWeight, `\benhancements?\b`),
	wp("it would be nice", LowPriorityWeight, `\bit\s+would\s+be\s+(?:nice|great|cool)\b`),
	wp("nice to have", LowPriorityWeight, `\bnice\s+to\s+have\b`),
	wp("low priority", LowPriorityWeight, `\blow\s+priority\b`),
	wp("whenever possible", LowPriorityWeight, `\bwhenever\s+(?:you\s+)?(?:can|possible)\b`),
}

var negationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\bno\s+problems?\b`),
	regexp.MustCompile(`\ball\s+good\b`),
	regexp.MustCompile(`\bnot\s+(?:an?\s+)?urgent\b`),
	regexp.MustCompile(`\b(?:no|not|never|without)\s+(?:any\s+)?(?:errors?|bugs?|issues?|crash(?:es)?|problems?)\b`),
	regexp.MustCompile(`\bworking\s+(?:fine|great|perfectly)\b`),
	regexp.MustCompile(`\b(?:is|has\s+been|was|now)\s+(?:resolved|fixed)\b`),
}

// UrgencyResult is the detailed scorer output.
type UrgencyResult struct {
	Level                domain.Urgency          `json:"level"`
	Score                int                     `json:"score"`
	ExpectedResponseTime string                  `json:"expectedResponseTime"`
	MatchedKeywords      []domain.MatchedKeyword `json:"matchedKeywords"`
}

// UrgencyForScore is the fixed threshold table.
func UrgencyForScore(score int) (domain.Urgency, string) {
	switch {
	case score >= ThresholdHighCritical:
		return domain.UrgencyHigh, SLA15Minutes
	case score >= ThresholdHigh:
		return domain.UrgencyHigh, SLA30Minutes
	case score >= ThresholdMedium:
		return domain.UrgencyMedium, SLA2Hours
	case score > 0:
		return domain.UrgencyMedium, SLA4Hours
	case score > ThresholdLowFloor:
		return domain.UrgencyLow, SLA24Hours
	default:
		return domain.UrgencyLow, SLA48Hours
	}
}

// CalculateUrgency is the level-only variant of ScoreUrgency.
func CalculateUrgency(text string) domain.Urgency {
	return ScoreUrgency(text).Level
}

// ScoreUrgency scores text and explains which signals fired.
func ScoreUrgency(text string) UrgencyResult {
	lower := strings.ToLower(text)
	s := &urgencyScore{matched: []domain.MatchedKeyword{}}

	critical := s.apply(lower, criticalPatterns, domain.KeywordCritical)
	urgent := s.apply(lower, urgentPatterns, domain.KeywordUrgent)
	positive := s.apply(lower, positivePatterns, domain.KeywordPositive)
	s.apply(lower, lowPriorityPatterns, domain.KeywordLowPriority)

	if strings.Contains(text, "?") && critical == 0 && urgent == 0 {
		s.modify("question", QuestionWeight)
	}
	if isShouting(text) {
		s.modify("shouting", ShoutingWeight)
	}

	bangs := strings.Count(text, "!")
	if bangs >= 3 {
		s.modify("exclamation", ExclaimWeight)
	}
	if bangs >= 5 {
		s.modify("exclamation", ExclaimWeight)
	}

	if urgent > 0 && matchesAny(lower, negationPatterns) {
		s.modify("negation", NegationWeight)
	}

	if positive > 0 && urgent > 0 && critical == 0 {
		damped := int(math.Floor(float64(s.total) * MixedSignalFactor))
		s.modify("mixed-signal", damped-s.total)
	}

	level, sla := UrgencyForScore(s.total)
	return UrgencyResult{
		Level:                level,
		Score:                s.total,
		ExpectedResponseTime: sla,
		MatchedKeywords:      s.matched,
	}
}

type urgencyScore struct {
	total   int
	matched []domain.MatchedKeyword
}

// apply adds every matching pattern and returns the match count.
func (s *urgencyScore) apply(lower string, patterns []weightedPattern, kind domain.KeywordType) int {
	n := 0
	for _, p := range patterns {
		if !p.pattern.MatchString(lower) {
			continue
		}
		n++
		s.total += p.weight
		s.matched = append(s.matched, domain.MatchedKeyword{Keyword: p.label, Weight: p.weight, Type: kind})
	}
	return n
}

func (s *urgencyScore) modify(label string, weight int) {
	s.total += weight
	s.matched = append(s.matched, domain.MatchedKeyword{Keyword: label, Weight: weight, Type: domain.KeywordModifier})
}

func matchesAny(text string, patterns []*regexp.Regexp) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}

// isShouting: longer than 20 runes, has cased letters, none of them lowercase.
func isShouting(text string) bool {
	trimmed := strings.TrimSpace(text)
	if utf8.RuneCountInString(trimmed) <= shoutingMinLength {
		return false
	}
	upper := false
	for _, r := range trimmed {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) {
			upper = true
		}
	}
	return upper
}
