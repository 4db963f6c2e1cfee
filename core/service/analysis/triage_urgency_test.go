package analysis

import (
	"testing"

	"triage_server/core/domain"

	"github.com/stretchr/testify/assert"
)

func TestScoreUrgency(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantLevel domain.Urgency
		wantScore int
		wantSLA   string
	}{
		{"system down shout", "URGENT: Our entire system is down!", domain.UrgencyHigh, 110, SLA15Minutes},
		{"feature question", "Could you add dark mode?", domain.UrgencyLow, -30, SLA48Hours},
		{"praise", "Thank you, love your product!", domain.UrgencyLow, -30, SLA48Hours},
		{"single thanks", "Thanks for your product!", domain.UrgencyLow, -15, SLA24Hours},
		{"emergency", "EMERGENCY", domain.UrgencyHigh, 40, SLA30Minutes},
		{"crash", "The app crashed when I opened settings", domain.UrgencyMedium, 30, SLA2Hours},
		{"small bug", "I found a small bug in the footer", domain.UrgencyMedium, 15, SLA4Hours},
		{"neutral", "How do I export my data", domain.UrgencyLow, 0, SLA24Hours},
		{"bare question", "How do I change my email?", domain.UrgencyLow, -10, SLA24Hours},
		{"shouting", "MY ACCOUNT IS LOCKED AND I HATE THIS", domain.UrgencyMedium, 15, SLA4Hours},
		{"three bangs", "Please respond!!!", domain.UrgencyMedium, 10, SLA4Hours},
		{"five bangs", "Please respond!!!!!", domain.UrgencyMedium, 20, SLA2Hours},
		{"negated error", "No errors so far, everything is working fine", domain.UrgencyLow, 0, SLA24Hours},
		{"mixed signal", "Thanks, but the export is broken", domain.UrgencyMedium, 7, SLA4Hours},
		{"critical beats mixed", "Thanks team, but we have an outage", domain.UrgencyHigh, 45, SLA30Minutes},
		{"production down", "production is down right now", domain.UrgencyHigh, 95, SLA15Minutes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ScoreUrgency(tt.input)
			assert.Equal(t, tt.wantScore, res.Score, "%+v", res.MatchedKeywords)
			assert.Equal(t, tt.wantLevel, res.Level)
			assert.Equal(t, tt.wantSLA, res.ExpectedResponseTime)
		})
	}
}

func TestScoreUrgency_MatchedKeywords(t *testing.T) {
	res := ScoreUrgency("URGENT: Our entire system is down!")

	assert.Contains(t, res.MatchedKeywords, domain.MatchedKeyword{Keyword: "system down", Weight: 50, Type: domain.KeywordCritical})
	assert.Contains(t, res.MatchedKeywords, domain.MatchedKeyword{Keyword: "urgent", Weight: 30, Type: domain.KeywordUrgent})
	assert.Contains(t, res.MatchedKeywords, domain.MatchedKeyword{Keyword: "down", Weight: 30, Type: domain.KeywordUrgent})

	q := ScoreUrgency("How do I change my email?")
	assert.Equal(t, []domain.MatchedKeyword{{Keyword: "question", Weight: QuestionWeight, Type: domain.KeywordModifier}}, q.MatchedKeywords)
}

func TestScoreUrgency_LevelFollowsScore(t *testing.T) {
	inputs := []string{
		"URGENT: Our entire system is down!",
		"Could you add dark mode?",
		"Payment failed twice and I was double charged, need a refund ASAP",
		"Security breach detected, data leaked!!!!!",
		"",
		"just saying hi",
	}
	for _, in := range inputs {
		res := ScoreUrgency(in)
		level, sla := UrgencyForScore(res.Score)
		assert.Equal(t, level, res.Level, in)
		assert.Equal(t, sla, res.ExpectedResponseTime, in)
		assert.True(t, res.Level.IsValid())
		assert.Equal(t, res.Level, CalculateUrgency(in))
		assert.Equal(t, res, ScoreUrgency(in), "idempotent")
	}
}

func TestUrgencyForScore(t *testing.T) {
	tests := []struct {
		score int
		level domain.Urgency
		sla   string
	}{
		{200, domain.UrgencyHigh, SLA15Minutes},
		{60, domain.UrgencyHigh, SLA15Minutes},
		{59, domain.UrgencyHigh, SLA30Minutes},
		{40, domain.UrgencyHigh, SLA30Minutes},
		{39, domain.UrgencyMedium, SLA2Hours},
		{20, domain.UrgencyMedium, SLA2Hours},
		{19, domain.UrgencyMedium, SLA4Hours},
		{1, domain.UrgencyMedium, SLA4Hours},
		{0, domain.UrgencyLow, SLA24Hours},
		{-19, domain.UrgencyLow, SLA24Hours},
		{-20, domain.UrgencyLow, SLA48Hours},
		{-100, domain.UrgencyLow, SLA48Hours},
	}
	for _, tt := range tests {
		level, sla := UrgencyForScore(tt.score)
		assert.Equal(t, tt.level, level, tt.score)
		assert.Equal(t, tt.sla, sla, tt.score)
	}
}
