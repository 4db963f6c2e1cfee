package analysis

import (
	"fmt"
	"testing"
	"time"

	"triage_server/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recOpt func(*domain.AnalysisRecord)

func record(id string, ts time.Time, urgency domain.Urgency, cat domain.Category, opts ...recOpt) domain.AnalysisRecord {
	r := domain.AnalysisRecord{
		ID:          id,
		Category:    cat,
		Categories:  []domain.Category{cat},
		Urgency:     urgency,
		Confidence:  0.8,
		Sentiment:   domain.SentimentNeutral,
		PIIFindings: []string{},
		Timestamp:   domain.FormatTimestamp(ts),
	}
	for _, o := range opts {
		o(&r)
	}
	return r
}

func TestComputeDashboard_Empty(t *testing.T) {
	d := ComputeDashboard(nil, fixedNow)

	assert.Equal(t, domain.DashboardStats{}, d.Stats)
	assert.NotNil(t, d.CategoryData)
	assert.Empty(t, d.CategoryData)
	assert.Equal(t, map[domain.Urgency]int{domain.UrgencyHigh: 0, domain.UrgencyMedium: 0, domain.UrgencyLow: 0}, d.UrgencyData)
	assert.Empty(t, d.SentimentData)
	assert.Empty(t, d.RecentHighUrgency)
	require.Len(t, d.WeeklyTrend, 7)
	for _, p := range d.WeeklyTrend {
		assert.Zero(t, p.Count)
	}
	assert.Len(t, d.Insights, 1)
}

func TestComputeDashboard_Populated(t *testing.T) {
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)
	history := []domain.AnalysisRecord{
		record("r1", now.Add(-2*time.Hour), domain.UrgencyHigh, domain.CategoryOutage, func(r *domain.AnalysisRecord) {
			r.Confidence = 0.9
			r.Escalate = true
			r.Sentiment = domain.SentimentUrgent
		}),
		record("r2", now.Add(-3*time.Hour), domain.UrgencyLow, domain.CategoryFeedback, func(r *domain.AnalysisRecord) {
			r.Confidence = 0.6
			r.Sentiment = domain.SentimentPositive
		}),
		record("r3", now.Add(-21*time.Hour), domain.UrgencyHigh, domain.CategoryOutage, func(r *domain.AnalysisRecord) {
			r.Confidence = 0.8
			r.NeedsReview = true
			r.Escalate = true
			r.PIIFindings = []string{FindingEmail}
			r.Sentiment = domain.SentimentFrustrated
		}),
		record("r4", time.Date(2026, 10, 10, 8, 0, 0, 0, time.UTC), domain.UrgencyMedium, domain.CategoryBilling, func(r *domain.AnalysisRecord) {
			r.Confidence = 0.5
			r.NeedsReview = true
		}),
	}

	d := ComputeDashboard(history, now)

	assert.Equal(t, domain.DashboardStats{
		Total:              4,
		Today:              2,
		HighUrgencyPercent: 50,
		NeedsReviewPercent: 50,
		EscalationRate:     50,
		AvgConfidence:      70,
		AvgPerDay:          1,
		PIIDetectedCount:   1,
	}, d.Stats)

	assert.Equal(t, []domain.CategoryCount{
		{Name: domain.CategoryOutage, Count: 2},
		{Name: domain.CategoryBilling, Count: 1},
		{Name: domain.CategoryFeedback, Count: 1},
	}, d.CategoryData)

	assert.Equal(t, map[domain.Urgency]int{domain.UrgencyHigh: 2, domain.UrgencyMedium: 1, domain.UrgencyLow: 1}, d.UrgencyData)
	assert.Equal(t, map[domain.Sentiment]int{
		domain.SentimentUrgent:     1,
		domain.SentimentPositive:   1,
		domain.SentimentFrustrated: 1,
		domain.SentimentNeutral:    1,
	}, d.SentimentData)

	require.Len(t, d.RecentHighUrgency, 2)
	assert.Equal(t, "r1", d.RecentHighUrgency[0].ID)
	assert.Equal(t, "r3", d.RecentHighUrgency[1].ID)

	require.Len(t, d.WeeklyTrend, 7)
	assert.Equal(t, domain.TrendPoint{Date: "2026-10-08", Label: "Thu"}, d.WeeklyTrend[0])
	assert.Equal(t, domain.TrendPoint{Date: "2026-10-10", Label: "Sat", Count: 1}, d.WeeklyTrend[2])
	assert.Equal(t, domain.TrendPoint{Date: "2026-10-13", Label: "Tue", Count: 1, HighCount: 1}, d.WeeklyTrend[5])
	assert.Equal(t, domain.TrendPoint{Date: "2026-10-14", Label: "Wed", Count: 2, HighCount: 1}, d.WeeklyTrend[6])

	assert.Len(t, d.Insights, 4)
}

func TestComputeDashboard_RecentHighLimit(t *testing.T) {
	var history []domain.AnalysisRecord
	for i := 0; i < 7; i++ {
		history = append(history, record(fmt.Sprintf("h%d", i), fixedNow.Add(time.Duration(i)*time.Minute), domain.UrgencyHigh, domain.CategoryOutage))
	}

	d := ComputeDashboard(history, fixedNow.Add(time.Hour))

	require.Len(t, d.RecentHighUrgency, 5)
	assert.Equal(t, "h6", d.RecentHighUrgency[0].ID)
	assert.Equal(t, "h2", d.RecentHighUrgency[4].ID)
}

func TestComputeDashboard_LocalCalendar(t *testing.T) {
	pst := time.FixedZone("PST", -8*3600)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, pst)
	// 06:00Z is 22:00 the previous evening in PST
	history := []domain.AnalysisRecord{
		record("late", time.Date(2026, 10, 14, 6, 0, 0, 0, time.UTC), domain.UrgencyLow, domain.CategoryGeneralInquiry),
	}

	d := ComputeDashboard(history, now)

	assert.Zero(t, d.Stats.Today)
	assert.Equal(t, 1, d.WeeklyTrend[5].Count)
	assert.Equal(t, "2026-10-13", d.WeeklyTrend[5].Date)
}

func TestComputeDashboard_IsPure(t *testing.T) {
	history := []domain.AnalysisRecord{
		record("a", fixedNow, domain.UrgencyHigh, domain.CategoryOutage),
		record("b", fixedNow, domain.UrgencyLow, domain.CategoryBilling),
	}
	before := append([]domain.AnalysisRecord(nil), history...)

	first := ComputeDashboard(history, fixedNow)
	second := ComputeDashboard(history, fixedNow)

	assert.Equal(t, first, second)
	assert.Equal(t, before, history)
}
