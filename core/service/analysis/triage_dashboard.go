package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"triage_server/core/domain"
)

const (
	recentHighLimit = 5
	trendDays       = 7
	dayLayout       = "2006-01-02"
)

// ComputeDashboard folds the history into dashboard statistics. It is pure;
// calendar days are taken in now's location.
func ComputeDashboard(history []domain.AnalysisRecord, now time.Time) domain.Dashboard {
	loc := now.Location()
	today := now.Format(dayLayout)

	d := domain.Dashboard{
		CategoryData: []domain.CategoryCount{},
		UrgencyData: map[domain.Urgency]int{
			domain.UrgencyHigh:   0,
			domain.UrgencyMedium: 0,
			domain.UrgencyLow:    0,
		},
		SentimentData:     map[domain.Sentiment]int{},
		RecentHighUrgency: []domain.AnalysisRecord{},
	}

	total := len(history)
	var high, review, escalated, pii int
	var confidenceSum float64
	categories := map[domain.Category]int{}
	days := map[string]bool{}
	perDay := map[string]*domain.TrendPoint{}
	var highRecords []timedRecord

	for i := range history {
		rec := &history[i]
		categories[domain.NormalizeCategory(string(rec.Category))]++
		if rec.Urgency.IsValid() {
			d.UrgencyData[rec.Urgency]++
		}
		if rec.Sentiment != "" {
			d.SentimentData[rec.Sentiment]++
		}
		confidenceSum += rec.Confidence
		if rec.NeedsReview {
			review++
		}
		if rec.Escalate {
			escalated++
		}
		if len(rec.PIIFindings) > 0 {
			pii++
		}

		ts, ok := rec.Time()
		if ok {
			day := ts.In(loc).Format(dayLayout)
			days[day] = true
			if day == today {
				d.Stats.Today++
			}
			p := perDay[day]
			if p == nil {
				p = &domain.TrendPoint{}
				perDay[day] = p
			}
			p.Count++
			if rec.Urgency == domain.UrgencyHigh {
				p.HighCount++
			}
		}
		if rec.Urgency == domain.UrgencyHigh {
			high++
			highRecords = append(highRecords, timedRecord{rec: rec, ts: ts, idx: i})
		}
	}

	d.Stats.Total = total
	d.Stats.HighUrgencyPercent = percent(high, total)
	d.Stats.NeedsReviewPercent = percent(review, total)
	d.Stats.EscalationRate = percent(escalated, total)
	d.Stats.PIIDetectedCount = pii
	if total > 0 {
		d.Stats.AvgConfidence = int(math.Round(100 * confidenceSum / float64(total)))
		distinct := len(days)
		if distinct < 1 {
			distinct = 1
		}
		d.Stats.AvgPerDay = int(math.Round(float64(total) / float64(distinct)))
	}

	for c, n := range categories {
		d.CategoryData = append(d.CategoryData, domain.CategoryCount{Name: c, Count: n})
	}
	sort.Slice(d.CategoryData, func(i, j int) bool {
		if d.CategoryData[i].Count != d.CategoryData[j].Count {
			return d.CategoryData[i].Count > d.CategoryData[j].Count
		}
		return d.CategoryData[i].Name < d.CategoryData[j].Name
	})

	// newest first; records without a timestamp sort last, later insertions first
	sort.SliceStable(highRecords, func(i, j int) bool {
		if !highRecords[i].ts.Equal(highRecords[j].ts) {
			return highRecords[i].ts.After(highRecords[j].ts)
		}
		return highRecords[i].idx > highRecords[j].idx
	})
	for i := 0; i < len(highRecords) && i < recentHighLimit; i++ {
		d.RecentHighUrgency = append(d.RecentHighUrgency, *highRecords[i].rec)
	}

	d.WeeklyTrend = weeklyTrend(now, perDay)
	d.Insights = Insights(d.Stats)
	return d
}

type timedRecord struct {
	rec *domain.AnalysisRecord
	ts  time.Time
	idx int
}

func weeklyTrend(now time.Time, perDay map[string]*domain.TrendPoint) []domain.TrendPoint {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	out := make([]domain.TrendPoint, 0, trendDays)
	for i := trendDays - 1; i >= 0; i-- {
		day := midnight.AddDate(0, 0, -i)
		key := day.Format(dayLayout)
		p := domain.TrendPoint{Date: key, Label: day.Format("Mon")}
		if got := perDay[key]; got != nil {
			p.Count = got.Count
			p.HighCount = got.HighCount
		}
		out = append(out, p)
	}
	return out
}

func percent(n, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(n) / float64(total)))
}

// Insights turns headline stats into operator hints.
func Insights(s domain.DashboardStats) []string {
	out := []string{}
	if s.Total == 0 {
		return append(out, "Start by analyzing some messages to see insights here.")
	}
	if s.HighUrgencyPercent > 30 {
		out = append(out, fmt.Sprintf("High urgency messages represent %d%% of total volume - consider additional support resources.", s.HighUrgencyPercent))
	}
	if s.NeedsReviewPercent > 40 {
		out = append(out, fmt.Sprintf("%d%% of messages need manual review - consider improving categorization rules.", s.NeedsReviewPercent))
	}
	if s.AvgConfidence < 60 {
		out = append(out, fmt.Sprintf("Average confidence is %d%% - classifier responses may need prompt tuning.", s.AvgConfidence))
	}
	if s.PIIDetectedCount > 0 {
		out = append(out, fmt.Sprintf("PII detected in %d message(s) - ensure proper data handling.", s.PIIDetectedCount))
	}
	if s.EscalationRate > 25 {
		out = append(out, fmt.Sprintf("Escalation rate is %d%% - review escalation criteria or add more specialists.", s.EscalationRate))
	}
	if s.Today > 10 {
		out = append(out, fmt.Sprintf("High activity today with %d messages analyzed.", s.Today))
	}
	return out
}
