package domain

// DashboardStats is the headline block of the dashboard.
type DashboardStats struct {
	Total              int `json:"total"`
	Today              int `json:"today"`
	HighUrgencyPercent int `json:"highUrgencyPercent"`
	NeedsReviewPercent int `json:"needsReviewPercent"`
	EscalationRate     int `json:"escalationRate"`
	AvgConfidence      int `json:"avgConfidence"`
	AvgPerDay          int `json:"avgPerDay"`
	PIIDetectedCount   int `json:"piiDetectedCount"`
}

// CategoryCount is one bar of the category distribution.
type CategoryCount struct {
	Name  Category `json:"name"`
	Count int      `json:"count"`
}

// TrendPoint is one day of the weekly trend.
type TrendPoint struct {
	Date      string `json:"date"`
	Label     string `json:"label"`
	Count     int    `json:"count"`
	HighCount int    `json:"highCount"`
}

// Dashboard is the aggregate view recomputed from the full history.
type Dashboard struct {
	Stats             DashboardStats    `json:"stats"`
	CategoryData      []CategoryCount   `json:"categoryData"`
	UrgencyData       map[Urgency]int   `json:"urgencyData"`
	SentimentData     map[Sentiment]int `json:"sentimentData"`
	RecentHighUrgency []AnalysisRecord  `json:"recentHighUrgency"`
	WeeklyTrend       []TrendPoint      `json:"weeklyTrend"`
	Insights          []string          `json:"insights"`
}
