package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"Billing Issue", CategoryBilling},
		{"billing issue", CategoryBilling},
		{"  OUTAGE ", CategoryOutage},
		{"Billing", CategoryBilling},
		{"Technical", CategoryTechnical},
		{"technical-issue", CategoryTechnical},
		{"General", CategoryGeneralInquiry},
		{"Feedback", CategoryFeedback},
		{"praise", CategoryFeedback},
		{"feedback/praise", CategoryFeedback},
		{"Account locked", CategoryAccountAccess},
		{"Sales", CategoryUnknown},
		{"", CategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeCategory(tt.in))
		})
	}
}

func TestNormalizeCategories(t *testing.T) {
	t.Run("dedupes and drops unknown", func(t *testing.T) {
		got := NormalizeCategories([]string{"Billing Issue", "nonsense", "billing", "Outage"})
		assert.Equal(t, []Category{CategoryBilling, CategoryOutage}, got)
	})

	t.Run("keeps explicit unknown in order", func(t *testing.T) {
		got := NormalizeCategories([]string{"Unknown", "Outage"})
		assert.Equal(t, []Category{CategoryUnknown, CategoryOutage}, got)
		assert.Equal(t, CategoryUnknown, PrimaryCategory(got))
	})

	t.Run("empty becomes unknown", func(t *testing.T) {
		assert.Equal(t, []Category{CategoryUnknown}, NormalizeCategories(nil))
		assert.Equal(t, []Category{CategoryUnknown}, NormalizeCategories([]string{"???"}))
	})

	t.Run("caps at three", func(t *testing.T) {
		got := NormalizeCategories([]string{"Outage", "Billing", "Technical", "Feature"})
		assert.Len(t, got, MaxCategories)
	})
}

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in     string
		want   Category
		wantOK bool
	}{
		{"Unknown", CategoryUnknown, true},
		{"unknown", CategoryUnknown, true},
		{"Outage", CategoryOutage, true},
		{"billing problem", CategoryBilling, true},
		{"???", CategoryUnknown, false},
		{"  ", CategoryUnknown, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseCategory(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantOK, ok)
		})
	}
}

func TestWithPrimaryFirst(t *testing.T) {
	got := WithPrimaryFirst(CategoryOutage, []Category{CategoryTechnical, CategoryOutage, CategoryBilling, CategoryFeedback})
	assert.Equal(t, []Category{CategoryOutage, CategoryTechnical, CategoryBilling}, got)

	assert.Equal(t, []Category{CategoryUnknown}, WithPrimaryFirst(CategoryUnknown, nil))
}

func TestMergeOverDefaults(t *testing.T) {
	stored := Settings{
		Templates: map[Category]ActionTemplate{
			CategoryBilling:     {Default: "custom billing"},
			Category("Finance"): {Default: "ignored"},
			CategoryOutage:      {},
		},
		Routing: map[Category]string{CategoryOutage: "SRE"},
	}

	got := MergeOverDefaults(stored)

	assert.Equal(t, "custom billing", got.Templates[CategoryBilling].Default)
	assert.Empty(t, got.Templates[CategoryBilling].High)
	assert.Equal(t, DefaultTemplates()[CategoryOutage], got.Templates[CategoryOutage])
	assert.NotContains(t, got.Templates, Category("Finance"))
	assert.Equal(t, "SRE", got.Routing[CategoryOutage])
	assert.Equal(t, "Billing", got.Routing[CategoryBilling])
	assert.Len(t, got.Templates, len(AllCategories))
}

func TestNeedsReview(t *testing.T) {
	assert.True(t, NeedsReview(0.59, 1, 0))
	assert.True(t, NeedsReview(0.9, 2, 0))
	assert.True(t, NeedsReview(0.9, 1, 1))
	assert.False(t, NeedsReview(0.6, 1, 0))
}
