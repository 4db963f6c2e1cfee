package domain

import "strings"

// Category is one of the fixed support-message labels.
type Category string

const (
	CategoryBilling        Category = "Billing Issue"
	CategoryTechnical      Category = "Technical Problem"
	CategoryOutage         Category = "Outage"
	CategoryAccountAccess  Category = "Account Access"
	CategoryFeatureRequest Category = "Feature Request"
	CategoryGeneralInquiry Category = "General Inquiry"
	CategoryFeedback       Category = "Feedback/Praise"
	CategoryUnknown        Category = "Unknown"
)

// AllCategories lists the closed vocabulary in display order.
var AllCategories = []Category{
	CategoryBilling,
	CategoryTechnical,
	CategoryOutage,
	CategoryAccountAccess,
	CategoryFeatureRequest,
	CategoryGeneralInquiry,
	CategoryFeedback,
	CategoryUnknown,
}

// MaxCategories bounds the categories kept per record.
const MaxCategories = 3

var categoryAliases = map[string]Category{
	"billing":   CategoryBilling,
	"technical": CategoryTechnical,
	"outage":    CategoryOutage,
	"account":   CategoryAccountAccess,
	"feature":   CategoryFeatureRequest,
	"general":   CategoryGeneralInquiry,
	"feedback":  CategoryFeedback,
	"praise":    CategoryFeedback,
}

func (c Category) String() string { return string(c) }

// IsValid reports whether c is in the closed vocabulary.
func (c Category) IsValid() bool {
	for _, v := range AllCategories {
		if c == v {
			return true
		}
	}
	return false
}

// IsAllowed reports an exact match against the vocabulary.
func IsAllowed(s string) bool {
	return Category(s).IsValid()
}

// NormalizeCategory maps free text onto the vocabulary: exact, then
// case-insensitive, then leading-word alias, else Unknown.
func NormalizeCategory(s string) Category {
	c, _ := ParseCategory(s)
	return c
}

// ParseCategory is NormalizeCategory that also reports whether s named a
// category at all. A literal "Unknown" parses; unrecognized text does not.
func ParseCategory(s string) (Category, bool) {
	if c := Category(s); c.IsValid() {
		return c, true
	}
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return CategoryUnknown, false
	}
	for _, v := range AllCategories {
		if strings.EqualFold(trimmed, string(v)) {
			return v, true
		}
	}

	lower := strings.ToLower(trimmed)
	lead := lower
	if i := strings.IndexFunc(lower, func(r rune) bool { return r == ' ' || r == '/' || r == '-' || r == '_' }); i > 0 {
		lead = lower[:i]
	}
	if c, ok := categoryAliases[lead]; ok {
		return c, true
	}
	return CategoryUnknown, false
}

// NormalizeCategories normalizes, dedupes and caps a category list in order.
// Unrecognized entries are dropped; an explicit Unknown is kept.
func NormalizeCategories(in []string) []Category {
	out := make([]Category, 0, len(in))
	seen := make(map[Category]bool, len(in))
	for _, s := range in {
		c, ok := ParseCategory(s)
		if !ok || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
		if len(out) == MaxCategories {
			break
		}
	}
	if len(out) == 0 {
		return []Category{CategoryUnknown}
	}
	return out
}

// PrimaryCategory returns the first entry, or Unknown for an empty list.
func PrimaryCategory(cats []Category) Category {
	if len(cats) == 0 {
		return CategoryUnknown
	}
	return cats[0]
}

// CategoryStrings converts for JSON-facing payloads.
func CategoryStrings(cats []Category) []string {
	out := make([]string, len(cats))
	for i, c := range cats {
		out[i] = string(c)
	}
	return out
}

// WithPrimaryFirst returns cats reordered so primary leads, capped at MaxCategories.
func WithPrimaryFirst(primary Category, cats []Category) []Category {
	out := make([]Category, 0, MaxCategories)
	out = append(out, primary)
	for _, c := range cats {
		if c == primary {
			continue
		}
		if len(out) == MaxCategories {
			break
		}
		out = append(out, c)
	}
	return out
}
