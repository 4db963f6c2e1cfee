package domain

// ActionTemplate is the recommendation text for one category.
type ActionTemplate struct {
	Default string `json:"default"`
	High    string `json:"high,omitempty"`
}

// Settings holds the overridable recommendation and routing tables.
type Settings struct {
	Templates map[Category]ActionTemplate `json:"templates"`
	Routing   map[Category]string         `json:"routing"`
}

// DefaultTemplates returns a fresh copy of the built-in recommendations.
func DefaultTemplates() map[Category]ActionTemplate {
	return map[Category]ActionTemplate{
		CategoryBilling: {
			Default: "Verify billing status and guide the user to update payment details or view invoices.",
			High:    "Acknowledge impact, confirm billing status, and escalate to billing support immediately.",
		},
		CategoryTechnical: {
			Default: "Collect repro steps, check status page, and suggest basic troubleshooting.",
			High:    "Acknowledge impact and escalate to on-call engineering with repro details.",
		},
		CategoryOutage: {
			Default: "Confirm outage, share status page, and set expectations for updates.",
			High:    "Escalate to on-call immediately and broadcast incident status.",
		},
		CategoryAccountAccess: {
			Default: "Verify identity and guide through password reset or SSO troubleshooting.",
			High:    "Escalate to security support for urgent access restoration.",
		},
		CategoryGeneralInquiry: {Default: "Provide the most relevant FAQ or documentation link."},
		CategoryFeatureRequest: {Default: "Thank the user, capture the request, and share product roadmap expectations."},
		CategoryFeedback:       {Default: "Thank the user and optionally ask for a testimonial or review."},
		CategoryUnknown:        {Default: "Route for manual review."},
	}
}

// DefaultRouting returns a fresh copy of the built-in routing table.
func DefaultRouting() map[Category]string {
	return map[Category]string{
		CategoryBilling:        "Billing",
		CategoryTechnical:      "Support",
		CategoryOutage:         "On-call Engineering",
		CategoryAccountAccess:  "Security Support",
		CategoryFeatureRequest: "Product",
		CategoryGeneralInquiry: "Support",
		CategoryFeedback:       "Customer Success",
		CategoryUnknown:        "Support",
	}
}

// DefaultSettings returns the built-in settings.
func DefaultSettings() Settings {
	return Settings{Templates: DefaultTemplates(), Routing: DefaultRouting()}
}

// MergeOverDefaults layers stored entries over the built-ins key by key.
// Keys outside the vocabulary and blank values are ignored.
func MergeOverDefaults(stored Settings) Settings {
	out := DefaultSettings()
	for k, v := range stored.Templates {
		if !k.IsValid() || v.Default == "" {
			continue
		}
		out.Templates[k] = v
	}
	for k, v := range stored.Routing {
		if !k.IsValid() || v == "" {
			continue
		}
		out.Routing[k] = v
	}
	return out
}

// Clone deep-copies both maps.
func (s Settings) Clone() Settings {
	out := Settings{
		Templates: make(map[Category]ActionTemplate, len(s.Templates)),
		Routing:   make(map[Category]string, len(s.Routing)),
	}
	for k, v := range s.Templates {
		out.Templates[k] = v
	}
	for k, v := range s.Routing {
		out.Routing[k] = v
	}
	return out
}
