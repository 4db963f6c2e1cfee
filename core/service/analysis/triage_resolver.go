package analysis

import (
	"strings"

	"triage_server/core/domain"
)

const (
	NoRecommendation = "No recommendation available."
	DefaultRouting   = "Support"
)

// escalationIndicators is kept apart from the urgency scorer's critical list.
var escalationIndicators = []string{
	"outage",
	"down",
	"breach",
	"security",
	"cannot access",
	"can't access",
	"locked out",
	"payment failed",
	"database",
	"production",
}

// Resolver maps categories and urgency onto actions and routing using one settings snapshot.
type Resolver struct {
	settings domain.Settings
}

// NewResolver merges settings over the built-in defaults.
func NewResolver(settings domain.Settings) *Resolver {
	return &Resolver{settings: domain.MergeOverDefaults(settings)}
}

// NewDefaultResolver uses the built-in tables only.
func NewDefaultResolver() *Resolver {
	return &Resolver{settings: domain.DefaultSettings()}
}

// Settings returns a copy of the resolver's tables.
func (r *Resolver) Settings() domain.Settings {
	return r.settings.Clone()
}

// RecommendedAction picks the high template for High urgency when one is set.
func (r *Resolver) RecommendedAction(categories []domain.Category, urgency domain.Urgency) string {
	tpl, ok := r.template(domain.PrimaryCategory(categories))
	if !ok {
		return NoRecommendation
	}
	if urgency == domain.UrgencyHigh && tpl.High != "" {
		return tpl.High
	}
	if tpl.Default == "" {
		return NoRecommendation
	}
	return tpl.Default
}

func (r *Resolver) template(c domain.Category) (domain.ActionTemplate, bool) {
	if tpl, ok := r.settings.Templates[c]; ok {
		return tpl, true
	}
	tpl, ok := r.settings.Templates[domain.CategoryUnknown]
	return tpl, ok
}

// RoutingDestination falls back to the Unknown team, then to Support.
func (r *Resolver) RoutingDestination(categories []domain.Category) string {
	c := domain.PrimaryCategory(categories)
	if team := r.settings.Routing[c]; team != "" {
		return team
	}
	if team := r.settings.Routing[domain.CategoryUnknown]; team != "" {
		return team
	}
	return DefaultRouting
}

// ShouldEscalate flags High urgency, outage and access categories, and critical phrases.
func ShouldEscalate(category domain.Category, urgency domain.Urgency, text string) bool {
	if urgency == domain.UrgencyHigh {
		return true
	}
	if category == domain.CategoryOutage || category == domain.CategoryAccountAccess {
		return true
	}
	lower := strings.ToLower(text)
	for _, ind := range escalationIndicators {
		if strings.Contains(lower, ind) {
			return true
		}
	}
	return false
}
