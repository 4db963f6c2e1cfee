package out

import (
	"context"

	"triage_server/core/domain"
)

// EscalationPublisher defines the outbound port for escalation events.
type EscalationPublisher interface {
	PublishEscalation(ctx context.Context, record *domain.AnalysisRecord) error
}

// NopEscalationPublisher drops every event.
type NopEscalationPublisher struct{}

func (NopEscalationPublisher) PublishEscalation(context.Context, *domain.AnalysisRecord) error {
	return nil
}
