// Package messaging provides message queue adapters.
package messaging

import (
	"context"
	"fmt"
	"strconv"

	"triage_server/core/domain"
	"triage_server/core/port/out"
	"triage_server/core/service/analysis"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// DefaultStreamMaxLen caps the escalation stream (approximate trim).
const DefaultStreamMaxLen = 10000

// EscalationProducer implements out.EscalationPublisher using a Redis Stream.
type EscalationProducer struct {
	client redis.UniversalClient
	stream string
	maxLen int64
	log    zerolog.Logger
}

var _ out.EscalationPublisher = (*EscalationProducer)(nil)

func NewEscalationProducer(client redis.UniversalClient, stream string, log zerolog.Logger) *EscalationProducer {
	return &EscalationProducer{
		client: client,
		stream: stream,
		maxLen: DefaultStreamMaxLen,
		log:    log.With().Str("component", "escalation_producer").Logger(),
	}
}

// PublishEscalation appends one entry. The payload is the record with PII masked.
func (p *EscalationProducer) PublishEscalation(ctx context.Context, rec *domain.AnalysisRecord) error {
	values, err := escalationValues(rec)
	if err != nil {
		return err
	}

	id, err := p.client.XAdd(ctx, &redis.XAddArgs{
		Stream: p.stream,
		MaxLen: p.maxLen,
		Approx: true,
		ID:     "*",
		Values: values,
	}).Result()
	if err != nil {
		return fmt.Errorf("failed to publish to %s: %w", p.stream, err)
	}

	p.log.Debug().Str("stream", p.stream).Str("entry", id).Str("record", rec.ID).Msg("escalation published")
	return nil
}

func escalationValues(rec *domain.AnalysisRecord) (map[string]interface{}, error) {
	redacted := analysis.RedactRecords([]domain.AnalysisRecord{*rec})[0]
	payload, err := json.Marshal(redacted)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal escalation: %w", err)
	}
	return map[string]interface{}{
		"id":        rec.ID,
		"category":  string(rec.Category),
		"urgency":   string(rec.Urgency),
		"routing":   rec.RoutingDestination,
		"score":     strconv.Itoa(rec.UrgencyScore),
		"timestamp": rec.Timestamp,
		"payload":   string(payload),
	}, nil
}
