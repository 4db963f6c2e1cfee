// Package triage runs the full analysis pipeline for one message or a batch.
package triage

import (
	"context"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/core/port/out"
	"triage_server/core/service/analysis"
	"triage_server/pkg/apperr"
	"triage_server/pkg/batch"

	"github.com/rs/zerolog"
)

type Config struct {
	BulkMax     int
	BulkWorkers int
}

// Service composes the classifier, the rule-based detectors and the history.
type Service struct {
	classifier in.ClassifierService
	history    in.HistoryService
	settings   in.SettingsService
	publisher  out.EscalationPublisher
	cfg        Config
	log        zerolog.Logger
	now        func() time.Time
}

var _ in.AnalysisService = (*Service)(nil)

// NewService wires the pipeline. A nil publisher disables escalation events.
func NewService(
	classifier in.ClassifierService,
	history in.HistoryService,
	settings in.SettingsService,
	publisher out.EscalationPublisher,
	cfg Config,
	log zerolog.Logger,
) *Service {
	if cfg.BulkMax <= 0 {
		cfg.BulkMax = 50
	}
	if cfg.BulkWorkers <= 0 {
		cfg.BulkWorkers = 8
	}
	if publisher == nil {
		publisher = out.NopEscalationPublisher{}
	}
	return &Service{
		classifier: classifier,
		history:    history,
		settings:   settings,
		publisher:  publisher,
		cfg:        cfg,
		log:        log.With().Str("component", "triage").Logger(),
		now:        time.Now,
	}
}

func (s *Service) Validate(message string) *in.ValidateResponse {
	return validateResponse(message, analysis.Detect(message))
}

func validateResponse(message string, sig analysis.Signals) *in.ValidateResponse {
	return &in.ValidateResponse{
		Valid:             sig.Validation.IsValid(),
		Errors:            sig.Validation.Errors,
		Warnings:          sig.Validation.Warnings,
		PIIFindings:       sig.PII,
		ProfanityFindings: sig.Profanity,
	}
}

// Analyze validates, classifies and records one message. A failed history write is logged, not returned.
func (s *Service) Analyze(ctx context.Context, message string) (*domain.AnalysisRecord, error) {
	sig := analysis.Detect(message)
	if !sig.Validation.IsValid() {
		return nil, apperr.ValidationFailed(sig.Validation.Errors, sig.Validation.Warnings)
	}

	resolver := s.resolver(ctx)
	rec, err := s.compose(ctx, resolver, message, &sig)
	if err != nil {
		return nil, err
	}

	if err := s.history.Append(ctx, *rec); err != nil {
		s.log.Warn().Err(err).Str("id", rec.ID).Bool("persisted", false).Msg("analysis not saved to history")
	}
	s.publish(ctx, rec)
	return rec, nil
}

// AnalyzeBulk analyzes 1..BulkMax messages concurrently and appends the valid ones in input order.
func (s *Service) AnalyzeBulk(ctx context.Context, messages []string) ([]in.BulkAnalysis, error) {
	if len(messages) == 0 || len(messages) > s.cfg.BulkMax {
		return nil, apperr.BatchSize(len(messages), s.cfg.BulkMax)
	}

	resolver := s.resolver(ctx)
	results := make([]in.BulkAnalysis, len(messages))
	err := batch.Run(ctx, s.cfg.BulkWorkers, messages, func(ctx context.Context, i int, msg string) {
		results[i].Index = i
		sig := analysis.Detect(msg)
		if !sig.Validation.IsValid() {
			results[i].Error = sig.Validation.Errors[0]
			results[i].Validation = validateResponse(msg, sig)
			return
		}
		rec, err := s.compose(ctx, resolver, msg, &sig)
		if err != nil {
			results[i].Error = err.Error()
			return
		}
		results[i].Record = rec
	})
	if err != nil {
		return nil, apperr.Internal("bulk analysis failed").WithError(err)
	}

	records := make([]domain.AnalysisRecord, 0, len(results))
	for _, r := range results {
		if r.Record != nil {
			records = append(records, *r.Record)
		}
	}
	if err := s.history.Append(ctx, records...); err != nil {
		s.log.Warn().Err(err).Int("count", len(records)).Bool("persisted", false).Msg("bulk analysis not saved to history")
	}
	for _, r := range results {
		if r.Record != nil {
			s.publish(ctx, r.Record)
		}
	}

	s.log.Info().Int("total", len(messages)).Int("recorded", len(records)).Msg("bulk analysis done")
	return results, nil
}

func (s *Service) compose(ctx context.Context, resolver *analysis.Resolver, message string, sig *analysis.Signals) (*domain.AnalysisRecord, error) {
	cls, err := s.classifier.Classify(ctx, message)
	if err != nil {
		return nil, err
	}
	rec := analysis.ComposeRecord(resolver, analysis.RecordInput{
		Message:        message,
		Classification: cls,
		Signals:        sig,
		Now:            s.now(),
	})
	return &rec, nil
}

// resolver uses the stored settings, or the defaults when the store is unavailable.
func (s *Service) resolver(ctx context.Context) *analysis.Resolver {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("settings unavailable, using defaults")
		return analysis.NewDefaultResolver()
	}
	return analysis.NewResolver(settings)
}

func (s *Service) publish(ctx context.Context, rec *domain.AnalysisRecord) {
	if !rec.Escalate {
		return
	}
	if err := s.publisher.PublishEscalation(ctx, rec); err != nil {
		s.log.Warn().Err(err).Str("id", rec.ID).Msg("escalation event not published")
	}
}
