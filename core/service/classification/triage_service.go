package classification

import (
	"context"
	"errors"
	"strings"
	"time"

	"triage_server/core/domain"
	"triage_server/core/port/in"
	"triage_server/core/port/out"
	"triage_server/core/service/analysis"
	"triage_server/pkg/apperr"
	"triage_server/pkg/batch"
	"triage_server/pkg/metrics"
	"triage_server/pkg/resilience"

	"github.com/rs/zerolog"
)

// MessageRequired is the error text for a missing message.
const MessageRequired = "Message is required."

var errEmptyClassification = errors.New("classifier returned no result")

// Config tunes the remote call and the bulk fan-out.
type Config struct {
	CacheTTL    time.Duration
	Retry       resilience.RetryConfig
	Breaker     resilience.BreakerConfig
	BulkMax     int
	BulkWorkers int
}

// DefaultConfig returns the production defaults.
func DefaultConfig() Config {
	return Config{
		CacheTTL:    10 * time.Minute,
		Retry:       resilience.DefaultRetryConfig(),
		Breaker:     resilience.DefaultBreakerConfig("classifier"),
		BulkMax:     50,
		BulkWorkers: 8,
	}
}

// Service classifies messages through cache, remote model and local fallback.
type Service struct {
	remote  out.Classifier
	cache   out.ClassificationCache
	breaker *resilience.Breaker
	metrics *metrics.ClassifierMetrics
	cfg     Config
	log     zerolog.Logger
}

var _ in.ClassifierService = (*Service)(nil)

// NewService wires the classifier. A nil remote runs every message through the local rules;
// a nil cache disables caching.
func NewService(remote out.Classifier, cache out.ClassificationCache, m *metrics.ClassifierMetrics, cfg Config, log zerolog.Logger) *Service {
	def := DefaultConfig()
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = def.CacheTTL
	}
	if cfg.BulkMax <= 0 {
		cfg.BulkMax = def.BulkMax
	}
	if cfg.BulkWorkers <= 0 {
		cfg.BulkWorkers = def.BulkWorkers
	}
	if cfg.Breaker.Name == "" {
		cfg.Breaker.Name = def.Breaker.Name
	}
	if m == nil {
		m = metrics.NewClassifierMetrics()
	}

	s := &Service{
		remote:  remote,
		cache:   cache,
		metrics: m,
		cfg:     cfg,
		log:     log.With().Str("component", "classifier").Logger(),
	}

	breakerCfg := cfg.Breaker
	breakerCfg.OnStateChange = func(name, from, to string) {
		s.log.Warn().Str("breaker", name).Str("from", from).Str("to", to).Msg("classifier breaker state changed")
	}
	s.breaker = resilience.NewBreaker(breakerCfg)
	return s
}

// RemoteEnabled reports whether a remote model is configured.
func (s *Service) RemoteEnabled() bool { return s.remote != nil }

// BreakerStats exposes the breaker counters for the metrics endpoint.
func (s *Service) BreakerStats() resilience.BreakerStats { return s.breaker.Stats() }

// Metrics returns the outcome counters.
func (s *Service) Metrics() *metrics.ClassifierMetrics { return s.metrics }

// Classify returns a cached answer, a remote answer, or the local fallback.
func (s *Service) Classify(ctx context.Context, message string) (*domain.Classification, error) {
	if message == "" {
		return nil, apperr.BadRequest(MessageRequired)
	}
	start := time.Now()
	key := CacheKey(message)

	if hit := s.cached(ctx, key); hit != nil {
		s.metrics.Observe(metrics.SourceCache, time.Since(start))
		return hit, nil
	}

	if s.remote == nil {
		result := ClassifyLocal(message)
		s.finish(result, start)
		s.store(ctx, key, result)
		s.metrics.Observe(metrics.SourceLocal, time.Since(start))
		return result, nil
	}

	result, err := s.callRemote(ctx, message)
	if err != nil {
		event := s.log.Warn()
		if resilience.IsBreakerError(err) {
			s.metrics.BreakerRejected()
			event = s.log.Debug()
		}
		event.Err(err).Str("message", analysis.LogSnippet(message)).Msg("remote classification failed, using local rules")

		fallback := ClassifyLocal(message)
		s.finish(fallback, start)
		s.metrics.Observe(metrics.SourceFallback, time.Since(start))
		return fallback, nil
	}

	s.finish(result, start)
	s.store(ctx, key, result)
	s.metrics.Observe(metrics.SourceRemote, time.Since(start))
	return result, nil
}

func (s *Service) callRemote(ctx context.Context, message string) (*domain.Classification, error) {
	var result *domain.Classification
	err := s.breaker.Execute(ctx, func(ctx context.Context) error {
		return resilience.Retry(ctx, s.cfg.Retry, func(ctx context.Context) error {
			r, err := s.remote.Classify(ctx, message)
			s.metrics.RemoteCall(err)
			if err != nil {
				return err
			}
			if r == nil {
				return errEmptyClassification
			}
			result = r
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// finish stamps the end-to-end latency on a freshly computed answer.
func (s *Service) finish(c *domain.Classification, start time.Time) {
	latency := time.Since(start).Milliseconds()
	c.LatencyMs = &latency
	c.Cached = false
}

func (s *Service) cached(ctx context.Context, key string) *domain.Classification {
	if s.cache == nil {
		return nil
	}
	hit, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Warn().Err(err).Msg("classification cache read failed")
		return nil
	}
	if !ok || hit == nil {
		return nil
	}
	out := hit.Clone()
	out.Cached = true
	return out
}

func (s *Service) store(ctx context.Context, key string, c *domain.Classification) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, c, s.cfg.CacheTTL); err != nil {
		s.log.Warn().Err(err).Msg("classification cache write failed")
	}
}

// ClassifyBulk classifies 1..BulkMax messages concurrently, keeping input order.
func (s *Service) ClassifyBulk(ctx context.Context, messages []string) ([]in.BulkClassification, error) {
	if len(messages) == 0 || len(messages) > s.cfg.BulkMax {
		return nil, apperr.BatchSize(len(messages), s.cfg.BulkMax)
	}

	results := make([]in.BulkClassification, len(messages))
	err := batch.Run(ctx, s.cfg.BulkWorkers, messages, func(ctx context.Context, i int, msg string) {
		results[i].Index = i
		if strings.TrimSpace(msg) == "" {
			results[i].Error = MessageRequired
			return
		}
		c, err := s.Classify(ctx, msg)
		if err != nil {
			results[i].Error = err.Error()
			return
		}
		results[i].Classification = c
	})
	if err != nil {
		return nil, apperr.Internal("bulk classification failed").WithError(err)
	}

	s.log.Debug().Int("count", len(messages)).Msg("bulk classification done")
	return results, nil
}
