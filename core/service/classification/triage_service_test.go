package classification

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"triage_server/core/domain"
	"triage_server/pkg/apperr"
	"triage_server/pkg/cache"
	"triage_server/pkg/metrics"
	"triage_server/pkg/resilience"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubClassifier struct {
	calls  atomic.Int32
	err    error
	result domain.Classification
}

func (s *stubClassifier) Classify(_ context.Context, _ string) (*domain.Classification, error) {
	s.calls.Add(1)
	if s.err != nil {
		return nil, s.err
	}
	out := s.result
	out.Categories = append([]domain.Category(nil), s.result.Categories...)
	return &out, nil
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Retry = resilience.RetryConfig{Retries: 2, Base: time.Millisecond}
	return cfg
}

func newTestService(t *testing.T, remote *stubClassifier, cfg Config) *Service {
	t.Helper()
	l1 := cache.NewL1Cache(cache.L1Config{MaxItems: 100, CleanupInterval: -1})
	t.Cleanup(l1.Close)
	c := NewTieredClassificationCache(cache.NewTieredCache(l1, nil))
	if remote == nil {
		return NewService(nil, c, metrics.NewClassifierMetrics(), cfg, zerolog.Nop())
	}
	return NewService(remote, c, metrics.NewClassifierMetrics(), cfg, zerolog.Nop())
}

func TestClassifyLocal(t *testing.T) {
	tests := []struct {
		message    string
		category   domain.Category
		confidence float64
	}{
		{"Production database is down!", domain.CategoryOutage, 0.7},
		{"I forgot my password", domain.CategoryAccountAccess, 0.65},
		{"Where is my refund?", domain.CategoryBilling, 0.6},
		{"Could you add dark mode?", domain.CategoryFeatureRequest, 0.55},
		{"Thank you so much", domain.CategoryFeedback, 0.6},
		{"The export is not working", domain.CategoryTechnical, 0.6},
		{"What are your hours?", domain.CategoryGeneralInquiry, 0.45},
		{"Login error after the outage", domain.CategoryOutage, 0.7},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			got := ClassifyLocal(tt.message)
			assert.Equal(t, tt.category, got.PrimaryCategory)
			assert.Equal(t, []domain.Category{tt.category}, got.Categories)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, ModelLocal, got.Model)
			assert.NotEmpty(t, got.Reasoning)
		})
	}
}

func TestCacheKey(t *testing.T) {
	assert.Equal(t, "my invoice", CacheKey("  My Invoice \n"))
}

func TestService_LocalModeCaches(t *testing.T) {
	svc := newTestService(t, nil, testConfig())
	ctx := context.Background()
	assert.False(t, svc.RemoteEnabled())

	first, err := svc.Classify(ctx, "I need a refund")
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryBilling, first.PrimaryCategory)
	assert.False(t, first.Cached)
	require.NotNil(t, first.LatencyMs)

	second, err := svc.Classify(ctx, "  i need a REFUND ")
	require.NoError(t, err)
	assert.True(t, second.Cached)
	assert.Equal(t, *first.LatencyMs, *second.LatencyMs)
	assert.Equal(t, int64(1), svc.Metrics().Snapshot().CacheHits)
}

func TestService_RemoteSuccess(t *testing.T) {
	remote := &stubClassifier{result: domain.Classification{
		PrimaryCategory: domain.CategoryOutage,
		Categories:      []domain.Category{domain.CategoryOutage},
		Confidence:      0.93,
		Reasoning:       "Down.",
		Model:           "llama",
	}}
	svc := newTestService(t, remote, testConfig())
	ctx := context.Background()

	got, err := svc.Classify(ctx, "site is down")
	require.NoError(t, err)
	assert.Equal(t, "llama", got.Model)
	assert.False(t, got.Cached)

	again, err := svc.Classify(ctx, "site is down")
	require.NoError(t, err)
	assert.True(t, again.Cached)
	assert.Equal(t, int32(1), remote.calls.Load())
}

func TestService_FallbackOnRemoteError(t *testing.T) {
	remote := &stubClassifier{err: errors.New("503")}
	svc := newTestService(t, remote, testConfig())
	ctx := context.Background()

	got, err := svc.Classify(ctx, "my invoice is wrong")
	require.NoError(t, err)
	assert.Equal(t, ModelLocal, got.Model)
	assert.Equal(t, domain.CategoryBilling, got.PrimaryCategory)
	assert.False(t, got.Cached)
	require.NotNil(t, got.LatencyMs)
	assert.Equal(t, int32(3), remote.calls.Load(), "first call plus two retries")

	again, err := svc.Classify(ctx, "my invoice is wrong")
	require.NoError(t, err)
	assert.False(t, again.Cached, "fallback answers are not cached")
	assert.Equal(t, int32(6), remote.calls.Load())

	snap := svc.Metrics().Snapshot()
	assert.Equal(t, int64(2), snap.Fallbacks)
	assert.Equal(t, int64(6), snap.RemoteErrors)
}

func TestService_OpenBreakerSkipsRemote(t *testing.T) {
	remote := &stubClassifier{err: errors.New("timeout")}
	cfg := testConfig()
	cfg.Breaker.FailureThreshold = 1
	cfg.Breaker.OpenTimeout = time.Hour
	svc := newTestService(t, remote, cfg)
	ctx := context.Background()

	_, err := svc.Classify(ctx, "first")
	require.NoError(t, err)
	assert.Equal(t, "open", svc.BreakerStats().State)
	calls := remote.calls.Load()

	got, err := svc.Classify(ctx, "second")
	require.NoError(t, err)
	assert.Equal(t, ModelLocal, got.Model)
	assert.Equal(t, calls, remote.calls.Load())
	assert.Equal(t, int64(1), svc.Metrics().Snapshot().BreakerRejected)
}

func TestService_EmptyMessage(t *testing.T) {
	svc := newTestService(t, nil, testConfig())
	_, err := svc.Classify(context.Background(), "")
	require.Error(t, err)
	assert.Equal(t, 400, apperr.GetHTTPStatus(err))
}

func TestService_ClassifyBulk(t *testing.T) {
	svc := newTestService(t, nil, testConfig())
	ctx := context.Background()

	messages := []string{"refund please", "", "site outage", "thank you"}
	results, err := svc.ClassifyBulk(ctx, messages)
	require.NoError(t, err)
	require.Len(t, results, 4)

	for i, r := range results {
		assert.Equal(t, i, r.Index)
	}
	assert.Equal(t, domain.CategoryBilling, results[0].PrimaryCategory)
	assert.Equal(t, MessageRequired, results[1].Error)
	assert.Nil(t, results[1].Classification)
	assert.Equal(t, domain.CategoryOutage, results[2].PrimaryCategory)
	assert.Equal(t, domain.CategoryFeedback, results[3].PrimaryCategory)
}

func TestService_ClassifyBulkBounds(t *testing.T) {
	svc := newTestService(t, nil, testConfig())
	ctx := context.Background()

	_, err := svc.ClassifyBulk(ctx, nil)
	assert.Equal(t, 400, apperr.GetHTTPStatus(err))

	tooMany := strings.Split(strings.Repeat("x,", 51), ",")[:51]
	_, err = svc.ClassifyBulk(ctx, tooMany)
	require.Error(t, err)
	assert.Equal(t, 400, apperr.GetHTTPStatus(err))
	assert.Equal(t, int64(0), svc.Metrics().Snapshot().Requests, "nothing is processed")
}
