package http

import (
	"triage_server/pkg/cache"
	"triage_server/pkg/metrics"
	"triage_server/pkg/resilience"

	"github.com/gofiber/fiber/v2"
)

// ClassifierStats is the view of the classification service the metrics endpoint reads.
type ClassifierStats interface {
	RemoteEnabled() bool
	BreakerStats() resilience.BreakerStats
	Metrics() *metrics.ClassifierMetrics
}

// CacheStats reports the in-process cache tier.
type CacheStats interface {
	Stats() cache.L1Stats
}

type MetricsHandler struct {
	classifier ClassifierStats
	cache      CacheStats
	sources    map[string]func() any
}

// NewMetricsHandler accepts a nil cache when classification caching is off.
func NewMetricsHandler(classifier ClassifierStats, c CacheStats) *MetricsHandler {
	return &MetricsHandler{classifier: classifier, cache: c, sources: map[string]func() any{}}
}

// AddSource reports fn() under name on every request, e.g. connection pool stats.
func (h *MetricsHandler) AddSource(name string, fn func() any) {
	h.sources[name] = fn
}

func (h *MetricsHandler) Register(router fiber.Router) {
	router.Get("/metrics", h.Metrics)
}

func (h *MetricsHandler) Metrics(c *fiber.Ctx) error {
	resp := fiber.Map{
		"mode":       "local",
		"classifier": h.classifier.Metrics().Snapshot(),
	}
	if h.classifier.RemoteEnabled() {
		resp["mode"] = "remote"
		resp["breaker"] = h.classifier.BreakerStats()
	}
	if h.cache != nil {
		resp["cache"] = h.cache.Stats()
	}
	for name, fn := range h.sources {
		resp[name] = fn()
	}
	return c.JSON(resp)
}
