package metrics

import (
	"sync/atomic"
	"time"
)

// Classification outcome sources.
const (
	SourceRemote   = "remote"
	SourceCache    = "cache"
	SourceLocal    = "local"
	SourceFallback = "fallback"
)

// ClassifierMetrics counts classification outcomes and their latency.
type ClassifierMetrics struct {
	requests     atomic.Int64
	cacheHits    atomic.Int64
	remoteCalls  atomic.Int64
	remoteErrors atomic.Int64
	fallbacks    atomic.Int64
	breakerOpen  atomic.Int64

	latency *LatencyRegistry
	started time.Time
}

// NewClassifierMetrics creates an empty set of counters.
func NewClassifierMetrics() *ClassifierMetrics {
	return &ClassifierMetrics{latency: NewLatencyRegistry(1000), started: time.Now()}
}

// Observe records one classify call by its outcome source.
func (m *ClassifierMetrics) Observe(source string, d time.Duration) {
	m.requests.Add(1)
	switch source {
	case SourceCache:
		m.cacheHits.Add(1)
	case SourceFallback:
		m.fallbacks.Add(1)
	}
	m.latency.Record(source, d)
}

// RemoteCall records one attempt against the remote classifier.
func (m *ClassifierMetrics) RemoteCall(err error) {
	m.remoteCalls.Add(1)
	if err != nil {
		m.remoteErrors.Add(1)
	}
}

// BreakerRejected records a call skipped by the open breaker.
func (m *ClassifierMetrics) BreakerRejected() {
	m.breakerOpen.Add(1)
}

// ClassifierSnapshot is the /api/metrics payload.
type ClassifierSnapshot struct {
	Requests        int64                     `json:"requests"`
	CacheHits       int64                     `json:"cacheHits"`
	RemoteCalls     int64                     `json:"remoteCalls"`
	RemoteErrors    int64                     `json:"remoteErrors"`
	Fallbacks       int64                     `json:"fallbacks"`
	BreakerRejected int64                     `json:"breakerRejected"`
	UptimeSeconds   int64                     `json:"uptimeSeconds"`
	Latency         map[string]map[string]any `json:"latency"`
}

// Snapshot returns the current counter values.
func (m *ClassifierMetrics) Snapshot() ClassifierSnapshot {
	lat := make(map[string]map[string]any)
	for name, s := range m.latency.AllStats() {
		lat[name] = s.ToMap()
	}
	return ClassifierSnapshot{
		Requests:        m.requests.Load(),
		CacheHits:       m.cacheHits.Load(),
		RemoteCalls:     m.remoteCalls.Load(),
		RemoteErrors:    m.remoteErrors.Load(),
		Fallbacks:       m.fallbacks.Load(),
		BreakerRejected: m.breakerOpen.Load(),
		UptimeSeconds:   int64(time.Since(m.started).Seconds()),
		Latency:         lat,
	}
}
