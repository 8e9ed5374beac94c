package providers

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"anitrackr/internal/structures"
)

// MetricsProviderInterface exposes client-core counters. The library opens no
// HTTP surface of its own; collectors are registered on the default registry
// and the consuming shell decides whether to expose them.
type MetricsProviderInterface interface {
	IncOptimisticRollbacks(store string)
	IncNudgesEmitted(kind string)
	IncNudgesSuppressed()
	IncBadgesAwarded()
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
}

type MetricsProvider struct {
	rollbacksTotal      *prometheus.CounterVec
	nudgesEmitted       *prometheus.CounterVec
	nudgesSuppressed    prometheus.Counter
	badgesAwarded       prometheus.Counter
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
}

func (m *MetricsProvider) IncOptimisticRollbacks(store string) {
	m.rollbacksTotal.WithLabelValues(store).Inc()
}

func (m *MetricsProvider) IncNudgesEmitted(kind string) {
	m.nudgesEmitted.WithLabelValues(kind).Inc()
}

func (m *MetricsProvider) IncNudgesSuppressed() {
	m.nudgesSuppressed.Inc()
}

func (m *MetricsProvider) IncBadgesAwarded() {
	m.badgesAwarded.Inc()
}

func (m *MetricsProvider) IncCacheHits() {
	m.cacheHits.Inc()
}

func (m *MetricsProvider) IncCacheMisses() {
	m.cacheMisses.Inc()
}

func (m *MetricsProvider) ObservePersistenceDuration(duration time.Duration) {
	m.persistenceDuration.Observe(duration.Seconds())
}

func NewMetricsProvider(conf *structures.Config) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	return &MetricsProvider{
		rollbacksTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "anitrackr_optimistic_rollbacks_total",
			Help: "Remote write failures that forced a local rollback, per store.",
		}, []string{"store"}),
		nudgesEmitted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "anitrackr_nudges_emitted_total",
			Help: "Community nudges shown to the user, per kind.",
		}, []string{"kind"}),
		nudgesSuppressed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anitrackr_nudges_suppressed_total",
			Help: "Nudges dropped by the global throttle.",
		}),
		badgesAwarded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anitrackr_badges_awarded_total",
			Help: "Achievement badges awarded.",
		}),
		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anitrackr_catalog_cache_hits_total",
			Help: "Catalog cache hits.",
		}),
		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "anitrackr_catalog_cache_misses_total",
			Help: "Catalog cache misses.",
		}),
		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "anitrackr_state_persistence_duration_seconds",
			Help:    "Duration of client-state snapshot writes.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

type noopMetrics struct{}

func (n *noopMetrics) IncOptimisticRollbacks(_ string)             {}
func (n *noopMetrics) IncNudgesEmitted(_ string)                   {}
func (n *noopMetrics) IncNudgesSuppressed()                        {}
func (n *noopMetrics) IncBadgesAwarded()                           {}
func (n *noopMetrics) IncCacheHits()                               {}
func (n *noopMetrics) IncCacheMisses()                             {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)  {}
