package providers

import (
	"storyplayer/internal/structures"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsProviderInterface interface {
	IncRequestsTotal(method, endpoint string, status int)
	ObserveRequestDuration(endpoint string, duration time.Duration)
	IncCacheHits()
	IncCacheMisses()
	ObservePersistenceDuration(duration time.Duration)
	IncTransitions(cause string)
	IncPreload(result string)
	IncMarkViewedFailures()
	IncDeleteFailures()
	SetSessionsActive(count int)
}

// StoryCounter is the slice of the story store the metrics gauges read.
type StoryCounter interface {
	Count() int
}

type MetricsProvider struct {
	requestsTotal       *prometheus.CounterVec
	requestDuration     *prometheus.HistogramVec
	cacheHits           prometheus.Counter
	cacheMisses         prometheus.Counter
	persistenceDuration prometheus.Histogram
	transitions         *prometheus.CounterVec
	preloads            *prometheus.CounterVec
	markViewedFailures  prometheus.Counter
	deleteFailures      prometheus.Counter
	sessionsActive      prometheus.Gauge
}

func (m *MetricsProvider) IncRequestsTotal(method, endpoint string, status int) {
	m.requestsTotal.WithLabelValues(method, endpoint, httpStatusBucket(status)).Inc()
}

func (m *MetricsProvider) ObserveRequestDuration(endpoint string, duration time.Duration) {
	m.requestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
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

func (m *MetricsProvider) IncTransitions(cause string) {
	m.transitions.WithLabelValues(cause).Inc()
}

func (m *MetricsProvider) IncPreload(result string) {
	m.preloads.WithLabelValues(result).Inc()
}

func (m *MetricsProvider) IncMarkViewedFailures() {
	m.markViewedFailures.Inc()
}

func (m *MetricsProvider) IncDeleteFailures() {
	m.deleteFailures.Inc()
}

func (m *MetricsProvider) SetSessionsActive(count int) {
	m.sessionsActive.Set(float64(count))
}

func httpStatusBucket(code int) string {
	switch {
	case code < 200:
		return "1xx"
	case code < 300:
		return "2xx"
	case code < 400:
		return "3xx"
	case code < 500:
		return "4xx"
	default:
		return "5xx"
	}
}

func NewMetricsProvider(conf *structures.Config, stories StoryCounter) MetricsProviderInterface {
	if !conf.Metrics.Enabled {
		return &noopMetrics{}
	}

	m := &MetricsProvider{
		requestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storyplayer_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status"}),

		requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storyplayer_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),

		cacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storyplayer_media_cache_hits_total",
			Help: "Total number of media cache hits",
		}),

		cacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storyplayer_media_cache_misses_total",
			Help: "Total number of media cache misses",
		}),

		persistenceDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "storyplayer_persistence_duration_seconds",
			Help:    "Duration of persistence operations in seconds",
			Buckets: prometheus.DefBuckets,
		}),

		transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storyplayer_transitions_total",
			Help: "Playback cursor transitions by cause",
		}, []string{"cause"}),

		preloads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "storyplayer_preload_total",
			Help: "Media preload requests by result",
		}, []string{"result"}),

		markViewedFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storyplayer_mark_viewed_failures_total",
			Help: "Failed mark-viewed calls",
		}),

		deleteFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "storyplayer_delete_failures_total",
			Help: "Failed story deletions surfaced to viewers",
		}),

		sessionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "storyplayer_sessions_active",
			Help: "Open viewer sessions",
		}),
	}

	promauto.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "storyplayer_stories_total",
		Help: "Stories currently held by the store",
	}, func() float64 {
		return float64(stories.Count())
	})

	return m
}

// noopMetrics is a no-op implementation for when metrics are disabled.
type noopMetrics struct{}

func (n *noopMetrics) IncRequestsTotal(_, _ string, _ int)              {}
func (n *noopMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}
func (n *noopMetrics) IncCacheHits()                                    {}
func (n *noopMetrics) IncCacheMisses()                                  {}
func (n *noopMetrics) ObservePersistenceDuration(_ time.Duration)       {}
func (n *noopMetrics) IncTransitions(_ string)                          {}
func (n *noopMetrics) IncPreload(_ string)                              {}
func (n *noopMetrics) IncMarkViewedFailures()                           {}
func (n *noopMetrics) IncDeleteFailures()                               {}
func (n *noopMetrics) SetSessionsActive(_ int)                          {}
