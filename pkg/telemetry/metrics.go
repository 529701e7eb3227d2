package telemetry

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Metrics exposes Prometheus observability primitives for the studio backend.
type Metrics struct {
	apiRequests      *prometheus.CounterVec
	apiDuration      *prometheus.HistogramVec
	eventsIngested   *prometheus.CounterVec
	eventsRejected   *prometheus.CounterVec
	aggregationTime  *prometheus.HistogramVec
	syncRuns         *prometheus.CounterVec
	syncRecords      *prometheus.CounterVec
	realtimePublish  *prometheus.CounterVec
	rateLimitAllowed prometheus.Counter
	rateLimitDenied  prometheus.Counter
}

// NewMetrics registers and returns Prometheus metrics.
func NewMetrics() *Metrics {
	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkhaus_api_requests_total",
		Help: "Counts API requests by method, route, and status.",
	}, []string{"method", "route", "status"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkhaus_api_duration_seconds",
		Help:    "API request latency per route.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})

	eventsIngested := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkhaus_analytics_events_total",
		Help: "Counts ingested analytics events by category.",
	}, []string{"category"})

	eventsRejected := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkhaus_analytics_events_rejected_total",
		Help: "Counts rejected analytics events by reason.",
	}, []string{"reason"})

	aggregationTime := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "inkhaus_analytics_aggregation_seconds",
		Help:    "Aggregation query durations by kind.",
		Buckets: prometheus.DefBuckets,
	}, []string{"kind"})

	syncRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkhaus_sync_runs_total",
		Help: "Counts appointment sync runs by final status.",
	}, []string{"status"})

	syncRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkhaus_sync_records_total",
		Help: "Counts synced booking records by outcome.",
	}, []string{"outcome"})

	realtimePublish := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "inkhaus_realtime_publish_total",
		Help: "Counts realtime events published by topic.",
	}, []string{"topic"})

	rateLimitAllowed := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inkhaus_ingest_rate_limit_allowed_total",
		Help: "Counts ingest requests admitted by the rate limiter.",
	})

	rateLimitDenied := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "inkhaus_ingest_rate_limit_denied_total",
		Help: "Counts ingest requests rejected by the rate limiter.",
	})

	prometheus.MustRegister(
		apiRequests,
		apiDuration,
		eventsIngested,
		eventsRejected,
		aggregationTime,
		syncRuns,
		syncRecords,
		realtimePublish,
		rateLimitAllowed,
		rateLimitDenied,
	)

	return &Metrics{
		apiRequests:      apiRequests,
		apiDuration:      apiDuration,
		eventsIngested:   eventsIngested,
		eventsRejected:   eventsRejected,
		aggregationTime:  aggregationTime,
		syncRuns:         syncRuns,
		syncRecords:      syncRecords,
		realtimePublish:  realtimePublish,
		rateLimitAllowed: rateLimitAllowed,
		rateLimitDenied:  rateLimitDenied,
	}
}

func (m *Metrics) RecordEventIngested(category string) {
	if m == nil {
		return
	}
	m.eventsIngested.WithLabelValues(category).Inc()
}

func (m *Metrics) RecordEventRejected(reason string) {
	if m == nil {
		return
	}
	m.eventsRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveAggregation(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.aggregationTime.WithLabelValues(kind).Observe(d.Seconds())
}

func (m *Metrics) RecordSyncRun(status string) {
	if m == nil {
		return
	}
	m.syncRuns.WithLabelValues(status).Inc()
}

func (m *Metrics) RecordSyncRecord(outcome string) {
	if m == nil {
		return
	}
	m.syncRecords.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordRealtimePublish(topic string) {
	if m == nil {
		return
	}
	m.realtimePublish.WithLabelValues(topic).Inc()
}

func (m *Metrics) RecordRateLimit(allowed bool) {
	if m == nil {
		return
	}
	if allowed {
		m.rateLimitAllowed.Inc()
		return
	}
	m.rateLimitDenied.Inc()
}

// GinMiddleware records request counts and latency per route.
func GinMiddleware(m *Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if m == nil {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unknown"
		}
		m.apiRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.apiDuration.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}

// Module wires Prometheus metrics.
var Module = fx.Module("telemetry",
	fx.Provide(NewMetrics),
)
