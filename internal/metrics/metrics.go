package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ── HTTP request metrics (RED method) ──────────────────────────────────

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"method", "path", "status_code"})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "goldwatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path"})

	HTTPRequestsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldwatch",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being processed.",
	})
)

// ── Acquisition / failover metrics ─────────────────────────────────────

var (
	PollTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "poll",
		Name:      "total",
		Help:      "Total number of fetch attempts per source.",
	}, []string{"source", "status"})

	PollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "goldwatch",
		Subsystem: "poll",
		Name:      "duration_seconds",
		Help:      "Duration of a source fetch in seconds.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	}, []string{"source"})

	PollLastSuccess = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "goldwatch",
		Subsystem: "poll",
		Name:      "last_success_timestamp",
		Help:      "Unix timestamp of the last successful fetch per source.",
	}, []string{"source"})

	FailoverTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "poll",
		Name:      "failover_total",
		Help:      "Cycles where the primary source failed and a fallback answered.",
	})

	ChainExhaustedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "poll",
		Name:      "chain_exhausted_total",
		Help:      "Cycles where every source failed.",
	})

	SourceMutedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "poll",
		Name:      "source_muted_total",
		Help:      "Times a source was muted by its circuit breaker.",
	}, []string{"source"})

	BaselineResetTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "poll",
		Name:      "baseline_reset_total",
		Help:      "Times the deviation baselines were dropped after a persistent price level shift.",
	})
)

// ── State metrics ──────────────────────────────────────────────────────

var (
	HistoryLength = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldwatch",
		Subsystem: "history",
		Name:      "length",
		Help:      "Number of readings currently retained.",
	})

	CurrentPrice = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "goldwatch",
		Subsystem: "price",
		Name:      "current",
		Help:      "Latest accepted Au99.99 price in CNY per gram.",
	})
)

// ── Alert delivery metrics ─────────────────────────────────────────────

var (
	AlertsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "alerts",
		Name:      "sent_total",
		Help:      "Total alerts successfully delivered.",
	}, []string{"kind"})

	AlertsFailedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "alerts",
		Name:      "failed_total",
		Help:      "Total alert delivery failures.",
	}, []string{"kind"})

	AlertsDeduplicatedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "goldwatch",
		Subsystem: "alerts",
		Name:      "deduplicated_total",
		Help:      "Total alerts suppressed by deduplication.",
	}, []string{"kind"})
)
