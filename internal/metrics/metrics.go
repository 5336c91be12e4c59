package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisp_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wisp_http_request_duration_seconds",
			Help:    "HTTP request duration",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		},
		[]string{"method", "path"},
	)

	// Relay metrics
	ConnectionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wisp_connections_active",
			Help: "Currently registered connections",
		},
	)

	JoinsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wisp_joins_total",
			Help: "Total join announcements",
		},
	)

	MessagesRelayed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisp_messages_relayed_total",
			Help: "Total messages persisted and relayed",
		},
		[]string{"delivery"}, // "online" or "offline"
	)

	PresenceBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wisp_presence_broadcasts_total",
			Help: "Total presence broadcasts",
		},
	)

	DroppedPushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisp_dropped_pushes_total",
			Help: "Outbound events dropped on full or dead connections",
		},
		[]string{"kind"}, // "presence", "message", "echo"
	)

	// Rate limit metrics
	RateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wisp_rate_limit_hits_total",
			Help: "Total rate limit hits",
		},
		[]string{"endpoint"},
	)

	// Infrastructure metrics
	StoreLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wisp_store_latency_seconds",
			Help:    "Message store operation latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1},
		},
	)
)
