package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	BackendReachable = promauto.NewGauge(prometheus.GaugeOpts{Namespace: "ridepool", Name: "backend_reachable", Help: "1 when the last health probe or request reached the backend"})

	HealthProbesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridepool", Name: "health_probes_total", Help: "Health probes sent to the backend"},
		[]string{"result"},
	)
	HealthProbeDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "ridepool",
		Name:      "health_probe_duration_seconds",
		Help:      "Health probe latency distribution",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 3, 5},
	})

	GatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridepool", Name: "gateway_requests_total", Help: "Gateway calls by origin (backend or fallback) and outcome"},
		[]string{"method", "route", "origin", "outcome"},
	)
	GatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridepool",
			Name:      "gateway_request_duration_seconds",
			Help:      "Gateway call latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "origin"},
	)

	FallbackResolutions = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridepool", Name: "fallback_resolutions_total", Help: "Synthetic responses by matched route"},
		[]string{"method", "route"},
	)

	RealtimeEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridepool", Name: "realtime_events_total", Help: "Realtime frames by direction and event"},
		[]string{"direction", "event"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{Namespace: "ridepool", Name: "http_requests_total", Help: "Total HTTP requests handled by the local proxy"},
		[]string{"method", "path", "status"},
	)
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ridepool",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency distribution",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)

func BoolGauge(v bool) float64 {
	if v {
		return 1
	}
	return 0
}
