// Package metrics expone los contadores Prometheus del servicio.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	APIRateLimitHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_rate_limit_hits_total",
			Help: "Total number of rate limit rejections",
		},
		[]string{"route"},
	)

	// AlertItems cuenta los ítems emitidos por /alerts/due, por tipo.
	AlertItems = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_items_total",
			Help: "Alert items returned, by kind",
		},
		[]string{"kind"},
	)

	AlertSectionErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "alert_section_errors_total",
			Help: "Alert sections that failed to load",
		},
		[]string{"kind"},
	)

	// GlycemiaPointMismatch: sesiones leídas con cantidad de puntos distinta de 5.
	GlycemiaPointMismatch = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "glycemia_session_point_mismatch_total",
			Help: "Glycemia sessions read with a point count other than five",
		},
	)
)
