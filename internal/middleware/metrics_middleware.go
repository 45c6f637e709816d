package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RequestsTotal - общее количество запросов
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Общее количество HTTP запросов",
		},
		[]string{"method", "endpoint", "status"},
	)

	// RequestDuration - длительность запросов
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Длительность HTTP запросов в секундах",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// RequestsInFlight - количество запросов в обработке
	RequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_flight",
			Help: "Текущее количество запросов в обработке",
		},
	)

	// SnagsReportedTotal - количество зарегистрированных неисправностей
	SnagsReportedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_snags_reported_total",
			Help: "Количество зарегистрированных неисправностей",
		},
		[]string{"priority"},
	)

	// SnagsAssignedTotal - количество назначений неисправностей
	SnagsAssignedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fleet_snags_assigned_total",
			Help: "Количество назначений неисправностей исполнителям",
		},
	)

	// SnagsResolvedTotal - количество устраненных неисправностей
	SnagsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fleet_snags_resolved_total",
			Help: "Количество устраненных неисправностей",
		},
		[]string{"method", "with_log"},
	)
)

// PrometheusMiddleware собирает метрики для HTTP запросов
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Увеличиваем счетчик запросов в обработке
		RequestsInFlight.Inc()
		defer RequestsInFlight.Dec()

		start := time.Now()

		c.Next()

		duration := time.Since(start).Seconds()

		status := strconv.Itoa(c.Writer.Status())
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unknown"
		}

		RequestsTotal.WithLabelValues(c.Request.Method, endpoint, status).Inc()
		RequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(duration)
	}
}

// TrackSnagResolved отслеживает устранение неисправности
func TrackSnagResolved(method string, withLog bool) {
	SnagsResolvedTotal.WithLabelValues(method, strconv.FormatBool(withLog)).Inc()
}
