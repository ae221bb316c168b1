package infra

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	// Traffic: операции хранилища по таблицам и исходу (ok, invalid, unauthorized, error)
	StoreOps *prometheus.CounterVec

	// Latency: время запроса к базе
	StoreDuration *prometheus.HistogramVec

	// Audit: ok, failed, skipped (breaker open)
	AuditWrites *prometheus.CounterVec

	// HTTP: ответы по шаблону маршрута
	HTTPRequests *prometheus.CounterVec
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	// Null Object Pattern - Если рег не передан, используем локальный, который никуда не подключен
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Metrics{
		StoreOps: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_store_operations_total",
			Help: "Total number of record store operations.",
		}, []string{"op", "table", "status"}),

		StoreDuration: promauto.With(reg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "storefront_store_operation_duration_seconds",
			Help:    "Histogram of record store latencies.",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
		}, []string{"op"}),

		AuditWrites: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_audit_writes_total",
			Help: "Audit journal writes by result.",
		}, []string{"result"}),

		HTTPRequests: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_http_requests_total",
			Help: "HTTP responses by route pattern and status code.",
		}, []string{"route", "code"}),
	}
}
