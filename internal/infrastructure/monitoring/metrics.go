package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Tool execution metrics
	ServiceCalls    *prometheus.CounterVec
	ServiceDuration *prometheus.HistogramVec
	ServiceErrors   *prometheus.CounterVec

	// Backup subsystem metrics
	BackupsCreated prometheus.Counter
	BackupsDeleted prometheus.Counter
	Restores       *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		ServiceCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_service_calls_total",
				Help: "Total number of tool executions",
			},
			[]string{"service", "tool", "status"},
		),
		ServiceDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "backend_service_duration_seconds",
				Help:    "Tool execution duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"service", "tool"},
		),
		ServiceErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_service_errors_total",
				Help: "Total number of failed tool executions by error code",
			},
			[]string{"service", "code"},
		),

		BackupsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_backups_created_total",
				Help: "Total number of database backups created",
			},
		),
		BackupsDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "backend_backups_deleted_total",
				Help: "Total number of database backups deleted",
			},
		),
		Restores: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "backend_restores_total",
				Help: "Total number of database restores by outcome",
			},
			[]string{"outcome"},
		),

		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "backend_uptime_seconds",
				Help: "Service uptime in seconds",
			},
		),
	}
}

// RecordHTTPRequest records metrics for one HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.Uptime.Set(time.Since(m.startTime).Seconds())
}

// RecordServiceCall records metrics for one tool execution
func (m *Metrics) RecordServiceCall(service, tool, status string, duration time.Duration) {
	m.ServiceCalls.WithLabelValues(service, tool, status).Inc()
	m.ServiceDuration.WithLabelValues(service, tool).Observe(duration.Seconds())
}

// RecordServiceError records a failed tool execution by error code
func (m *Metrics) RecordServiceError(service, code string) {
	m.ServiceErrors.WithLabelValues(service, code).Inc()
}

// RecordRestore records a restore outcome ("success", "rolled_back",
// "unrecoverable")
func (m *Metrics) RecordRestore(outcome string) {
	m.Restores.WithLabelValues(outcome).Inc()
}
