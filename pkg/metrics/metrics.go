package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics набор prometheus метрик сервиса.
// Методы-рекордеры безопасно вызывать на nil (метрики выключены).
type Metrics struct {
	service string

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBConnections   *prometheus.GaugeVec
	DBWaitCount     *prometheus.GaugeVec
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	AppointmentsCreated    *prometheus.CounterVec
	SchedulingConflicts    *prometheus.CounterVec
	AppointmentTransitions *prometheus.CounterVec
	EventPublishFailures   *prometheus.CounterVec
}

// New создает и регистрирует метрики в default registry
func New(serviceName string) *Metrics {
	return &Metrics{
		service: serviceName,

		HTTPRequestsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"service", "method", "path", "status"}),

		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "method", "path"}),

		DBConnections: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_connections",
			Help: "Database connection pool state",
		}, []string{"service", "state"}),

		DBWaitCount: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "db_wait_count",
			Help: "Total number of connections waited for",
		}, []string{"service"}),

		DBQueryDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query latency",
			Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"service", "operation"}),

		DBQueryErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "db_query_errors_total",
			Help: "Total number of failed database queries",
		}, []string{"service", "operation"}),

		AppointmentsCreated: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "appointments_created_total",
			Help: "Total number of created appointments",
		}, []string{"service"}),

		SchedulingConflicts: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "scheduling_conflicts_total",
			Help: "Booking attempts rejected because of a double booking",
		}, []string{"service", "stage"}),

		AppointmentTransitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "appointment_transitions_total",
			Help: "Appointment state transitions",
		}, []string{"service", "from", "to", "trigger"}),

		EventPublishFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "events_publish_failures_total",
			Help: "Appointment events that failed to publish",
		}, []string{"service", "event_type"}),
	}
}

// IncAppointmentCreated фиксирует созданную запись
func (m *Metrics) IncAppointmentCreated() {
	if m == nil {
		return
	}
	m.AppointmentsCreated.WithLabelValues(m.service).Inc()
}

// IncSchedulingConflict фиксирует конфликт бронирования (stage: precheck, write, lock)
func (m *Metrics) IncSchedulingConflict(stage string) {
	if m == nil {
		return
	}
	m.SchedulingConflicts.WithLabelValues(m.service, stage).Inc()
}

// IncTransition фиксирует смену статуса записи (trigger: manual, sweep)
func (m *Metrics) IncTransition(from, to, trigger string) {
	if m == nil {
		return
	}
	m.AppointmentTransitions.WithLabelValues(m.service, from, to, trigger).Inc()
}

// IncPublishFailure фиксирует неудачную публикацию события
func (m *Metrics) IncPublishFailure(eventType string) {
	if m == nil {
		return
	}
	m.EventPublishFailures.WithLabelValues(m.service, eventType).Inc()
}
