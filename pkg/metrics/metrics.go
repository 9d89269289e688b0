// Package metrics содержит Prometheus коллекторы сервиса
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics набор коллекторов, регистрируемых один раз при старте
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	DBQueriesTotal    *prometheus.CounterVec
	DBQueryDuration   *prometheus.HistogramVec
	DBOpenConnections *prometheus.GaugeVec
	DBInUse           *prometheus.GaugeVec
	DBWaitCount       *prometheus.GaugeVec

	BookingsCreated    *prometheus.CounterVec
	BookingTransitions *prometheus.CounterVec
	CreditOperations   *prometheus.CounterVec
}

// New создаёт и регистрирует коллекторы в default registry
func New(serviceName string) *Metrics {
	return NewWithRegisterer(serviceName, prometheus.DefaultRegisterer)
}

// NewWithRegisterer создаёт коллекторы и регистрирует их в переданном registry.
// при reg == nil коллекторы не регистрируются (удобно в тестах)
func NewWithRegisterer(serviceName string, reg prometheus.Registerer) *Metrics {
	constLabels := prometheus.Labels{"service": serviceName}

	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests",
			ConstLabels: constLabels,
		}, []string{"method", "route", "status"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "http_request_duration_seconds",
			Help:        "HTTP request latency",
			ConstLabels: constLabels,
			Buckets:     prometheus.DefBuckets,
		}, []string{"method", "route"}),
		DBQueriesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "db_queries_total",
			Help:        "Total number of database queries",
			ConstLabels: constLabels,
		}, []string{"operation", "status"}),
		DBQueryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "db_query_duration_seconds",
			Help:        "Database query latency",
			ConstLabels: constLabels,
			Buckets:     []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}, []string{"operation"}),
		DBOpenConnections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_open_connections",
			Help:        "Number of established connections",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBInUse: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_in_use_connections",
			Help:        "Number of connections currently in use",
			ConstLabels: constLabels,
		}, []string{"db"}),
		DBWaitCount: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name:        "db_wait_count",
			Help:        "Total number of connections waited for",
			ConstLabels: constLabels,
		}, []string{"db"}),
		BookingsCreated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "bookings_created_total",
			Help:        "Bookings created, by pricing source",
			ConstLabels: constLabels,
		}, []string{"source"}),
		BookingTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "booking_transitions_total",
			Help:        "Booking status transitions, by target status",
			ConstLabels: constLabels,
		}, []string{"to"}),
		CreditOperations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "credit_operations_total",
			Help:        "Prepaid credit ledger operations",
			ConstLabels: constLabels,
		}, []string{"op", "result"}),
	}

	if reg != nil {
		reg.MustRegister(
			m.HTTPRequestsTotal,
			m.HTTPRequestDuration,
			m.DBQueriesTotal,
			m.DBQueryDuration,
			m.DBOpenConnections,
			m.DBInUse,
			m.DBWaitCount,
			m.BookingsCreated,
			m.BookingTransitions,
			m.CreditOperations,
		)
	}

	return m
}

// IncBookingCreated увеличивает счётчик созданных бронирований. Безопасен для nil
func (m *Metrics) IncBookingCreated(source string) {
	if m == nil {
		return
	}
	m.BookingsCreated.WithLabelValues(source).Inc()
}

// IncTransition увеличивает счётчик переходов статуса. Безопасен для nil
func (m *Metrics) IncTransition(to string) {
	if m == nil {
		return
	}
	m.BookingTransitions.WithLabelValues(to).Inc()
}

// IncCreditOperation увеличивает счётчик операций с кредитами. Безопасен для nil
func (m *Metrics) IncCreditOperation(op, result string) {
	if m == nil {
		return
	}
	m.CreditOperations.WithLabelValues(op, result).Inc()
}
