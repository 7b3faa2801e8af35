package metrics

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the scheduling service's Prometheus instruments. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	bookingsTotal       *prometheus.CounterVec
	transitionsTotal    *prometheus.CounterVec
	prescriptionsTotal  prometheus.Counter
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New creates the instruments and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		bookingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appointment_bookings_total",
				Help: "Appointment creation attempts by outcome",
			},
			[]string{"outcome"},
		),
		transitionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "appointment_transitions_total",
				Help: "Appointment status transitions by target status and outcome",
			},
			[]string{"to", "outcome", "forced"},
		),
		prescriptionsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "prescriptions_issued_total",
				Help: "Prescriptions created on appointment completion",
			},
		),
		httpRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),
		httpRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),
	}
	reg.MustRegister(
		m.bookingsTotal,
		m.transitionsTotal,
		m.prescriptionsTotal,
		m.httpRequestsTotal,
		m.httpRequestDuration,
	)
	return m
}

// RecordBooking counts a creation attempt. outcome is "created" or an error kind.
func (m *Metrics) RecordBooking(outcome string) {
	if m == nil {
		return
	}
	m.bookingsTotal.WithLabelValues(outcome).Inc()
}

// RecordTransition counts a status change attempt.
func (m *Metrics) RecordTransition(to, outcome string, forced bool) {
	if m == nil {
		return
	}
	m.transitionsTotal.WithLabelValues(to, outcome, strconv.FormatBool(forced)).Inc()
}

// RecordPrescription counts an issued prescription.
func (m *Metrics) RecordPrescription() {
	if m == nil {
		return
	}
	m.prescriptionsTotal.Inc()
}

// Middleware records request counts and latency per route template.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		if m == nil {
			return
		}
		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.httpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(c.Writer.Status())).Inc()
		m.httpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
	}
}
