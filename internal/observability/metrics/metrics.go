package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking workflow.
type BookingMetrics struct {
	operationsTotal *prometheus.CounterVec
	emailsTotal     *prometheus.CounterVec
	webhookLatency  *prometheus.HistogramVec
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doclinic",
			Subsystem: "booking",
			Name:      "operations_total",
			Help:      "Total booking workflow operations",
		}, []string{"op", "outcome"}),
		emailsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "doclinic",
			Subsystem: "booking",
			Name:      "emails_total",
			Help:      "Total booking notification emails",
		}, []string{"kind", "status"}),
		webhookLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "doclinic",
			Subsystem: "bot",
			Name:      "webhook_latency_seconds",
			Help:      "Latency of bot webhook intent handling",
			Buckets:   prometheus.DefBuckets,
		}, []string{"intent"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.operationsTotal, m.emailsTotal, m.webhookLatency)
	return m
}

// ObserveOperation records one book/cancel/reschedule outcome.
func (m *BookingMetrics) ObserveOperation(op, outcome string) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(op, outcome).Inc()
}

// ObserveEmail records a notification send attempt.
func (m *BookingMetrics) ObserveEmail(kind, status string) {
	if m == nil {
		return
	}
	m.emailsTotal.WithLabelValues(kind, status).Inc()
}

// ObserveWebhookLatency records bot webhook handling time per intent.
func (m *BookingMetrics) ObserveWebhookLatency(intent string, seconds float64) {
	if m == nil {
		return
	}
	m.webhookLatency.WithLabelValues(intent).Observe(seconds)
}
