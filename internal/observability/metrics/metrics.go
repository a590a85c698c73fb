package metrics

import "github.com/prometheus/client_golang/prometheus"

// BookingMetrics exposes counters/histograms for the booking and billing flows.
type BookingMetrics struct {
	committedTotal *prometheus.CounterVec
	rejectedTotal  *prometheus.CounterVec
	bookingLatency prometheus.Histogram
	quotesTotal    prometheus.Counter
}

func NewBookingMetrics(reg prometheus.Registerer) *BookingMetrics {
	m := &BookingMetrics{
		committedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "committed_total",
			Help:      "Total committed bookings",
		}, []string{"duration_minutes"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "rejected_total",
			Help:      "Total rejected booking requests",
		}, []string{"reason"}),
		bookingLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "clinic",
			Subsystem: "booking",
			Name:      "latency_seconds",
			Help:      "Latency of booking transactions",
			Buckets:   prometheus.DefBuckets,
		}),
		quotesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "clinic",
			Subsystem: "billing",
			Name:      "quotes_total",
			Help:      "Total billing quotes computed",
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.committedTotal, m.rejectedTotal, m.bookingLatency, m.quotesTotal)
	return m
}

func (m *BookingMetrics) ObserveCommitted(durationMinutes string) {
	if m == nil {
		return
	}
	m.committedTotal.WithLabelValues(durationMinutes).Inc()
}

func (m *BookingMetrics) ObserveRejected(reason string) {
	if m == nil {
		return
	}
	m.rejectedTotal.WithLabelValues(reason).Inc()
}

func (m *BookingMetrics) ObserveBookingLatency(seconds float64) {
	if m == nil {
		return
	}
	m.bookingLatency.Observe(seconds)
}

func (m *BookingMetrics) ObserveQuote() {
	if m == nil {
		return
	}
	m.quotesTotal.Inc()
}
