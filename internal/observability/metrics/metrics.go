package metrics

import "github.com/prometheus/client_golang/prometheus"

// ActionMetrics exposes counters/histograms for dispatched actions.
type ActionMetrics struct {
	dispatchedTotal *prometheus.CounterVec
	dispatchLatency *prometheus.HistogramVec
}

func NewActionMetrics(reg prometheus.Registerer) *ActionMetrics {
	m := &ActionMetrics{
		dispatchedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "frontdesk",
			Subsystem: "actions",
			Name:      "dispatched_total",
			Help:      "Total dispatched assistant actions",
		}, []string{"action", "status"}),
		dispatchLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "frontdesk",
			Subsystem: "actions",
			Name:      "dispatch_latency_seconds",
			Help:      "Latency of action dispatch",
			Buckets:   prometheus.DefBuckets,
		}, []string{"action"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.dispatchedTotal, m.dispatchLatency)
	return m
}

func (m *ActionMetrics) ObserveDispatch(action, status string) {
	if m == nil {
		return
	}
	m.dispatchedTotal.WithLabelValues(action, status).Inc()
}

func (m *ActionMetrics) ObserveLatency(action string, seconds float64) {
	if m == nil {
		return
	}
	m.dispatchLatency.WithLabelValues(action).Observe(seconds)
}
