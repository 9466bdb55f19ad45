package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestActionMetricsObserve(t *testing.T) {
	m := NewActionMetrics(prometheus.NewRegistry())
	m.ObserveDispatch("CREATE_ENCOUNTER", "ok")
	m.ObserveDispatch("CREATE_ENCOUNTER", "conflict")
	m.ObserveLatency("CREATE_ENCOUNTER", 0.02)
}

func TestActionMetricsCustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewActionMetrics(reg)
	m.ObserveDispatch("LIST_DOCTORS", "ok")
}

func TestActionMetricsNilSafe(t *testing.T) {
	var m *ActionMetrics
	m.ObserveDispatch("REGISTER_PATIENT", "ok")
	m.ObserveLatency("REGISTER_PATIENT", 0.1)
}
