package observability

import (
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// ModuleMetrics wraps the collectors tracking native module activity.
type ModuleMetrics struct {
	requests *prometheus.CounterVec
	errors   *prometheus.CounterVec
}

var (
	escrowMetricsOnce sync.Once
	escrowRegistry    *ModuleMetrics

	rolesMetricsOnce sync.Once
	rolesRegistry    *ModuleMetrics
)

func newModuleMetrics(subsystem string) *ModuleMetrics {
	m := &ModuleMetrics{
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pifp",
			Subsystem: subsystem,
			Name:      "operations_total",
			Help:      "Count of module operations segmented by operation and outcome.",
		}, []string{"operation", "outcome"}),
		errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "pifp",
			Subsystem: subsystem,
			Name:      "errors_total",
			Help:      "Count of module operation failures segmented by operation and reason.",
		}, []string{"operation", "reason"}),
	}
	prometheus.MustRegister(m.requests, m.errors)
	return m
}

// Escrow returns the lazily-initialised metrics registry for the escrow
// module.
func Escrow() *ModuleMetrics {
	escrowMetricsOnce.Do(func() {
		escrowRegistry = newModuleMetrics("escrow")
	})
	return escrowRegistry
}

// Roles returns the lazily-initialised metrics registry for the role
// registry.
func Roles() *ModuleMetrics {
	rolesMetricsOnce.Do(func() {
		rolesRegistry = newModuleMetrics("roles")
	})
	return rolesRegistry
}

// Observe records the outcome of a module operation.
func (m *ModuleMetrics) Observe(operation string, err error) {
	if m == nil {
		return
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unknown"
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
		reason := strings.TrimSpace(err.Error())
		if reason == "" {
			reason = "unknown"
		}
		m.errors.WithLabelValues(op, reason).Inc()
	}
	m.requests.WithLabelValues(op, outcome).Inc()
}
