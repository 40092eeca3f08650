// Package metrics provides Prometheus metrics for the Flotilla supervisor.
//
// Metrics are opt-in: when the metrics server is disabled nothing is
// registered and recording calls are no-ops with zero overhead.
package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	registry     *prometheus.Registry
	registryOnce sync.Once
	enabled      bool
)

// InitRegistry creates the Prometheus registry with standard Go runtime and
// process collectors. Must be called before NewFleetMetrics; calling it more
// than once has no effect.
func InitRegistry() {
	registryOnce.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		enabled = true
	})
}

// IsEnabled reports whether the registry has been initialized.
func IsEnabled() bool {
	return enabled
}

// GetRegistry returns the shared registry, or nil when metrics are disabled.
func GetRegistry() *prometheus.Registry {
	return registry
}
