package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// FleetMetrics collects supervisor-level metrics: component lifecycle
// transitions, child process exits, and shutdown behavior.
//
// Pass nil to disable metrics collection with zero overhead; every method
// is safe to call on a nil receiver.
type FleetMetrics struct {
	runInfo           *prometheus.GaugeVec
	componentState    *prometheus.GaugeVec
	componentStarts   *prometheus.CounterVec
	componentFailures *prometheus.CounterVec
	stopDuration      *prometheus.HistogramVec
	stopDeadlines     *prometheus.CounterVec
	processExits      *prometheus.CounterVec
}

var (
	fleetMetrics     *FleetMetrics
	fleetMetricsOnce sync.Once
)

// NewFleetMetrics creates Prometheus-backed fleet metrics. The collectors
// register in the shared registry once; later calls return the same
// instance.
//
// Returns nil if metrics are not enabled (InitRegistry not called).
func NewFleetMetrics() *FleetMetrics {
	if !IsEnabled() {
		return nil
	}

	fleetMetricsOnce.Do(func() {
		fleetMetrics = newFleetMetrics()
	})
	return fleetMetrics
}

func newFleetMetrics() *FleetMetrics {
	reg := GetRegistry()

	return &FleetMetrics{
		runInfo: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flotilla_run_info",
				Help: "Constant gauge carrying the run identifier as a label",
			},
			[]string{"run_id"},
		),
		componentState: promauto.With(reg).NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "flotilla_component_state",
				Help: "Component state as a one-hot gauge per state",
			},
			[]string{"component", "kind", "state"}, // state: pending, running, stopped, failed
		),
		componentStarts: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flotilla_component_starts_total",
				Help: "Total number of component starts",
			},
			[]string{"component", "kind"},
		),
		componentFailures: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flotilla_component_failures_total",
				Help: "Total number of component failures by lifecycle phase",
			},
			[]string{"component", "kind", "phase"}, // phase: start, stop
		),
		stopDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "flotilla_component_stop_duration_seconds",
				Help: "Duration of component graceful stops in seconds",
				Buckets: []float64{
					0.01, // near-instant stops
					0.05,
					0.1,
					0.5,
					1,
					5,
					10,
					30, // default shutdown budget
					60,
				},
			},
			[]string{"component", "kind"},
		),
		stopDeadlines: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flotilla_component_stop_deadline_exceeded_total",
				Help: "Total number of component stops truncated by the shared shutdown deadline",
			},
			[]string{"component", "kind"},
		),
		processExits: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Name: "flotilla_process_exits_total",
				Help: "Total number of child process exits by exit code",
			},
			[]string{"component", "exit_code"},
		),
	}
}

// SetRunInfo records the run identifier gauge.
func (m *FleetMetrics) SetRunInfo(runID string) {
	if m == nil {
		return
	}
	m.runInfo.WithLabelValues(runID).Set(1)
}

// SetComponentState moves a component's one-hot state gauge to state.
func (m *FleetMetrics) SetComponentState(component, kind, state string) {
	if m == nil {
		return
	}
	for _, s := range []string{"pending", "running", "stopped", "failed"} {
		v := 0.0
		if s == state {
			v = 1
		}
		m.componentState.WithLabelValues(component, kind, s).Set(v)
	}
}

// RecordStart increments the start counter for a component.
func (m *FleetMetrics) RecordStart(component, kind string) {
	if m == nil {
		return
	}
	m.componentStarts.WithLabelValues(component, kind).Inc()
}

// RecordFailure increments the failure counter for a component and phase.
func (m *FleetMetrics) RecordFailure(component, kind, phase string) {
	if m == nil {
		return
	}
	m.componentFailures.WithLabelValues(component, kind, phase).Inc()
}

// RecordStopDuration records how long a component's graceful stop took.
func (m *FleetMetrics) RecordStopDuration(component, kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.stopDuration.WithLabelValues(component, kind).Observe(d.Seconds())
}

// RecordStopDeadlineExceeded increments the truncated-stop counter.
func (m *FleetMetrics) RecordStopDeadlineExceeded(component, kind string) {
	if m == nil {
		return
	}
	m.stopDeadlines.WithLabelValues(component, kind).Inc()
}

// RecordProcessExit increments the exit counter for a child process.
func (m *FleetMetrics) RecordProcessExit(component string, exitCode int) {
	if m == nil {
		return
	}
	m.processExits.WithLabelValues(component, strconv.Itoa(exitCode)).Inc()
}
