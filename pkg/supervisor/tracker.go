package supervisor

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/marmos91/flotilla/internal/logger"
	"github.com/marmos91/flotilla/internal/telemetry"
	"github.com/marmos91/flotilla/pkg/api/handlers"
	"github.com/marmos91/flotilla/pkg/lifecycle"
	"github.com/marmos91/flotilla/pkg/metrics"
)

// Component kinds as reported by the status API and metrics labels.
const (
	KindProcess = handlers.KindProcess
	KindServer  = handlers.KindServer
	KindWatcher = handlers.KindWatcher
)

// processInfo is implemented by components that run a child OS process and
// can report its PID and exit code.
type processInfo interface {
	PID() int
	ExitCode() (int, bool)
}

// tracker decorates a lifecycle component with state bookkeeping for the
// status API and Prometheus metrics. The lifecycle library stays pure; all
// observation happens in this layer.
type tracker struct {
	name  string
	kind  string
	index int
	inner lifecycle.Component
	fleet *metrics.FleetMetrics

	mu           sync.Mutex
	state        string
	startedAt    *time.Time
	stoppedAt    *time.Time
	lastErr      error
	exitRecorded bool
}

func newTracker(name, kind string, index int, inner lifecycle.Component, fleet *metrics.FleetMetrics) *tracker {
	t := &tracker{
		name:  name,
		kind:  kind,
		index: index,
		inner: inner,
		fleet: fleet,
		state: handlers.StatePending,
	}
	t.fleet.SetComponentState(name, kind, handlers.StatePending)
	return t
}

// Start records the running transition, delegates to the wrapped component,
// and classifies the terminal outcome. A cancellation exit counts as
// stopped, not failed.
func (t *tracker) Start(ctx context.Context) error {
	now := time.Now()
	t.mu.Lock()
	t.state = handlers.StateRunning
	t.startedAt = &now
	t.mu.Unlock()

	t.fleet.SetComponentState(t.name, t.kind, handlers.StateRunning)
	t.fleet.RecordStart(t.name, t.kind)

	spanCtx, span := telemetry.StartComponentSpan(ctx, telemetry.SpanComponentStart, t.name, t.kind, t.index)
	defer span.End()

	err := t.inner.Start(spanCtx)

	stopped := time.Now()
	t.mu.Lock()
	t.stoppedAt = &stopped
	switch {
	case err == nil, errors.Is(err, context.Canceled):
		t.state = handlers.StateStopped
	default:
		t.state = handlers.StateFailed
		t.lastErr = err
	}
	state := t.state
	t.mu.Unlock()

	t.fleet.SetComponentState(t.name, t.kind, state)
	if state == handlers.StateFailed {
		t.fleet.RecordFailure(t.name, t.kind, string(lifecycle.PhaseStart))
		telemetry.RecordError(spanCtx, err)
	}
	t.recordExit()

	return err
}

// Stop delegates to the wrapped component and records the stop duration. A
// deadline-truncated stop marks the component failed.
func (t *tracker) Stop(ctx context.Context) error {
	spanCtx, span := telemetry.StartComponentSpan(ctx, telemetry.SpanComponentStop, t.name, t.kind, t.index)
	defer span.End()

	start := time.Now()
	err := t.inner.Stop(spanCtx)
	t.fleet.RecordStopDuration(t.name, t.kind, time.Since(start))
	t.recordExit()

	if err != nil {
		t.mu.Lock()
		t.state = handlers.StateFailed
		t.lastErr = err
		t.mu.Unlock()

		t.fleet.SetComponentState(t.name, t.kind, handlers.StateFailed)
		t.fleet.RecordFailure(t.name, t.kind, string(lifecycle.PhaseStop))
		telemetry.RecordError(spanCtx, err)
		if errors.Is(err, context.DeadlineExceeded) {
			t.fleet.RecordStopDeadlineExceeded(t.name, t.kind)
			logger.Warn("Component stop exceeded shutdown deadline",
				logger.Component(t.name), logger.Kind(t.kind))
		}
	}

	return err
}

// recordExit publishes the child process exit code to the exit counter once
// it is known. The exit may only become observable during Stop (the run
// phase hands a signalled child's wait to Stop), so both Start and Stop
// call this; only the first observation counts.
func (t *tracker) recordExit() {
	info, ok := t.inner.(processInfo)
	if !ok {
		return
	}
	code, exited := info.ExitCode()
	if !exited {
		return
	}

	t.mu.Lock()
	already := t.exitRecorded
	t.exitRecorded = true
	t.mu.Unlock()

	if !already {
		t.fleet.RecordProcessExit(t.name, code)
	}
}

// status returns a point-in-time snapshot for the status API.
func (t *tracker) status() handlers.ProcessStatus {
	t.mu.Lock()
	defer t.mu.Unlock()

	st := handlers.ProcessStatus{
		Name:      t.name,
		Index:     t.index,
		Kind:      t.kind,
		State:     t.state,
		StartedAt: t.startedAt,
		StoppedAt: t.stoppedAt,
	}
	if t.lastErr != nil {
		st.Error = t.lastErr.Error()
	}

	if info, ok := t.inner.(processInfo); ok {
		if t.state == handlers.StateRunning {
			st.PID = info.PID()
		}
		if code, exited := info.ExitCode(); exited {
			st.ExitCode = &code
		}
	}

	return st
}
