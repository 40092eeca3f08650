package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used across Flotilla spans.
//
// Naming follows OpenTelemetry semantic conventions where one exists
// (process.*), and a flotilla.* namespace for supervisor concepts.
const (
	// ========================================================================
	// Fleet attributes
	// ========================================================================
	AttrRunID          = "flotilla.run_id"          // Unique identifier of this supervisor run
	AttrComponentCount = "flotilla.component_count" // Number of registered components

	// ========================================================================
	// Component attributes
	// ========================================================================
	AttrComponent = "flotilla.component"       // Component name as registered with the fleet
	AttrKind      = "flotilla.component_kind"  // process, api, metrics, watcher
	AttrIndex     = "flotilla.component_index" // Start-order index
	AttrPhase     = "flotilla.phase"           // Lifecycle phase: run, shutdown

	// ========================================================================
	// Child process attributes
	// ========================================================================
	AttrProcessPID      = "process.pid"
	AttrProcessCommand  = "process.command"
	AttrProcessExitCode = "process.exit_code"
	AttrProcessSignal   = "process.signal" // Signal name sent to the process group

	// ========================================================================
	// Shutdown attributes
	// ========================================================================
	AttrShutdownTimeout  = "flotilla.shutdown_timeout_ms" // Shared shutdown budget
	AttrShutdownFailures = "flotilla.shutdown_failures"   // Causes recorded during the pass
)

// Span names for supervisor operations.
// Format: fleet.<operation> for fleet-wide spans, component.<operation> for
// per-component spans.
const (
	// Fleet-wide spans
	SpanFleetRun      = "fleet.run"
	SpanFleetShutdown = "fleet.shutdown"

	// Per-component spans
	SpanComponentStart = "component.start"
	SpanComponentStop  = "component.stop"

	// Child process spans
	SpanProcessSpawn = "process.spawn"
	SpanProcessWait  = "process.wait"
)

// RunID returns an attribute for the supervisor run identifier.
func RunID(id string) attribute.KeyValue {
	return attribute.String(AttrRunID, id)
}

// ComponentCount returns an attribute for the number of registered components.
func ComponentCount(n int) attribute.KeyValue {
	return attribute.Int(AttrComponentCount, n)
}

// Component returns an attribute for a component name.
func Component(name string) attribute.KeyValue {
	return attribute.String(AttrComponent, name)
}

// Kind returns an attribute for a component kind.
func Kind(kind string) attribute.KeyValue {
	return attribute.String(AttrKind, kind)
}

// Index returns an attribute for a component's start-order index.
func Index(i int) attribute.KeyValue {
	return attribute.Int(AttrIndex, i)
}

// Phase returns an attribute for the lifecycle phase.
func Phase(phase string) attribute.KeyValue {
	return attribute.String(AttrPhase, phase)
}

// ProcessPID returns an attribute for a child process ID.
func ProcessPID(pid int) attribute.KeyValue {
	return attribute.Int(AttrProcessPID, pid)
}

// ProcessCommand returns an attribute for the command line being run.
func ProcessCommand(cmd string) attribute.KeyValue {
	return attribute.String(AttrProcessCommand, cmd)
}

// ProcessExitCode returns an attribute for a child process exit code.
func ProcessExitCode(code int) attribute.KeyValue {
	return attribute.Int(AttrProcessExitCode, code)
}

// ProcessSignal returns an attribute for a signal name.
func ProcessSignal(name string) attribute.KeyValue {
	return attribute.String(AttrProcessSignal, name)
}

// ShutdownTimeoutMs returns an attribute for the shared shutdown budget.
func ShutdownTimeoutMs(ms int64) attribute.KeyValue {
	return attribute.Int64(AttrShutdownTimeout, ms)
}

// ShutdownFailures returns an attribute for the number of causes recorded
// during a shutdown pass.
func ShutdownFailures(n int) attribute.KeyValue {
	return attribute.Int(AttrShutdownFailures, n)
}

// StartFleetSpan starts the root span for a fleet run.
func StartFleetSpan(ctx context.Context, runID string, components int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanFleetRun,
		trace.WithAttributes(
			RunID(runID),
			ComponentCount(components),
		),
	)
}

// StartShutdownSpan starts the span covering the whole shutdown pass.
func StartShutdownSpan(ctx context.Context, runID string, timeoutMs int64) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanFleetShutdown,
		trace.WithAttributes(
			RunID(runID),
			ShutdownTimeoutMs(timeoutMs),
		),
	)
}

// StartComponentSpan starts a span for one component's start or stop.
// The name parameter should be SpanComponentStart or SpanComponentStop.
func StartComponentSpan(ctx context.Context, name, component, kind string, index int) (context.Context, trace.Span) {
	return StartSpan(ctx, name,
		trace.WithAttributes(
			Component(component),
			Kind(kind),
			Index(index),
		),
	)
}

// StartProcessSpawnSpan covers building and launching one child process.
func StartProcessSpawnSpan(ctx context.Context, component, command string) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanProcessSpawn,
		trace.WithAttributes(
			Component(component),
			ProcessCommand(command),
		),
	)
}

// StartProcessWaitSpan covers the time between a child process launching
// and Start returning (exit or stop-signal handoff).
func StartProcessWaitSpan(ctx context.Context, component string, pid int) (context.Context, trace.Span) {
	return StartSpan(ctx, SpanProcessWait,
		trace.WithAttributes(
			Component(component),
			ProcessPID(pid),
		),
	)
}
