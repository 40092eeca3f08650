package logger

import (
	"log/slog"
	"time"
)

// Standard field keys for structured logging.
// Use these keys consistently across all log statements so fleet runs can be
// filtered and correlated in log aggregation.
const (
	// Fleet identity
	KeyRunID = "run_id" // Unique identifier of this supervisor run

	// Component identity
	KeyComponent = "component" // Component name as registered with the fleet
	KeyKind      = "kind"      // Component kind: process, api, metrics, watcher
	KeyIndex     = "index"     // Start-order index assigned at registration

	// Child processes
	KeyPID      = "pid"       // Operating system process ID
	KeyExitCode = "exit_code" // Process exit code
	KeySignal   = "signal"    // Signal name sent or received
	KeyStream   = "stream"    // Output stream: stdout, stderr
	KeyCommand  = "command"   // Command line being executed

	// Lifecycle phases
	KeyPhase = "phase" // Lifecycle phase: start, stop

	// Operation metadata
	KeyDurationMs = "duration_ms" // Operation duration in milliseconds
	KeyError      = "error"       // Error message
	KeyPath       = "path"        // Filesystem path (config file, watch path)
	KeyPort       = "port"        // TCP port of a built-in server
)

// RunID returns a run identifier attribute.
func RunID(id string) slog.Attr {
	return slog.String(KeyRunID, id)
}

// Component returns a component name attribute.
func Component(name string) slog.Attr {
	return slog.String(KeyComponent, name)
}

// Kind returns a component kind attribute.
func Kind(kind string) slog.Attr {
	return slog.String(KeyKind, kind)
}

// Index returns a start-order index attribute.
func Index(i int) slog.Attr {
	return slog.Int(KeyIndex, i)
}

// PID returns a process ID attribute.
func PID(pid int) slog.Attr {
	return slog.Int(KeyPID, pid)
}

// ExitCode returns a process exit code attribute.
func ExitCode(code int) slog.Attr {
	return slog.Int(KeyExitCode, code)
}

// Signal returns a signal name attribute.
func Signal(name string) slog.Attr {
	return slog.String(KeySignal, name)
}

// Stream returns an output stream attribute.
func Stream(name string) slog.Attr {
	return slog.String(KeyStream, name)
}

// Phase returns a lifecycle phase attribute.
func Phase(phase string) slog.Attr {
	return slog.String(KeyPhase, phase)
}

// DurationMs returns an operation duration attribute in milliseconds.
func DurationMs(ms float64) slog.Attr {
	return slog.Float64(KeyDurationMs, ms)
}

// Since returns an operation duration attribute measured from start.
func Since(start time.Time) slog.Attr {
	return DurationMs(float64(time.Since(start)) / float64(time.Millisecond))
}

// Path returns a filesystem path attribute.
func Path(p string) slog.Attr {
	return slog.String(KeyPath, p)
}

// Port returns a TCP port attribute.
func Port(port int) slog.Attr {
	return slog.Int(KeyPort, port)
}

// Err returns an error attribute, or an empty attribute for nil errors.
func Err(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.String(KeyError, err.Error())
}
