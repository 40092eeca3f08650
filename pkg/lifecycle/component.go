package lifecycle

import "context"

// Component is an independently startable and stoppable unit of concurrent
// work: a network listener, a child process, a background poller. The
// orchestrator does not know what a component computes, only how to start,
// run, and stop it.
type Component interface {
	// Start runs the component and blocks until it exits. It returns nil
	// for a clean exit, an error that is or wraps context.Canceled when the
	// component stopped because ctx was cancelled, and any other error for
	// a genuine fault. Cancellation is cooperative: a component that
	// ignores ctx cannot be interrupted.
	Start(ctx context.Context) error

	// Stop initiates graceful shutdown bounded by ctx's deadline. Stop must
	// be safe to call after the component has already exited and should
	// return promptly in that case.
	Stop(ctx context.Context) error
}

// registration pairs a component with its start-order identity. The index
// is assigned at registration time and drives reverse-order shutdown.
type registration struct {
	index     int
	name      string
	component Component
}
