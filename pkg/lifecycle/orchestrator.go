package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"time"

	"github.com/marmos91/flotilla/internal/logger"
)

// DefaultShutdownTimeout bounds graceful shutdown when no explicit timeout
// is configured.
const DefaultShutdownTimeout = 30 * time.Second

var (
	// ErrAlreadyRunning is returned by Run after the first call; an
	// orchestrator runs at most once.
	ErrAlreadyRunning = errors.New("lifecycle: orchestrator can only run once")

	// ErrNotStarted is returned by Shutdown when Run has not begun.
	ErrNotStarted = errors.New("lifecycle: orchestrator not started")

	// ErrShutdownStarted is returned by repeated or concurrent Shutdown
	// calls; at most one shutdown pass runs per orchestrator.
	ErrShutdownStarted = errors.New("lifecycle: shutdown already started")
)

// Orchestrator owns an ordered set of components and exposes the two
// process-level operations, Run and Shutdown. Components are registered
// before Run in start order; Shutdown stops them in reverse. An
// orchestrator is single-use: it enters running and shut down once each.
type Orchestrator struct {
	regs     []registration
	releases []releaseHook
	signals  []os.Signal

	started  atomic.Bool
	stopping atomic.Bool
}

// New returns an empty orchestrator listening for SIGINT and SIGTERM.
func New() *Orchestrator {
	return &Orchestrator{}
}

// SetSignals replaces the termination signals the orchestrator listens for.
// Must be called before Run.
func (o *Orchestrator) SetSignals(signals ...os.Signal) {
	if o.started.Load() {
		panic("lifecycle: SetSignals called after Run")
	}
	o.signals = signals
}

// Add registers a component under a unique name. Registration order is
// start order; the same order reversed is stop order. Add returns an error
// for a nil component, an empty or duplicate name, or registration after
// Run has begun.
func (o *Orchestrator) Add(name string, c Component) error {
	if o.started.Load() {
		return fmt.Errorf("cannot add component %q after Run", name)
	}
	if name == "" {
		return errors.New("component name cannot be empty")
	}
	if c == nil {
		return fmt.Errorf("component %q cannot be nil", name)
	}
	for _, reg := range o.regs {
		if reg.name == name {
			return fmt.Errorf("component %q already registered", name)
		}
	}
	o.regs = append(o.regs, registration{index: len(o.regs), name: name, component: c})
	return nil
}

// OnRelease registers a hook that frees a shared resource (a connection
// pool, a lock file) once every component has stopped. Hooks run after all
// Stop calls, in reverse registration order; a hook failure is recorded in
// Shutdown's aggregate under the given name.
func (o *Orchestrator) OnRelease(name string, fn ReleaseFunc) error {
	if o.started.Load() {
		return fmt.Errorf("cannot add release hook %q after Run", name)
	}
	if name == "" {
		return errors.New("release hook name cannot be empty")
	}
	if fn == nil {
		return fmt.Errorf("release hook %q cannot be nil", name)
	}
	o.releases = append(o.releases, releaseHook{name: name, fn: fn})
	return nil
}

// Run starts every registered component concurrently and blocks until all
// of them have returned. The first component failure, a termination signal,
// or cancellation of ctx each fire the group's shared token exactly once,
// telling every other component to begin stopping.
//
// Run returns nil when every component stopped cleanly or due to
// cancellation; otherwise it returns the ordered aggregate of failures.
// Run may be called once; later calls return ErrAlreadyRunning.
func (o *Orchestrator) Run(ctx context.Context) error {
	if !o.started.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	if ctx == nil {
		ctx = context.Background()
	}

	logger.Info("Starting components", "count", len(o.regs))

	bridge := newSignalBridge(ctx, o.signals...)
	token := bridge.listen()
	defer bridge.close()

	g := &group{regs: o.regs}
	agg := g.run(token.Context())

	logger.Info("All components stopped", "failures", agg.Len())
	return agg.Err()
}

// Shutdown stops every component in reverse start order under one shared
// deadline derived from timeout at the moment of the call, then runs the
// release hooks. A non-positive timeout falls back to
// DefaultShutdownTimeout. A Stop that overruns the deadline is recorded as
// a failure and abandoned rather than extending the window; the pass always
// visits every component.
//
// Shutdown returns nil when every stop and release succeeded, otherwise the
// ordered aggregate of failures, independent of Run's. At most one shutdown
// pass runs per orchestrator: repeated or concurrent calls return
// ErrShutdownStarted, and calling Shutdown before Run returns ErrNotStarted.
func (o *Orchestrator) Shutdown(timeout time.Duration) error {
	if !o.started.Load() {
		return ErrNotStarted
	}
	if !o.stopping.CompareAndSwap(false, true) {
		return ErrShutdownStarted
	}
	if timeout <= 0 {
		timeout = DefaultShutdownTimeout
	}

	// One absolute deadline shared by every Stop call.
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Shutting down components", "count", len(o.regs), "timeout", timeout.String())

	c := &coordinator{regs: o.regs, releases: o.releases}
	agg := c.stop(ctx)

	logger.Info("Shutdown completed", "failures", agg.Len())
	return agg.Err()
}
