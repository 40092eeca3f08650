package lifecycle

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/marmos91/flotilla/internal/logger"
)

// ReleaseFunc frees a shared resource after every component has stopped.
type ReleaseFunc func() error

// releaseHook pairs a release function with a name for failure reporting.
type releaseHook struct {
	name string
	fn   ReleaseFunc
}

// coordinator stops registered components in strict reverse start order
// under one shared deadline, then releases shared resources.
type coordinator struct {
	regs     []registration
	releases []releaseHook
}

// stop walks the components last-started-first and invokes Stop on each
// with ctx, which carries the single deadline shared by the whole pass. A
// component that does not return before the deadline is recorded as failed
// and abandoned; the walk always continues to the next component. Release
// hooks run only after every Stop has returned or been abandoned.
func (c *coordinator) stop(ctx context.Context) *Aggregate {
	agg := NewAggregate()

	for i := len(c.regs) - 1; i >= 0; i-- {
		reg := c.regs[i]
		logger.Debug("Stopping component", logger.Component(reg.name), logger.Index(reg.index))

		start := time.Now()
		// Buffered so an abandoned Stop can still deliver its result and
		// let its goroutine exit.
		done := make(chan error, 1)
		go func(reg registration) {
			done <- runStop(ctx, reg)
		}(reg)

		select {
		case err := <-done:
			c.record(agg, reg, err, start)
		case <-ctx.Done():
			// Prefer the component's own result when it lands together
			// with the deadline.
			select {
			case err := <-done:
				c.record(agg, reg, err, start)
			default:
				agg.Append(&Cause{Component: reg.name, Index: reg.index, Phase: PhaseStop,
					Err: fmt.Errorf("stop incomplete at shutdown deadline: %w", ctx.Err())})
				logger.Warn("Component stop abandoned at deadline",
					logger.Component(reg.name), logger.Index(reg.index))
			}
		}
	}

	for i := len(c.releases) - 1; i >= 0; i-- {
		hook := c.releases[i]
		logger.Debug("Releasing resource", "name", hook.name)
		if err := runRelease(hook); err != nil {
			agg.Append(&Cause{Component: hook.name, Index: -1, Phase: PhaseRelease, Err: err})
		}
	}

	return agg
}

// record files one completed Stop result.
func (c *coordinator) record(agg *Aggregate, reg registration, err error, start time.Time) {
	if err != nil {
		agg.Append(&Cause{Component: reg.name, Index: reg.index, Phase: PhaseStop, Err: err})
		logger.Debug("Component stop failed",
			logger.Component(reg.name), logger.Since(start))
		return
	}
	logger.Debug("Component stopped",
		logger.Component(reg.name), logger.Since(start))
}

// runStop invokes a component's Stop, converting a panic into an error so a
// crashing Stop is isolated to its own component and sibling stops still
// proceed.
func runStop(ctx context.Context, reg registration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Component panicked during stop",
				logger.Component(reg.name), "panic", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return reg.component.Stop(ctx)
}

// runRelease invokes a release hook with the same panic isolation as
// component stops.
func runRelease(hook releaseHook) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return hook.fn()
}
