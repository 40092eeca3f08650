package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"

	"github.com/marmos91/flotilla/internal/logger"
)

// group starts a fixed set of components concurrently and blocks until all
// of them have returned.
type group struct {
	regs []registration
}

// startOutcome carries one component's terminal result back to the
// collector.
type startOutcome struct {
	reg registration
	err error
}

// run starts every registered component in its own goroutine and waits for
// all of them to return. The first genuine failure, or parent cancellation,
// fires the shared token exactly once so every sibling begins stopping; run
// still waits for every component before returning so that no component
// outlives the group.
//
// Errors that are or wrap context.Canceled count as cancellation, not
// failure, and are excluded from the returned aggregate. The same holds
// for context.DeadlineExceeded when the run token itself expired with a
// deadline; a component's own internal timeout is still a failure.
func (g *group) run(parent context.Context) *Aggregate {
	agg := NewAggregate()
	if len(g.regs) == 0 {
		return agg
	}

	token := NewToken(parent)
	defer token.Cancel()

	outcomes := make(chan startOutcome, len(g.regs))
	for _, reg := range g.regs {
		go func(reg registration) {
			logger.Debug("Starting component", logger.Component(reg.name), logger.Index(reg.index))
			outcomes <- startOutcome{reg: reg, err: runStart(token.Context(), reg)}
		}(reg)
	}

	// Every component must report back, not just the first failure.
	for range g.regs {
		out := <-outcomes
		switch {
		case out.err == nil:
			logger.Debug("Component stopped", logger.Component(out.reg.name), logger.Index(out.reg.index))
		case isCancellation(out.err, token):
			logger.Debug("Component cancelled", logger.Component(out.reg.name), logger.Index(out.reg.index))
		default:
			if agg.Empty() && !token.Cancelled() {
				logger.Info("Component failed, stopping remaining components",
					logger.Component(out.reg.name), logger.Index(out.reg.index))
			} else {
				logger.Debug("Component failed", logger.Component(out.reg.name), logger.Index(out.reg.index))
			}
			agg.Append(&Cause{Component: out.reg.name, Index: out.reg.index, Phase: PhaseStart, Err: out.err})
			token.Cancel()
		}
	}

	return agg
}

// isCancellation reports whether a component's terminal error represents a
// run-token stop rather than a genuine fault. Deadline expiry counts only
// when the token's own context expired with it, so that a parent context
// carrying a deadline behaves like any other parent cancellation.
func isCancellation(err error, token *Token) bool {
	if errors.Is(err, context.Canceled) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded) && errors.Is(token.Context().Err(), context.DeadlineExceeded)
}

// runStart invokes a component's Start, converting a panic into an error so
// one crashing component cannot take down the whole process.
func runStart(ctx context.Context, reg registration) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Component panicked during start",
				logger.Component(reg.name), "panic", fmt.Sprintf("%v", r), "stack", string(debug.Stack()))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return reg.component.Start(ctx)
}
