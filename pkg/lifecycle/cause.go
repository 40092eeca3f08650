package lifecycle

import (
	"fmt"
	"strings"
	"sync"
)

// Phase identifies which lifecycle operation produced a failure.
type Phase string

const (
	// PhaseStart covers failures returned (or panicked) by Component.Start.
	PhaseStart Phase = "start"
	// PhaseStop covers failures returned (or panicked) by Component.Stop,
	// including stops truncated by the shared shutdown deadline.
	PhaseStop Phase = "stop"
	// PhaseRelease covers failures from release hooks that run after every
	// component has stopped.
	PhaseRelease Phase = "release"
)

// Cause is a single component failure with enough identity to locate it:
// the component name, its start-order index, and the phase it failed in.
type Cause struct {
	Component string
	Index     int
	Phase     Phase
	Err       error
}

func (c *Cause) Error() string {
	return fmt.Sprintf("%s [%s]: %v", c.Component, c.Phase, c.Err)
}

// Unwrap exposes the underlying error to errors.Is and errors.As.
func (c *Cause) Unwrap() error { return c.Err }

// Aggregate is an ordered collection of failure causes gathered during a
// run or a shutdown pass. A later failure is appended, never substituted
// for an earlier one. An empty aggregate means success.
//
// Aggregate implements error so a non-empty instance can be returned
// directly from Run or Shutdown; use Err to get nil for the empty case.
type Aggregate struct {
	mu     sync.Mutex
	causes []*Cause
}

// NewAggregate returns an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{}
}

// Append records one failure cause. Safe for concurrent use.
func (a *Aggregate) Append(c *Cause) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.causes = append(a.causes, c)
}

// Causes returns a copy of the recorded causes in append order.
func (a *Aggregate) Causes() []*Cause {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]*Cause, len(a.causes))
	copy(out, a.causes)
	return out
}

// Len returns the number of recorded causes.
func (a *Aggregate) Len() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.causes)
}

// Empty reports whether no cause has been recorded.
func (a *Aggregate) Empty() bool {
	return a.Len() == 0
}

// Combine returns a new aggregate holding a's causes followed by b's.
// Neither input is modified; a nil input is treated as empty.
func (a *Aggregate) Combine(b *Aggregate) *Aggregate {
	out := NewAggregate()
	if a != nil {
		out.causes = append(out.causes, a.Causes()...)
	}
	if b != nil {
		out.causes = append(out.causes, b.Causes()...)
	}
	return out
}

// Error renders every cause, one per line.
func (a *Aggregate) Error() string {
	causes := a.Causes()
	msgs := make([]string, len(causes))
	for i, c := range causes {
		msgs[i] = c.Error()
	}
	return strings.Join(msgs, "\n")
}

// Unwrap exposes the causes to errors.Is and errors.As.
func (a *Aggregate) Unwrap() []error {
	causes := a.Causes()
	errs := make([]error, len(causes))
	for i, c := range causes {
		errs[i] = c
	}
	return errs
}

// Err returns the aggregate as an error, or nil when it is empty.
func (a *Aggregate) Err() error {
	if a.Empty() {
		return nil
	}
	return a
}
