package lifecycle

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
)

func TestCauseError(t *testing.T) {
	c := &Cause{Component: "web", Index: 0, Phase: PhaseStart, Err: errors.New("connection refused")}

	want := "web [start]: connection refused"
	if c.Error() != want {
		t.Errorf("expected %q, got %q", want, c.Error())
	}
}

func TestCauseUnwrap(t *testing.T) {
	sentinel := errors.New("boom")
	c := &Cause{Component: "db", Index: 1, Phase: PhaseStop, Err: fmt.Errorf("closing: %w", sentinel)}

	if !errors.Is(c, sentinel) {
		t.Error("expected errors.Is to reach the underlying error")
	}
}

func TestAggregateAppendOrder(t *testing.T) {
	agg := NewAggregate()
	agg.Append(&Cause{Component: "a", Index: 0, Phase: PhaseStart, Err: errors.New("one")})
	agg.Append(&Cause{Component: "b", Index: 1, Phase: PhaseStart, Err: errors.New("two")})
	agg.Append(&Cause{Component: "c", Index: 2, Phase: PhaseStop, Err: errors.New("three")})

	causes := agg.Causes()
	if len(causes) != 3 {
		t.Fatalf("expected 3 causes, got %d", len(causes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if causes[i].Component != want {
			t.Errorf("cause %d: expected component %q, got %q", i, want, causes[i].Component)
		}
	}
}

func TestAggregateEmpty(t *testing.T) {
	agg := NewAggregate()

	if !agg.Empty() {
		t.Error("expected new aggregate to be empty")
	}
	if agg.Err() != nil {
		t.Errorf("expected nil error for empty aggregate, got %v", agg.Err())
	}

	agg.Append(&Cause{Component: "a", Index: 0, Phase: PhaseStart, Err: errors.New("one")})

	if agg.Empty() {
		t.Error("expected aggregate with a cause to be non-empty")
	}
	if agg.Err() == nil {
		t.Error("expected non-nil error for non-empty aggregate")
	}
}

func TestAggregateCombine(t *testing.T) {
	a := NewAggregate()
	a.Append(&Cause{Component: "a", Index: 0, Phase: PhaseStart, Err: errors.New("one")})
	a.Append(&Cause{Component: "b", Index: 1, Phase: PhaseStart, Err: errors.New("two")})

	b := NewAggregate()
	b.Append(&Cause{Component: "c", Index: 2, Phase: PhaseStop, Err: errors.New("three")})

	combined := a.Combine(b)

	causes := combined.Causes()
	if len(causes) != 3 {
		t.Fatalf("expected 3 combined causes, got %d", len(causes))
	}
	for i, want := range []string{"a", "b", "c"} {
		if causes[i].Component != want {
			t.Errorf("cause %d: expected component %q, got %q", i, want, causes[i].Component)
		}
	}

	// Inputs must be left untouched.
	if a.Len() != 2 {
		t.Errorf("expected first input to keep 2 causes, got %d", a.Len())
	}
	if b.Len() != 1 {
		t.Errorf("expected second input to keep 1 cause, got %d", b.Len())
	}

	t.Run("nil input is treated as empty", func(t *testing.T) {
		if got := a.Combine(nil).Len(); got != 2 {
			t.Errorf("expected 2 causes, got %d", got)
		}
	})
}

func TestAggregateErrorRendering(t *testing.T) {
	agg := NewAggregate()
	agg.Append(&Cause{Component: "web", Index: 0, Phase: PhaseStart, Err: errors.New("listen failed")})
	agg.Append(&Cause{Component: "worker", Index: 1, Phase: PhaseStop, Err: errors.New("drain failed")})

	msg := agg.Error()
	if !strings.Contains(msg, "web [start]: listen failed") {
		t.Errorf("expected first cause in message, got %q", msg)
	}
	if !strings.Contains(msg, "worker [stop]: drain failed") {
		t.Errorf("expected second cause in message, got %q", msg)
	}
	if len(strings.Split(msg, "\n")) != 2 {
		t.Errorf("expected one cause per line, got %q", msg)
	}
}

func TestAggregateErrorsAs(t *testing.T) {
	sentinel := errors.New("boom")
	agg := NewAggregate()
	agg.Append(&Cause{Component: "web", Index: 0, Phase: PhaseStart, Err: sentinel})

	err := agg.Err()

	var cause *Cause
	if !errors.As(err, &cause) {
		t.Fatal("expected errors.As to find a cause")
	}
	if cause.Component != "web" {
		t.Errorf("expected component %q, got %q", "web", cause.Component)
	}
	if !errors.Is(err, sentinel) {
		t.Error("expected errors.Is to reach the underlying error")
	}

	var back *Aggregate
	if !errors.As(err, &back) {
		t.Fatal("expected errors.As to recover the aggregate")
	}
	if back.Len() != 1 {
		t.Errorf("expected recovered aggregate with 1 cause, got %d", back.Len())
	}
}

func TestAggregateConcurrentAppend(t *testing.T) {
	agg := NewAggregate()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			agg.Append(&Cause{Component: fmt.Sprintf("c%d", i), Index: i, Phase: PhaseStart, Err: errors.New("x")})
		}(i)
	}
	wg.Wait()

	if agg.Len() != 50 {
		t.Errorf("expected 50 causes, got %d", agg.Len())
	}
}
