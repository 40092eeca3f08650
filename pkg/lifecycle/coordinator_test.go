package lifecycle

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
)

func TestCoordinatorStopsInReverseOrder(t *testing.T) {
	var order []string
	mkComponent := func(name string) *fakeComponent {
		return &fakeComponent{stopFn: func(_ context.Context) error {
			order = append(order, name)
			return nil
		}}
	}

	c := &coordinator{regs: []registration{
		{index: 0, name: "a", component: mkComponent("a")},
		{index: 1, name: "b", component: mkComponent("b")},
		{index: 2, name: "c", component: mkComponent("c")},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	agg := c.stop(ctx)

	if !agg.Empty() {
		t.Fatalf("expected clean shutdown, got %v", agg.Err())
	}
	want := []string{"c", "b", "a"}
	if len(order) != len(want) {
		t.Fatalf("expected %d stops, got %v", len(want), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected stop order %v, got %v", want, order)
		}
	}
}

func TestCoordinatorSharesOneDeadline(t *testing.T) {
	slowStop := func(d time.Duration) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			select {
			case <-time.After(d):
				return nil
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	c := &coordinator{regs: []registration{
		{index: 0, name: "a", component: &fakeComponent{stopFn: slowStop(40 * time.Millisecond)}},
		{index: 1, name: "b", component: &fakeComponent{stopFn: slowStop(40 * time.Millisecond)}},
		{index: 2, name: "c", component: &fakeComponent{stopFn: slowStop(40 * time.Millisecond)}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	start := time.Now()
	agg := c.stop(ctx)
	elapsed := time.Since(start)

	// Three 40ms stops against a shared 100ms budget: the last one in the
	// walk is cut off instead of stretching the total to 120ms.
	if elapsed >= 120*time.Millisecond {
		t.Fatalf("shutdown took %v, expected the shared 100ms budget to bound it", elapsed)
	}

	causes := agg.Causes()
	if len(causes) != 1 {
		t.Fatalf("expected exactly 1 deadline cause, got %v", agg.Err())
	}
	if causes[0].Component != "a" || causes[0].Phase != PhaseStop {
		t.Errorf("expected stop cause from %q, got %+v", "a", causes[0])
	}
	if !errors.Is(causes[0].Err, context.DeadlineExceeded) {
		t.Errorf("expected deadline exceeded cause, got %v", causes[0].Err)
	}
}

func TestCoordinatorProceedsPastDeadline(t *testing.T) {
	unblock := make(chan struct{})
	defer close(unblock)

	// Stops invoked after the deadline expired may be abandoned before
	// their goroutine runs, so invocations are collected over a channel.
	invoked := make(chan string, 2)
	record := func(name string) func(ctx context.Context) error {
		return func(ctx context.Context) error {
			invoked <- name
			return ctx.Err()
		}
	}

	c := &coordinator{regs: []registration{
		{index: 0, name: "a", component: &fakeComponent{stopFn: record("a")}},
		{index: 1, name: "b", component: &fakeComponent{stopFn: record("b")}},
		{index: 2, name: "c", component: &fakeComponent{stopFn: func(_ context.Context) error {
			// Ignores the deadline entirely.
			<-unblock
			return nil
		}}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	agg := c.stop(ctx)

	// The hanging component burned the whole budget, but the walk still
	// visited every remaining component.
	seen := make(map[string]bool)
	for i := 0; i < 2; i++ {
		select {
		case name := <-invoked:
			seen[name] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("expected both remaining components visited, saw %v", seen)
		}
	}
	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected both remaining components visited, saw %v", seen)
	}

	if agg.Len() != 3 {
		t.Fatalf("expected 3 causes, got %v", agg.Err())
	}
	for _, cause := range agg.Causes() {
		if !errors.Is(cause.Err, context.DeadlineExceeded) {
			t.Errorf("expected deadline cause for %q, got %v", cause.Component, cause.Err)
		}
	}
}

func TestCoordinatorStopFailuresAreAllRetained(t *testing.T) {
	failStop := func(msg string) func(ctx context.Context) error {
		return func(_ context.Context) error { return errors.New(msg) }
	}

	c := &coordinator{regs: []registration{
		{index: 0, name: "a", component: &fakeComponent{stopFn: failStop("a failed")}},
		{index: 1, name: "b", component: &fakeComponent{}},
		{index: 2, name: "c", component: &fakeComponent{stopFn: failStop("c failed")}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	agg := c.stop(ctx)

	causes := agg.Causes()
	if len(causes) != 2 {
		t.Fatalf("expected 2 causes, got %v", agg.Err())
	}
	// Reverse stop order: c fails first, then a.
	if causes[0].Component != "c" || causes[1].Component != "a" {
		t.Errorf("expected causes in stop order [c a], got %v", causes)
	}
}

func TestCoordinatorStopPanicIsIsolated(t *testing.T) {
	var invoked []string
	record := func(name string) func(ctx context.Context) error {
		return func(_ context.Context) error {
			invoked = append(invoked, name)
			return nil
		}
	}

	c := &coordinator{regs: []registration{
		{index: 0, name: "a", component: &fakeComponent{stopFn: record("a")}},
		{index: 1, name: "b", component: &fakeComponent{stopFn: func(_ context.Context) error {
			panic("stop blew up")
		}}},
		{index: 2, name: "c", component: &fakeComponent{stopFn: record("c")}},
	}}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	agg := c.stop(ctx)

	if len(invoked) != 2 || invoked[0] != "c" || invoked[1] != "a" {
		t.Fatalf("expected siblings stopped around the panic, got %v", invoked)
	}
	causes := agg.Causes()
	if len(causes) != 1 {
		t.Fatalf("expected 1 cause, got %v", agg.Err())
	}
	if causes[0].Component != "b" || causes[0].Phase != PhaseStop {
		t.Errorf("expected stop cause from %q, got %+v", "b", causes[0])
	}
	if !strings.Contains(causes[0].Err.Error(), "panic: stop blew up") {
		t.Errorf("expected panic message in cause, got %q", causes[0].Err)
	}
}

func TestCoordinatorReleaseHooks(t *testing.T) {
	t.Run("hooks run after all stops in reverse registration order", func(t *testing.T) {
		var events []string
		mkComponent := func(name string) *fakeComponent {
			return &fakeComponent{stopFn: func(_ context.Context) error {
				events = append(events, "stop:"+name)
				return nil
			}}
		}

		c := &coordinator{
			regs: []registration{
				{index: 0, name: "a", component: mkComponent("a")},
				{index: 1, name: "b", component: mkComponent("b")},
			},
			releases: []releaseHook{
				{name: "pool", fn: func() error {
					events = append(events, "release:pool")
					return nil
				}},
				{name: "lock", fn: func() error {
					events = append(events, "release:lock")
					return nil
				}},
			},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		agg := c.stop(ctx)
		if !agg.Empty() {
			t.Fatalf("expected clean shutdown, got %v", agg.Err())
		}

		want := []string{"stop:b", "stop:a", "release:lock", "release:pool"}
		if len(events) != len(want) {
			t.Fatalf("expected events %v, got %v", want, events)
		}
		for i := range want {
			if events[i] != want[i] {
				t.Fatalf("expected events %v, got %v", want, events)
			}
		}
	})

	t.Run("hook failure is recorded", func(t *testing.T) {
		c := &coordinator{
			regs: []registration{
				{index: 0, name: "a", component: &fakeComponent{}},
			},
			releases: []releaseHook{
				{name: "pool", fn: func() error { return errors.New("close failed") }},
			},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		agg := c.stop(ctx)

		causes := agg.Causes()
		if len(causes) != 1 {
			t.Fatalf("expected 1 cause, got %v", agg.Err())
		}
		if causes[0].Component != "pool" || causes[0].Phase != PhaseRelease {
			t.Errorf("expected release cause from %q, got %+v", "pool", causes[0])
		}
	})

	t.Run("hook panic is recorded", func(t *testing.T) {
		c := &coordinator{
			releases: []releaseHook{
				{name: "pool", fn: func() error { panic("release blew up") }},
			},
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		agg := c.stop(ctx)

		causes := agg.Causes()
		if len(causes) != 1 {
			t.Fatalf("expected 1 cause, got %v", agg.Err())
		}
		if !strings.Contains(causes[0].Err.Error(), "panic: release blew up") {
			t.Errorf("expected panic message in cause, got %q", causes[0].Err)
		}
	})
}
