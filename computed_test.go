package reactor

import (
	"sync/atomic"
	"testing"
)

// TestComputed_S1 mirrors the "read; write; read" scenario: the thunk
// runs exactly once per distinct value of x.
func TestComputed_S1(t *testing.T) {
	x := NewSignal(2)
	var thunkRuns int32
	d := NewComputed(func() int {
		atomic.AddInt32(&thunkRuns, 1)
		return 2 * x.Get()
	})

	if got := d.Get(); got != 4 {
		t.Errorf("d.Get() = %d, want 4", got)
	}
	x.Set(5)
	if got := d.Get(); got != 10 {
		t.Errorf("after x<-5, d.Get() = %d, want 10", got)
	}
	if got := atomic.LoadInt32(&thunkRuns); got != 2 {
		t.Errorf("thunk ran %d times, want exactly 2", got)
	}
}

// TestComputed_S2 mirrors the chained short-circuit scenario: writing the
// same value to x means y's cached result is unchanged, so z never
// recomputes beyond its own first evaluation.
func TestComputed_S2(t *testing.T) {
	x := NewSignal(3)
	var yRuns, zRuns int32
	y := NewComputed(func() int {
		atomic.AddInt32(&yRuns, 1)
		v := x.Get()
		return v * v
	})
	z := NewComputed(func() int {
		atomic.AddInt32(&zRuns, 1)
		return y.Get() + 1
	})

	if got := z.Get(); got != 10 {
		t.Errorf("z.Get() = %d, want 10", got)
	}
	x.Set(3) // same value: no real change
	if got := z.Get(); got != 10 {
		t.Errorf("after x<-3 (no change), z.Get() = %d, want 10", got)
	}
	if got := atomic.LoadInt32(&yRuns); got != 1 {
		t.Errorf("y's thunk ran %d times, want 1 (re-eval short-circuits via detector)", got)
	}
	if got := atomic.LoadInt32(&zRuns); got != 1 {
		t.Errorf("z's thunk ran %d times, want 1 total", got)
	}
}

// TestComputed_S4 mirrors the conditional-greeting scenario, using a
// Go-idiomatic stand-in for "None": the empty-string zero value.
func TestComputed_S4(t *testing.T) {
	const none = ""
	u := NewSignal(none)
	g := NewComputed(func() string {
		if u.Get() != none {
			return "hi " + u.Get()
		}
		return "nope"
	})

	if got := g.Get(); got != "nope" {
		t.Errorf("g.Get() = %q, want %q", got, "nope")
	}
	u.Set("bob")
	if got := g.Get(); got != "hi bob" {
		t.Errorf("after u<-bob, g.Get() = %q, want %q", got, "hi bob")
	}
}

// TestComputed_S5 mirrors the array-element mutation scenario.
func TestComputed_S5(t *testing.T) {
	nums := NewSignal([]int{1, 2, 3})
	s := NewComputed(func() int {
		sum := 0
		for _, n := range nums.Get() {
			sum += n
		}
		return sum
	})

	if got := s.Get(); got != 6 {
		t.Errorf("s.Get() = %d, want 6", got)
	}
	nums.Mutate(func(v *[]int) { (*v)[0] = 9 })
	if got := s.Get(); got != 14 {
		t.Errorf("after nums[0]<-9, s.Get() = %d, want 14", got)
	}
}

// TestComputed_S6 mirrors the self-referential cycle scenario.
func TestComputed_S6(t *testing.T) {
	var a, b *Computed[int]
	a = NewComputed(func() int { return b.Get() })
	b = NewComputed(func() int { return a.Get() })

	_, err := a.TryGet()
	if err == nil {
		t.Fatal("expected an error reading a cyclic pair, got nil")
	}
	if _, ok := err.(*CyclicEvaluationError); !ok {
		t.Errorf("error = %T, want *CyclicEvaluationError", err)
	}
}

func TestComputed_GetPanicsOnCycle(t *testing.T) {
	var a, b *Computed[int]
	a = NewComputed(func() int { return b.Get() })
	b = NewComputed(func() int { return a.Get() })

	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected Get to panic on a cycle")
		}
		if _, ok := r.(*CyclicEvaluationError); !ok {
			t.Errorf("panic value = %T, want *CyclicEvaluationError", r)
		}
	}()
	a.Get()
}

func TestComputed_ThunkFailureRevertsToStale(t *testing.T) {
	shouldPanic := NewSignal(true)
	c := NewComputed(func() int {
		if shouldPanic.Get() {
			panic("boom")
		}
		return 42
	})

	_, err := c.TryGet()
	if err == nil {
		t.Fatal("expected an error from a panicking thunk")
	}
	tf, ok := err.(*ThunkFailureError)
	if !ok {
		t.Fatalf("error = %T, want *ThunkFailureError", err)
	}
	if tf.Cause != "boom" {
		t.Errorf("ThunkFailureError.Cause = %v, want %q", tf.Cause, "boom")
	}

	// A subsequent read retries rather than staying poisoned.
	shouldPanic.Set(false)
	v, err := c.TryGet()
	if err != nil {
		t.Fatalf("retry after fixing dependency: unexpected error %v", err)
	}
	if v != 42 {
		t.Errorf("retry: got %d, want 42", v)
	}
}

func TestComputed_ThunkFailureInvokesOnPanic(t *testing.T) {
	var captured any
	c := NewComputedWithOptions(func() int {
		panic("kaboom")
	}, Options[int]{
		OnPanic: func(err any, stack []byte) { captured = err },
	})

	if _, err := c.TryGet(); err == nil {
		t.Fatal("expected an error from a panicking thunk")
	}
	tf, ok := captured.(*ThunkFailureError)
	if !ok {
		t.Fatalf("OnPanic received %T, want *ThunkFailureError", captured)
	}
	if tf.Cause != "kaboom" {
		t.Errorf("ThunkFailureError.Cause = %v, want %q", tf.Cause, "kaboom")
	}
}

func TestComputed_NeverRecomputesWithoutAWrite(t *testing.T) {
	x := NewSignal(1)
	var runs int32
	c := NewComputed(func() int {
		atomic.AddInt32(&runs, 1)
		return x.Get()
	})

	c.Get()
	c.Get()
	c.Get()

	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("thunk ran %d times across repeated reads with no write, want 1", got)
	}
}

func TestComputed_Invalidate(t *testing.T) {
	// external is read by the thunk but is not itself a reactive node, so
	// the engine has no way to observe it changing. This is exactly the
	// "rewired through a channel the engine can't see" case Invalidate
	// exists for.
	var external int
	c := NewComputed(func() int { return external })

	if got := c.Get(); got != 0 {
		t.Errorf("first Get() = %d, want 0", got)
	}

	external = 1
	if got := c.Get(); got != 0 {
		t.Errorf("Get() after external changed without Invalidate = %d, want 0 (Fresh cache, no deps to notice)", got)
	}

	c.Invalidate()
	if got := c.Get(); got != 1 {
		t.Errorf("after Invalidate, Get() = %d, want 1", got)
	}
}

func TestComputed_Subscribe(t *testing.T) {
	x := NewSignal(1)
	c := NewComputed(func() int { return x.Get() * 10 })

	var notified int32
	unsub := c.SubscribeForever(func(v int) { atomic.AddInt32(&notified, 1) })
	defer unsub()

	c.Get() // first evaluation: cached goes from unset to 10, counts as a change
	x.Set(2)
	c.Get() // recompute: cached goes from 10 to 20, another change

	if got := atomic.LoadInt32(&notified); got != 2 {
		t.Errorf("subscriber notified %d times, want 2", got)
	}
}

func TestComputed_DependencyOnAnotherComputed(t *testing.T) {
	x := NewSignal(2)
	doubled := NewComputed(func() int { return x.Get() * 2 })
	quadrupled := NewComputed(func() int { return doubled.Get() * 2 })

	if got := quadrupled.Get(); got != 8 {
		t.Errorf("quadrupled.Get() = %d, want 8", got)
	}
	x.Set(5)
	if got := quadrupled.Get(); got != 20 {
		t.Errorf("after x<-5, quadrupled.Get() = %d, want 20", got)
	}
}

func TestComputed_DynamicDependencySet(t *testing.T) {
	useA := NewSignal(true)
	a := NewSignal(1)
	b := NewSignal(2)

	var runs int32
	c := NewComputed(func() int {
		atomic.AddInt32(&runs, 1)
		if useA.Get() {
			return a.Get()
		}
		return b.Get()
	})

	if got := c.Get(); got != 1 {
		t.Errorf("c.Get() = %d, want 1", got)
	}

	// b is not yet a dependency; changing it must not trigger a recompute.
	b.Set(200)
	if got := atomic.LoadInt32(&runs); got != 1 {
		t.Errorf("changing an untracked dependency caused a recompute: runs = %d", got)
	}

	useA.Set(false)
	if got := c.Get(); got != 200 {
		t.Errorf("after switching to b, c.Get() = %d, want 200", got)
	}

	// a is no longer a dependency.
	runsBefore := atomic.LoadInt32(&runs)
	a.Set(999)
	if got := atomic.LoadInt32(&runs); got != runsBefore {
		t.Errorf("changing a dropped dependency caused a recompute")
	}
}

// TestComputed_VersionFastPathSkippedForComputedDep guards against the
// version fast path trusting a Computed dependency's unchanged version
// number: onDependencyChanged moves a Computed to Stale without bumping
// its own version, so a parent that only compares versions (rather than
// recomputing) could read a dependency's stale cached value. This never
// reads the intermediate Computed directly, only through the parent, so
// the parent's own recompute is the only thing that can pick up the
// change.
func TestComputed_VersionFastPathSkippedForComputedDep(t *testing.T) {
	x := NewSignal(1)
	mid := NewComputed(func() int { return x.Get() * 10 })
	top := NewComputed(func() int { return mid.Get() + 1 })

	if got := top.Get(); got != 11 {
		t.Errorf("top.Get() = %d, want 11", got)
	}

	x.Set(2)
	if got := top.Get(); got != 21 {
		t.Errorf("after x<-2, top.Get() = %d, want 21 (not a stale 11)", got)
	}
}
