package reactor

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
)

// EffectRef represents a running side effect that can be stopped.
//
// Effects run immediately upon creation and re-run, synchronously and
// eagerly, whenever any dependency it read during its last run changes.
// Unlike Computed, an effect never goes merely "stale"; change
// propagation reaches it as an immediate re-execution.
//
// Use Stop to clean up the effect when it is no longer needed.
type EffectRef interface {
	Stop()
}

// effect is the internal implementation of EffectRef.
type effect struct {
	fn      func() func()
	cleanup func()

	deps    []depEdge
	selfRef weakObserverRef

	mu      sync.Mutex
	stopped atomic.Bool

	name    string
	onPanic func(err any, stack []byte)
}

// Effect creates an effect that runs immediately and re-runs whenever any
// signal or computed it reads changes. Unlike Effect's dependencies in
// most frameworks, these are discovered automatically: there is no
// dependency list to pass in.
func Effect(fn func()) EffectRef {
	return EffectWithCleanup(func() func() {
		fn()
		return nil
	})
}

// EffectWithCleanup creates an effect whose function returns a cleanup
// callback. The cleanup runs before the next re-execution and when Stop
// is called.
func EffectWithCleanup(fn func() func()) EffectRef {
	return EffectWithOptions(fn, EffectOptions{})
}

// EffectWithOptions creates an effect with a custom panic handler and/or
// diagnostic name.
func EffectWithOptions(fn func() func(), opts EffectOptions) EffectRef {
	e := &effect{
		fn:      fn,
		name:    opts.Name,
		onPanic: opts.OnPanic,
	}
	e.selfRef = newWeakObserverRef(e, func(p *effect) observer { return p })
	fireOnCreated(e.describe())
	if e.name != "" {
		fireOnNamed(e.describe())
	}
	e.run()
	return e
}

// describe builds the NodeInfo an effect reports to the hook subsystem.
// effect is an observer, not an Observable, so it cannot use the
// describe(Observable) helper the other node types share.
func (e *effect) describe() NodeInfo {
	return NodeInfo{Name: e.name, Kind: "effect"}
}

// run executes fn under a fresh tracking frame, reconciles the discovered
// dependency set, and runs the previous cleanup first. Every step has
// panic recovery so one failing effect can't take down others notified
// in the same write.
func (e *effect) run() {
	if e.stopped.Load() {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.stopped.Load() {
		return
	}

	if e.cleanup != nil {
		oldCleanup := e.cleanup
		e.cleanup = nil
		e.guarded("cleanup", oldCleanup)
	}

	pushFrame(e)
	var newCleanup func()
	func() {
		defer func() {
			deps := popFrame()
			e.reconcileDeps(deps)
			if r := recover(); r != nil {
				e.handlePanic(r)
			}
		}()
		newCleanup = e.fn()
	}()
	e.cleanup = newCleanup
}

func (e *effect) guarded(_ string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			e.handlePanic(r)
		}
	}()
	fn()
}

// reconcileDeps mirrors Computed.reconcileDepsLocked: subscribe to newly
// discovered dependencies, unsubscribe from ones no longer read. e.mu is
// already held by the caller.
func (e *effect) reconcileDeps(newDeps []Observable) {
	previous := e.deps
	keep := make(map[Observable]depEdge, len(previous))
	for _, d := range previous {
		keep[d.obs] = d
	}

	next := make([]depEdge, 0, len(newDeps))
	newSet := make(map[Observable]struct{}, len(newDeps))
	for _, obs := range newDeps {
		newSet[obs] = struct{}{}
		if d, ok := keep[obs]; ok {
			next = append(next, d)
			continue
		}
		id := obs.subscribe(e.selfRef)
		next = append(next, depEdge{obs: obs, subID: id})
	}

	for _, d := range previous {
		if _, ok := newSet[d.obs]; !ok {
			d.obs.unsubscribe(d.subID)
		}
	}

	e.deps = next
}

func (e *effect) handlePanic(r any) {
	if e.onPanic != nil {
		e.onPanic(r, debug.Stack())
		return
	}
	fireOnPanic(e.describe(), r, debug.Stack())
}

// onDependencyChanged implements observer: an effect re-runs immediately,
// synchronously, on the goroutine that triggered the write that notified
// it. There is no staleness state to defer the work to a later read. A
// notification that arrives while this effect's own run is in progress on
// the same goroutine (e.g. a Computed it reads re-evaluating and reporting
// a change) is skipped rather than re-entering run, which would block on
// e.mu; the read that caused it already hands the new value to that run.
func (e *effect) onDependencyChanged(_ Observable) {
	if v, ok := trackingStacks.Load(goroutineID()); ok {
		for _, f := range v.([]*trackFrame) {
			if f.node == observer(e) {
				return
			}
		}
	}
	e.run()
}

// Stop cancels all dependency subscriptions and runs the final cleanup.
// Safe to call more than once.
func (e *effect) Stop() {
	if e.stopped.Swap(true) {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.cleanup != nil {
		cleanup := e.cleanup
		e.cleanup = nil
		e.guarded("final cleanup", cleanup)
	}

	for _, d := range e.deps {
		d.obs.unsubscribe(d.subID)
	}
	e.deps = nil
}
