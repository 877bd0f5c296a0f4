package reactor

import (
	"context"
	"runtime/debug"
	"sync"
)

type computedState uint8

const (
	stateStale computedState = iota
	stateEvaluating
	stateFresh
)

// depEdge is one entry of a Computed's dependency set: the Observable
// read during the last evaluation, the subscription id used to
// unsubscribe later, and the dependency's version as of that evaluation,
// the "last_seen_dep_version" the fast path compares against.
type depEdge struct {
	obs   Observable
	subID uint64
	seen  uint64
}

// Computed is a lazily evaluated derived reactive value. It discovers its
// dependencies automatically: reading a Signal or another Computed inside
// thunk registers it as a dependency for as long as the current
// evaluation keeps reading it. The dependency set is rebuilt from scratch
// on every evaluation, so a thunk whose control flow reads a different
// set of signals between runs is tracked correctly either way.
type Computed[T any] struct {
	mu sync.Mutex

	thunk func() T
	state computedState

	cached      T
	initialized bool
	ver         uint64

	deps                  []depEdge
	forceReeval           bool
	pendingFromEvaluating bool

	name string

	registry subscriberRegistry
	selfRef  weakObserverRef

	callbacks   map[uint64]func(T)
	nextCbID    uint64
	callbacksMu sync.Mutex

	equal   EqualFunc[T]
	onPanic func(err any, stack []byte)
}

// NewComputed creates a lazy derived value. Nothing is evaluated until
// the first Get or TryGet call.
func NewComputed[T any](thunk func() T) *Computed[T] {
	return NewComputedWithOptions(thunk, Options[T]{})
}

// NewComputedWithOptions creates a Computed with a custom equality
// override and/or panic handler.
func NewComputedWithOptions[T any](thunk func() T, opts Options[T]) *Computed[T] {
	c := &Computed[T]{
		thunk:     thunk,
		state:     stateStale,
		name:      opts.Name,
		equal:     opts.Equal,
		onPanic:   opts.OnPanic,
		callbacks: make(map[uint64]func(T)),
	}
	c.selfRef = newWeakObserverRef(c, func(p *Computed[T]) observer { return p })
	fireOnCreated(describe(c))
	if c.name != "" {
		fireOnNamed(describe(c))
	}
	return c
}

// isComputed is a marker used by hooks.go to classify a NodeInfo.Kind.
func (c *Computed[T]) isComputed() {}

// Get returns the current value, recomputing if the state is Stale. It
// panics with a *CyclicEvaluationError or *ThunkFailureError if
// evaluation fails; use TryGet for an explicit error return instead, a
// cycle is closer to a programmer error than a result most callers need
// to branch on inline.
func (c *Computed[T]) Get() T {
	v, err := c.TryGet()
	if err != nil {
		panic(err)
	}
	return v
}

// Value is an alias for Get.
func (c *Computed[T]) Value() T { return c.Get() }

// TryGet returns the current value and, on CyclicEvaluation or
// ThunkFailure, a non-nil error instead of panicking.
func (c *Computed[T]) TryGet() (T, error) {
	c.mu.Lock()
	switch c.state {
	case stateEvaluating:
		name := c.name
		c.mu.Unlock()
		return zeroValue[T](), &CyclicEvaluationError{Name: name}
	case stateFresh:
		v := c.cached
		c.mu.Unlock()
		trackRead(c)
		fireOnRead(describe(c))
		return v, nil
	}

	// Stale: try the dependency-version fast path before paying for a
	// full re-evaluation.
	if !c.forceReeval && c.initialized && c.allDepsUnchangedLocked() {
		c.state = stateFresh
		v := c.cached
		c.mu.Unlock()
		trackRead(c)
		fireOnRead(describe(c))
		return v, nil
	}

	c.state = stateEvaluating
	c.forceReeval = false
	c.pendingFromEvaluating = false
	c.mu.Unlock()

	result, newDeps, evalErr := c.evaluate()

	c.mu.Lock()
	if evalErr != nil {
		c.state = stateStale
		c.mu.Unlock()
		c.handlePanic(evalErr)
		return zeroValue[T](), evalErr
	}

	c.reconcileDepsLocked(newDeps)
	wasPending := c.pendingFromEvaluating
	c.pendingFromEvaluating = false

	isChange := !c.initialized || !c.isUnchangedLocked(c.cached, result)
	if isChange {
		c.cached = result
		c.initialized = true
		c.ver++
	}

	if wasPending {
		c.state = stateStale
	} else {
		c.state = stateFresh
	}
	v := c.cached
	var cbs []func(T)
	if isChange {
		cbs = c.snapshotCallbacksLocked()
	}
	c.mu.Unlock()

	trackRead(c)
	fireOnRead(describe(c))
	if isChange {
		for _, fn := range cbs {
			c.runCallback(fn, v)
		}
		fireOnUpdated(describe(c))
		if failures := c.registry.notify(c); len(failures) > 0 {
			c.handlePanic(&ObserverFailureError{Failures: failures})
		}
	}
	if wasPending {
		// A dependency changed again while we were evaluating; cascade
		// staleness to our own subscribers even though we just produced
		// a value that may already be outdated.
		c.registry.notify(c)
	}
	return v, nil
}

func (c *Computed[T]) isUnchangedLocked(old, new_ T) bool {
	if c.equal != nil {
		return c.equal(old, new_)
	}
	return !changed(old, new_)
}

// allDepsUnchangedLocked reports whether every recorded dependency's
// version still equals the value seen at the last evaluation. It is only
// sound when every dependency is fastPathEligible: a Computed dependency
// goes Stale without bumping its own version (onDependencyChanged never
// touches ver), so its version can still read as "unchanged" even though
// one of its own upstream dependencies has actually changed. Rather than
// forcing such a dependency current just to trust this shortcut, the
// fast path is skipped entirely whenever any dependency is a Computed
// (or anything else that isn't fastPathEligible). c.mu must be held.
func (c *Computed[T]) allDepsUnchangedLocked() bool {
	if len(c.deps) == 0 {
		return false
	}
	for _, e := range c.deps {
		if !e.obs.fastPathEligible() {
			return false
		}
		if e.obs.version() != e.seen {
			return false
		}
	}
	return true
}

// evaluate runs the thunk under a fresh tracking frame, outside of c.mu,
// and classifies any panic: one that is already one of this package's own
// errors (propagated from a nested Computed) is forwarded unchanged;
// anything else is wrapped as ThunkFailureError.
func (c *Computed[T]) evaluate() (result T, newDeps []Observable, err error) {
	pushFrame(c)
	defer func() {
		newDeps = popFrame()
		if r := recover(); r != nil {
			if propagated, ok := isReactorFailure(r); ok {
				err = propagated
				return
			}
			err = &ThunkFailureError{Name: c.name, Cause: r}
		}
	}()
	result = c.thunk()
	return result, nil, nil
}

// reconcileDepsLocked diffs the previous dependency set against the one
// just discovered, subscribing to new dependencies and unsubscribing
// from dropped ones, and records each current dependency's version. c.mu
// must be held.
func (c *Computed[T]) reconcileDepsLocked(newDeps []Observable) {
	previous := c.deps
	keep := make(map[Observable]depEdge, len(previous))
	for _, e := range previous {
		keep[e.obs] = e
	}

	next := make([]depEdge, 0, len(newDeps))
	newSet := make(map[Observable]struct{}, len(newDeps))
	for _, obs := range newDeps {
		newSet[obs] = struct{}{}
		if e, ok := keep[obs]; ok {
			e.seen = obs.version()
			next = append(next, e)
			continue
		}
		id := obs.subscribe(c.selfRef)
		next = append(next, depEdge{obs: obs, subID: id, seen: obs.version()})
	}

	for _, e := range previous {
		if _, ok := newSet[e.obs]; !ok {
			e.obs.unsubscribe(e.subID)
		}
	}

	c.deps = next
}

func (c *Computed[T]) snapshotCallbacksLocked() []func(T) {
	c.callbacksMu.Lock()
	defer c.callbacksMu.Unlock()
	cbs := make([]func(T), 0, len(c.callbacks))
	for _, fn := range c.callbacks {
		cbs = append(cbs, fn)
	}
	return cbs
}

func (c *Computed[T]) runCallback(fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			c.handlePanic(r)
		}
	}()
	fn(value)
}

func (c *Computed[T]) handlePanic(r any) {
	if c.onPanic != nil {
		c.onPanic(r, debug.Stack())
		return
	}
	fireOnPanic(describe(c), r, debug.Stack())
}

// onDependencyChanged implements observer: it marks this node Stale
// (without recomputing) and recursively cascades the same staleness
// notification to its own subscribers: the "stale wave" is bookkeeping
// only, never a recompute. If this node is itself mid-evaluation when
// notified, the staleness is recorded via pendingFromEvaluating and
// re-applied once that evaluation finishes.
func (c *Computed[T]) onDependencyChanged(_ Observable) {
	c.mu.Lock()
	switch c.state {
	case stateFresh:
		c.state = stateStale
	case stateEvaluating:
		c.pendingFromEvaluating = true
		c.mu.Unlock()
		return
	default: // already Stale: already cascaded, nothing further to do
		c.mu.Unlock()
		return
	}
	c.mu.Unlock()

	if failures := c.registry.notify(c); len(failures) > 0 {
		c.handlePanic(&ObserverFailureError{Failures: failures})
	}
}

// Invalidate forces Stale, for use when a dependency was rewired through
// a channel the engine can't observe (e.g. a struct field reseated to
// point at a different Signal). The next read is guaranteed to re-run the
// thunk, bypassing the dependency-version fast path. Invalidate does not
// itself notify subscribers or bump version; propagation is deferred to
// the next read, matching the laziness everywhere else in the engine.
func (c *Computed[T]) Invalidate() {
	c.mu.Lock()
	c.state = stateStale
	c.forceReeval = true
	c.mu.Unlock()
}

// Subscribe registers fn to run whenever the computed value changes; the
// subscription is canceled automatically when ctx is done. Subscribing
// does not itself trigger an evaluation; fn only fires after a read
// (direct or via another dependent) has already recomputed the value and
// found it changed.
func (c *Computed[T]) Subscribe(ctx context.Context, fn func(T)) Unsubscribe {
	c.callbacksMu.Lock()
	id := c.nextCbID
	c.nextCbID++
	c.callbacks[id] = fn
	c.callbacksMu.Unlock()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			c.callbacksMu.Lock()
			delete(c.callbacks, id)
			c.callbacksMu.Unlock()
			close(done)
		case <-done:
		}
	}()

	return func() {
		c.callbacksMu.Lock()
		delete(c.callbacks, id)
		c.callbacksMu.Unlock()
		select {
		case <-done:
		default:
			close(done)
		}
	}
}

// SubscribeForever is Subscribe(context.Background(), fn).
func (c *Computed[T]) SubscribeForever(fn func(T)) Unsubscribe {
	return c.Subscribe(context.Background(), fn)
}

// Name attaches a display name for diagnostics and returns c for
// chaining.
func (c *Computed[T]) Name(name string) *Computed[T] {
	c.mu.Lock()
	c.name = name
	c.mu.Unlock()
	fireOnNamed(describe(c))
	return c
}

// Cleanup unsubscribes from every current dependency. Call it to drop a
// Computed's graph edges explicitly rather than waiting for it (and its
// weakly-held subscriptions) to be collected.
func (c *Computed[T]) Cleanup() {
	c.mu.Lock()
	deps := c.deps
	c.deps = nil
	c.mu.Unlock()
	for _, e := range deps {
		e.obs.unsubscribe(e.subID)
	}
}

func (c *Computed[T]) version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ver
}

// fastPathEligible is always false: a Computed's version does not
// advance when it goes Stale, so a parent Computed cannot trust this
// version alone to prove nothing changed (see allDepsUnchangedLocked).
func (c *Computed[T]) fastPathEligible() bool { return false }

func (c *Computed[T]) observableName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.name
}

func (c *Computed[T]) subscribe(ref weakObserverRef) uint64 {
	return c.registry.subscribe(ref)
}

func (c *Computed[T]) unsubscribe(id uint64) {
	c.registry.unsubscribeID(id)
}
