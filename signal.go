package reactor

import (
	"context"
	"runtime/debug"
	"sync"
)

// signal is the internal implementation of Signal[T].
//
// It carries two independent subscriber lists: registry is the weakly
// held graph-edge registry that Computed and Effect attach to when they
// read this signal during a tracked evaluation, while callbacks is a
// plain func(T) subscription API kept for ergonomic value-change
// notification outside the dependency graph. A write notifies both.
type signal[T any] struct {
	mu    sync.RWMutex
	value T
	ver   uint64
	equal EqualFunc[T]
	name  string

	registry subscriberRegistry

	callbacks   map[uint64]func(T)
	nextCbID    uint64
	callbacksMu sync.Mutex

	onPanic func(any, []byte)
}

// NewSignal creates a writable signal with the given initial value. No
// equality override is installed, so writes use the default
// change-detector in equality.go.
func NewSignal[T any](initial T) Signal[T] {
	return NewSignalWithOptions(initial, Options[T]{})
}

// NewSignalWithOptions creates a signal with a custom equality function
// and/or panic handler.
func NewSignalWithOptions[T any](initial T, opts Options[T]) Signal[T] {
	s := &signal[T]{
		value:     initial,
		equal:     opts.Equal,
		name:      opts.Name,
		callbacks: make(map[uint64]func(T)),
		onPanic:   opts.OnPanic,
	}
	fireOnCreated(describe(s))
	if s.name != "" {
		fireOnNamed(describe(s))
	}
	return s
}

// Get returns the current value, registering this signal as a dependency
// of the innermost evaluating Computed or Effect, if any.
func (s *signal[T]) Get() T {
	s.mu.RLock()
	v := s.value
	s.mu.RUnlock()
	trackRead(s)
	fireOnRead(describe(s))
	return v
}

// Set replaces the value. The change-detector (or the custom Equal
// override) decides whether subscribers are notified; a no-op write
// bumps neither the version nor any subscriber's state.
func (s *signal[T]) Set(newValue T) {
	s.mu.Lock()
	if s.isUnchanged(s.value, newValue) {
		s.mu.Unlock()
		return
	}
	s.value = newValue
	s.ver++

	cbs := s.snapshotCallbacks()
	s.mu.Unlock()

	s.deliver(cbs, newValue)
}

// Update transforms the value using the current value as input. The
// read-transform-write is atomic with respect to other writers of this
// signal.
func (s *signal[T]) Update(fn func(T) T) {
	s.mu.Lock()
	oldValue := s.value
	newValue := fn(oldValue)

	if s.isUnchanged(oldValue, newValue) {
		s.mu.Unlock()
		return
	}
	s.value = newValue
	s.ver++

	cbs := s.snapshotCallbacks()
	s.mu.Unlock()

	s.deliver(cbs, newValue)
}

// Mutate runs fn against a pointer to the live value, then unconditionally
// bumps the version and notifies: delegated mutation can't be cheaply
// compared against its prior state, so every Mutate counts as a change.
func (s *signal[T]) Mutate(fn func(*T)) {
	s.mu.Lock()
	fn(&s.value)
	s.ver++
	newValue := s.value
	cbs := s.snapshotCallbacks()
	s.mu.Unlock()

	s.deliver(cbs, newValue)
}

// At temporarily overrides the value with tmp and returns a restore
// function that puts back the value captured at the time At was called,
// both the override and the restore go through the normal write path, so
// dependents observe two writes.
func (s *signal[T]) At(tmp T) func() {
	prior := s.Get()
	s.Set(tmp)
	return func() {
		s.Set(prior)
	}
}

func (s *signal[T]) isUnchanged(old, new_ T) bool {
	if s.equal != nil {
		return s.equal(old, new_)
	}
	return !changed(old, new_)
}

func (s *signal[T]) snapshotCallbacks() []func(T) {
	s.callbacksMu.Lock()
	defer s.callbacksMu.Unlock()
	cbs := make([]func(T), 0, len(s.callbacks))
	for _, fn := range s.callbacks {
		cbs = append(cbs, fn)
	}
	return cbs
}

// deliver notifies plain value-callbacks and graph observers, in that
// order, outside of s.mu so an observer unsubscribing itself mid-notify
// is safe.
func (s *signal[T]) deliver(cbs []func(T), value T) {
	for _, fn := range cbs {
		s.runCallback(fn, value)
	}
	failures := s.registry.notify(s)
	if len(failures) > 0 {
		s.handlePanic(&ObserverFailureError{Failures: failures})
	}
	fireOnUpdated(describe(s))
}

func (s *signal[T]) runCallback(fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			s.handlePanic(r)
		}
	}()
	fn(value)
}

func (s *signal[T]) handlePanic(r any) {
	if s.onPanic != nil {
		s.onPanic(r, debug.Stack())
		return
	}
	fireOnPanic(describe(s), r, debug.Stack())
}

// Subscribe registers fn to run whenever the value changes; the
// subscription is canceled automatically when ctx is done.
func (s *signal[T]) Subscribe(ctx context.Context, fn func(T)) Unsubscribe {
	s.callbacksMu.Lock()
	id := s.nextCbID
	s.nextCbID++
	s.callbacks[id] = fn
	s.callbacksMu.Unlock()

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			s.callbacksMu.Lock()
			delete(s.callbacks, id)
			s.callbacksMu.Unlock()
			close(done)
		case <-done:
		}
	}()

	return func() {
		s.callbacksMu.Lock()
		delete(s.callbacks, id)
		s.callbacksMu.Unlock()
		select {
		case <-done:
		default:
			close(done)
		}
	}
}

// SubscribeForever is Subscribe(context.Background(), fn).
func (s *signal[T]) SubscribeForever(fn func(T)) Unsubscribe {
	return s.Subscribe(context.Background(), fn)
}

// AsReadonly returns a read-only view for encapsulation.
func (s *signal[T]) AsReadonly() ReadonlySignal[T] {
	return &readonlySignal[T]{source: s}
}

// Name attaches a display name for diagnostics and returns the signal for
// chaining; it has no effect on evaluation.
func (s *signal[T]) Name(name string) Signal[T] {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	fireOnNamed(describe(s))
	return s
}

func (s *signal[T]) version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ver
}

func (s *signal[T]) observableName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// fastPathEligible is always true for a signal: its version only ever
// advances on an actual write, so a dependent's version comparison can
// trust it without a re-read.
func (s *signal[T]) fastPathEligible() bool { return true }

func (s *signal[T]) subscribe(ref weakObserverRef) uint64 {
	return s.registry.subscribe(ref)
}

func (s *signal[T]) unsubscribe(id uint64) {
	s.registry.unsubscribeID(id)
}
