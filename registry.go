package reactor

import (
	"sync"
	"weak"
)

// weakObserverRef holds an observer without keeping it alive, using the
// standard library weak package (Go 1.24+). get returns nil once the
// target has been collected, which the registry treats as "already
// unsubscribed" rather than an error.
type weakObserverRef struct {
	get func() observer
}

// newWeakObserverRef wraps ptr, a pointer to a concrete node type such
// as *Computed[T] or *effect, in a weak reference, reconstructed as an
// observer only while the target is still reachable elsewhere. toObserver
// must not capture ptr; it only describes how to convert the dereferenced
// pointer back into the observer interface.
func newWeakObserverRef[T any](ptr *T, toObserver func(*T) observer) weakObserverRef {
	wp := weak.Make(ptr)
	return weakObserverRef{
		get: func() observer {
			p := wp.Value()
			if p == nil {
				return nil
			}
			return toObserver(p)
		},
	}
}

// subscriberEntry pairs a weak observer reference with a stable id so it
// can be removed again without disturbing insertion order.
type subscriberEntry struct {
	id  uint64
	ref weakObserverRef
}

// subscriberRegistry is the bidirectional, insertion-ordered subscription
// registry shared by Signal and Computed. Observers are held weakly;
// observables hold their own dependencies strongly elsewhere (in the
// Computed's own dependency list), which is what keeps a reachable
// derived node notifiable while letting an unreferenced one be collected.
type subscriberRegistry struct {
	mu      sync.Mutex
	nextID  uint64
	entries []subscriberEntry
}

// subscribe appends a new weak subscriber entry and returns its id for
// later removal. Subscribe is idempotent at the call-site level (Computed
// and Effect only call this once per dependency per evaluation, per the
// deduplication in trackFrame), so the registry itself does not need to
// scan for duplicates.
func (r *subscriberRegistry) subscribe(ref weakObserverRef) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := r.nextID
	r.nextID++
	r.entries = append(r.entries, subscriberEntry{id: id, ref: ref})
	return id
}

// unsubscribeID removes the entry with the given id, tolerating ids that
// are already gone.
func (r *subscriberRegistry) unsubscribeID(id uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e.id == id {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			return
		}
	}
}

// snapshot returns a defensive copy of the live observers in insertion
// order, pruning weak references whose target has already been
// collected. Copying outside any caller-held lock is what makes it safe
// for an observer to unsubscribe itself from inside onDependencyChanged.
func (r *subscriberRegistry) snapshot() []observer {
	r.mu.Lock()
	defer r.mu.Unlock()

	live := r.entries[:0:0]
	observers := make([]observer, 0, len(r.entries))
	for _, e := range r.entries {
		if o := e.ref.get(); o != nil {
			live = append(live, e)
			observers = append(observers, o)
		}
	}
	r.entries = live
	return observers
}

// notify delivers src's change to every live subscriber, in insertion
// order, isolating one observer's panic from the rest.
func (r *subscriberRegistry) notify(src Observable) []ObserverFailure {
	var failures []ObserverFailure
	for _, o := range r.snapshot() {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					failures = append(failures, ObserverFailure{Cause: rec})
				}
			}()
			o.onDependencyChanged(src)
		}()
	}
	return failures
}
