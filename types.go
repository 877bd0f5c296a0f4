package reactor

import "context"

// Unsubscribe removes a subscription. Call it to stop receiving
// notifications and let the subscription be garbage collected.
//
//	unsub := sig.Subscribe(ctx, func(v int) { fmt.Println(v) })
//	defer unsub()
type Unsubscribe func()

// Observable is anything another node can depend on: a Signal or a
// Computed. Reading one inside a Computed's thunk or an Effect's function
// registers it as a dependency automatically, callers never implement
// this interface themselves.
type Observable interface {
	version() uint64
	observableName() string
	subscribe(ref weakObserverRef) uint64
	unsubscribe(id uint64)

	// fastPathEligible reports whether version() alone is sufficient to
	// prove "nothing changed" without recomputing. A Signal's version
	// only ever advances on an actual write, so it qualifies. A
	// Computed's version does not advance when it merely goes Stale
	// (onDependencyChanged never bumps ver), so a stale Computed can
	// report the same version it had while Fresh even though one of its
	// own dependencies has changed underneath it; trusting its version
	// without forcing it current would read a stale cached value.
	fastPathEligible() bool
}

// observer is anything that can be told "a dependency may have changed".
// Computed and the internal effect type are the only implementations.
type observer interface {
	onDependencyChanged(src Observable)
}

// Signal is a writable reactive container for a value of type T.
//
// Reading Get inside a Computed's thunk or an Effect's function registers
// the signal as a dependency of that evaluation. Writing through Set or
// Update runs the change-detector (see equality.go) and only notifies
// subscribers when the value actually differs from the old one.
type Signal[T any] interface {
	Observable

	// Get returns the current value, tracking it as a dependency of the
	// innermost evaluating Computed or Effect, if any.
	Get() T

	// Set replaces the value. Subscribers are notified only if the
	// change-detector reports the new value as different from the old one.
	Set(value T)

	// Update transforms the value using the current value as input. The
	// read-transform-write sequence is atomic with respect to other
	// writers of this signal.
	Update(fn func(T) T)

	// Mutate runs fn against a pointer to the live value in place, then
	// unconditionally bumps the version and notifies subscribers: the
	// signal cannot cheaply tell whether an in-place mutation changed
	// anything, so every Mutate counts as a change.
	Mutate(fn func(*T))

	// At temporarily overrides the value with tmp and returns a restore
	// function that puts back the value captured at the time At was
	// called, undoing any writes that happened during the override.
	// Call it (typically via defer) to end the scope.
	At(tmp T) (restore func())

	// AsReadonly returns a read-only view for encapsulation.
	AsReadonly() ReadonlySignal[T]

	// Subscribe registers fn to run whenever the value changes. The
	// subscription is canceled automatically when ctx is done.
	Subscribe(ctx context.Context, fn func(T)) Unsubscribe

	// SubscribeForever is Subscribe(context.Background(), fn).
	SubscribeForever(fn func(T)) Unsubscribe

	// Name attaches a display name for diagnostics; it has no semantic
	// effect on evaluation.
	Name(name string) Signal[T]
}

// ReadonlySignal is a read-only view of a value-bearing reactive node:
// either a Signal exposed via AsReadonly, or a Computed.
type ReadonlySignal[T any] interface {
	Observable

	Get() T
	Subscribe(ctx context.Context, fn func(T)) Unsubscribe
	SubscribeForever(fn func(T)) Unsubscribe
}
