package reactor

import "context"

// readonlySignal is a read-only wrapper around a Signal. It implements
// ReadonlySignal (including the unexported Observable methods, so it can
// still be used as a Computed dependency) by delegating to the source,
// without exposing Set/Update/Mutate.
type readonlySignal[T any] struct {
	source Signal[T]
}

func (r *readonlySignal[T]) Get() T {
	return r.source.Get()
}

func (r *readonlySignal[T]) Subscribe(ctx context.Context, fn func(T)) Unsubscribe {
	return r.source.Subscribe(ctx, fn)
}

func (r *readonlySignal[T]) SubscribeForever(fn func(T)) Unsubscribe {
	return r.source.SubscribeForever(fn)
}

func (r *readonlySignal[T]) version() uint64 {
	return r.source.(Observable).version()
}

func (r *readonlySignal[T]) observableName() string {
	return r.source.(Observable).observableName()
}

func (r *readonlySignal[T]) subscribe(ref weakObserverRef) uint64 {
	return r.source.(Observable).subscribe(ref)
}

func (r *readonlySignal[T]) unsubscribe(id uint64) {
	r.source.(Observable).unsubscribe(id)
}

func (r *readonlySignal[T]) fastPathEligible() bool {
	return r.source.(Observable).fastPathEligible()
}
