// Package reactor is a small reactive graph engine for Go: a mutable
// reactive cell (Signal) and a lazily-evaluated derived expression
// (Computed), connected into a dependency graph that propagates change
// without eagerly recomputing anything.
//
// # Core Types
//
// Signal[T] - a writable reactive cell. Reading it inside a Computed or
// Effect registers it as a dependency automatically; no explicit wiring
// is required.
//
// Computed[T] - a derived value computed from a thunk. It discovers its
// own dependencies by observing which Signals and Computeds the thunk
// reads during evaluation, and only re-runs that thunk when a dependency
// has actually changed value (not merely been written to).
//
// Effect - a side effect that runs immediately and re-runs whenever any
// signal or computed it reads changes.
//
// # Example Usage
//
//	count := reactor.NewSignal(2)
//	doubled := reactor.NewComputed(func() int {
//	    return count.Get() * 2
//	})
//
//	fmt.Println(doubled.Get()) // 4, thunk runs once
//	count.Set(5)
//	fmt.Println(doubled.Get()) // 10, thunk runs again
//
// # Dependency tracking
//
// Unlike a library where dependencies are passed explicitly, Computed and
// Effect discover dependencies by running their function under a tracking
// context: every Signal.Get or Computed.Get executed during that function
// call is recorded as a dependency of the function's owner. Dependencies
// are re-collected on every evaluation, so control flow inside the
// function may read a different set of signals between runs.
//
// # Change propagation
//
// A write to a Signal only notifies subscribers if the new value is
// considered different from the old one (see the change-detector rules
// in equality.go). A Computed only notifies its own subscribers if
// re-evaluating its thunk produces a value that is actually different
// from its cached one: an upstream write that doesn't change the
// upstream's output never cascades into downstream recomputation.
//
// # Memory model
//
// Subscriber edges are held weakly (via the standard library weak
// package): a Computed or Effect that nothing else references can be
// collected even while the signals it reads remain alive, and its
// subscriptions lapse automatically. A Computed holds its own
// dependencies strongly, because a collected dependency could never
// notify it of a change.
//
// # Concurrency
//
// The engine assumes reads, writes, and evaluations execute as a single
// synchronous call chain per invocation; the tracking context is
// goroutine-local so independent goroutines may each drive their own
// evaluation. Each node guards its own fields with a mutex, so a single
// Signal may be written from several goroutines without extra locking,
// but there is no atomicity guarantee across operations on different
// nodes, and a Computed read on one goroutine while another goroutine is
// evaluating it reports a CyclicEvaluationError (Get panics with it).
package reactor
