package reactor

import "fmt"

// CyclicEvaluationError is returned when a thunk (directly or through a
// chain of Computeds) tries to read a Computed that is currently
// evaluating. The offending Computed is left Stale with its previous
// cached value intact; it is not poisoned, and the next independent read
// may succeed.
type CyclicEvaluationError struct {
	Name string
}

func (e *CyclicEvaluationError) Error() string {
	if e.Name == "" {
		return "reactor: cyclic evaluation detected"
	}
	return fmt.Sprintf("reactor: cyclic evaluation detected reading %q", e.Name)
}

// ThunkFailureError wraps a panic raised by a Computed's thunk. The
// Computed reverts to Stale, keeps its previous cached value and
// dependency edges, and will retry the thunk on the next read.
type ThunkFailureError struct {
	Name  string
	Cause any
}

func (e *ThunkFailureError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("reactor: thunk failed: %v", e.Cause)
	}
	return fmt.Sprintf("reactor: thunk for %q failed: %v", e.Name, e.Cause)
}

func (e *ThunkFailureError) Unwrap() error {
	if cause, ok := e.Cause.(error); ok {
		return cause
	}
	return nil
}

// ObserverFailure records a panic raised by one dependent node (a Computed
// or Effect) while it was being notified of a change. Panics from plain
// Subscribe callbacks are not recorded here; they go straight to the
// node's panic handler.
type ObserverFailure struct {
	Cause any
}

func (f ObserverFailure) Error() string {
	return fmt.Sprintf("reactor: observer panicked: %v", f.Cause)
}

// ObserverFailureError is a composite of every ObserverFailure collected
// while notifying a node's dependents. The write itself has already
// happened; the value and version are updated regardless of whether any
// dependent panicked. It is built only after every dependent has been
// notified, in insertion order, and is passed to the notifying node's
// OnPanic handler (or to the installed Hooks' OnPanic). Set, Update and
// Mutate do not return it to the writer.
type ObserverFailureError struct {
	Failures []ObserverFailure
}

func (e *ObserverFailureError) Error() string {
	return fmt.Sprintf("reactor: %d observer(s) panicked during notification", len(e.Failures))
}

// isReactorFailure reports whether r (a recovered panic value) is one of
// this package's own classified errors, meaning it has already propagated
// from a nested evaluation and should be forwarded unchanged rather than
// re-wrapped as a ThunkFailureError.
func isReactorFailure(r any) (error, bool) {
	switch err := r.(type) {
	case *CyclicEvaluationError:
		return err, true
	case *ThunkFailureError:
		return err, true
	}
	return nil, false
}
