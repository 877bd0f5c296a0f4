package reactor

import "sync/atomic"

// NodeInfo is the minimal, exported description of a node passed to a
// Hooks implementation. It deliberately does not expose the internal
// Observable interface (whose methods are unexported) so that plugin
// packages outside this module, such as plugins/zerolog, can implement
// Hooks without depending on reactor internals.
type NodeInfo struct {
	Name string
	Kind string // "signal", "computed", or "effect"
}

// Hooks is the optional plugin subsystem's extension point: the engine
// calls into it at node creation, naming, reads, value updates, and
// panics, without the core depending on any particular sink.
//
// Implementations must not block or call back into the engine; hooks run
// synchronously on the calling goroutine.
type Hooks interface {
	OnCreated(info NodeInfo)
	OnNamed(info NodeInfo)
	OnRead(info NodeInfo)
	OnUpdated(info NodeInfo)
	OnPanic(info NodeInfo, err any, stack []byte)
}

var activeHooks atomic.Pointer[Hooks]

// InstallHooks installs a process-wide Hooks implementation, replacing
// any previously installed one. Pass nil to remove it.
func InstallHooks(h Hooks) {
	if h == nil {
		activeHooks.Store(nil)
		return
	}
	activeHooks.Store(&h)
}

func currentHooks() Hooks {
	p := activeHooks.Load()
	if p == nil {
		return nil
	}
	return *p
}

// fireOnCreated, fireOnNamed, fireOnRead, fireOnUpdated, and fireOnPanic
// take a NodeInfo directly rather than an Observable so that effect,
// which is an observer but not an Observable, can report through the
// same hook points as Signal and Computed.

func fireOnCreated(info NodeInfo) {
	if h := currentHooks(); h != nil {
		h.OnCreated(info)
	}
}

func fireOnNamed(info NodeInfo) {
	if h := currentHooks(); h != nil {
		h.OnNamed(info)
	}
}

func fireOnRead(info NodeInfo) {
	if h := currentHooks(); h != nil {
		h.OnRead(info)
	}
}

func fireOnUpdated(info NodeInfo) {
	if h := currentHooks(); h != nil {
		h.OnUpdated(info)
	}
}

func fireOnPanic(info NodeInfo, err any, stack []byte) {
	if h := currentHooks(); h != nil {
		h.OnPanic(info, err, stack)
	}
}

// describe builds the NodeInfo for a Signal or Computed.
func describe(o Observable) NodeInfo {
	kind := "signal"
	if _, ok := o.(interface{ isComputed() }); ok {
		kind = "computed"
	}
	return NodeInfo{Name: o.observableName(), Kind: kind}
}
