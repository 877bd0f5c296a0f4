package reactor

import "sync"

// The tracking context is the stack of "currently evaluating" nodes. The
// top of the stack is the node that accrues dependencies for every
// Observable read during its evaluation. It is goroutine-local: each
// goroutine drives its own synchronous evaluation chain.
var trackingStacks sync.Map // goroutineID -> []*trackFrame

// trackFrame accumulates the dependency set discovered during one
// evaluation. Dependencies are collected in first-read order and
// deduplicated.
type trackFrame struct {
	node observer
	deps []Observable
	seen map[Observable]struct{}
}

func pushFrame(node observer) {
	gid := goroutineID()
	frame := &trackFrame{node: node, seen: make(map[Observable]struct{})}

	var stack []*trackFrame
	if v, ok := trackingStacks.Load(gid); ok {
		stack = v.([]*trackFrame)
	}
	trackingStacks.Store(gid, append(stack, frame))
}

// popFrame removes the top frame and returns its accumulated
// dependencies. Safe to call even if the matching pushFrame never ran
// (returns nil), which keeps defer-based cleanup simple at call sites.
func popFrame() []Observable {
	gid := goroutineID()
	v, ok := trackingStacks.Load(gid)
	if !ok {
		return nil
	}
	stack := v.([]*trackFrame)
	if len(stack) == 0 {
		return nil
	}
	top := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	if len(stack) == 0 {
		trackingStacks.Delete(gid)
	} else {
		trackingStacks.Store(gid, stack)
	}
	return top.deps
}

// currentFrame returns the innermost evaluating frame on this goroutine's
// stack, or nil if nothing is evaluating.
func currentFrame() *trackFrame {
	v, ok := trackingStacks.Load(goroutineID())
	if !ok {
		return nil
	}
	stack := v.([]*trackFrame)
	if len(stack) == 0 {
		return nil
	}
	return stack[len(stack)-1]
}

// trackRead records obs as a dependency of the innermost evaluating node,
// if there is one. Idempotent within a single evaluation.
func trackRead(obs Observable) {
	frame := currentFrame()
	if frame == nil {
		return
	}
	if _, ok := frame.seen[obs]; ok {
		return
	}
	frame.seen[obs] = struct{}{}
	frame.deps = append(frame.deps, obs)
}

// Untrack runs fn without attributing any Observable reads inside it to
// the enclosing evaluation. Useful for reading a signal from inside a
// thunk without creating a dependency edge on it.
func Untrack[T any](fn func() T) T {
	gid := goroutineID()
	saved, hadSaved := trackingStacks.Load(gid)
	if hadSaved {
		trackingStacks.Delete(gid)
	}
	defer func() {
		if hadSaved {
			trackingStacks.Store(gid, saved)
		}
	}()
	return fn()
}

// UntrackVoid is Untrack for functions with no return value.
func UntrackVoid(fn func()) {
	Untrack(func() struct{} {
		fn()
		return struct{}{}
	})
}
