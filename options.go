package reactor

// EqualFunc overrides the default change-detector (see equality.go) for a
// single node. Use it when the structural-equality fallback is too
// expensive, or wrong, for a particular T.
//
// Example:
//
//	userSignal := reactor.NewSignalWithOptions(&User{ID: 1}, reactor.Options[*User]{
//	    Equal: func(a, b *User) bool { return a.ID == b.ID },
//	})
type EqualFunc[T any] func(a, b T) bool

// Options configures a Signal or Computed.
type Options[T any] struct {
	// Equal overrides the default change-detector. If nil, the policy in
	// equality.go applies (identity, callables-by-identity, NaN,
	// array-like element-wise, structural fallback).
	Equal EqualFunc[T]

	// OnPanic handles a panic raised by a subscriber callback or, for a
	// Computed, by the thunk itself.
	//
	// If nil, the panic is logged via the installed Hooks (see hooks.go)
	// and execution continues.
	OnPanic func(err any, stack []byte)

	// Name attaches a display name up front, equivalent to calling
	// Name(name) on the constructed node.
	Name string
}

// EffectOptions configures an Effect.
type EffectOptions struct {
	// OnPanic handles a panic from the effect function or its cleanup.
	// If nil, the panic is passed to the installed Hooks' OnPanic, if any,
	// and execution continues.
	OnPanic func(err any, stack []byte)

	// Name attaches a display name for diagnostics.
	Name string
}
