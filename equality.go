package reactor

import (
	"math"
	"reflect"

	"golang.org/x/exp/constraints"
)

// changed implements the change-detector policy: given an old and a new
// value, decide whether the difference is "real" enough to propagate.
//
// Policy, in priority order:
//
//  1. Identity: same object ⇒ unchanged.
//  2. Callables: compared by identity only, never by value.
//  3. NaN: both sides NaN (same float kind) ⇒ unchanged.
//  4. Array-like (slice/array/map): unchanged iff every element is equal
//     and shapes match.
//  5. Everything else: structural equality (reflect.DeepEqual). A panic
//     from the comparison is treated as "changed" (propagate
//     conservatively) rather than surfaced to the caller.
func changed[T any](old, new_ T) (result bool) {
	defer func() {
		if recover() != nil {
			result = true
		}
	}()

	oldAny, newAny := any(old), any(new_)

	if sameIdentity(oldAny, newAny) {
		return false
	}

	if isCallable(oldAny) || isCallable(newAny) {
		return !identicalFuncValues(oldAny, newAny)
	}

	if bothNaN(oldAny, newAny) {
		return false
	}

	oldVal, newVal := reflect.ValueOf(oldAny), reflect.ValueOf(newAny)
	if isArrayLike(oldVal) || isArrayLike(newVal) {
		return !arrayLikeEqual(oldVal, newVal)
	}

	return !reflect.DeepEqual(oldAny, newAny)
}

// zeroValue returns the zero value of T, used to satisfy a (T, error)
// return signature on the error path.
func zeroValue[T any]() T {
	var z T
	return z
}

// sameIdentity reports whether a and b are the same pointer, channel, or
// interface identity, the cheap shortcut that lets a Computed short
// circuit a recompute against itself.
func sameIdentity(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if !av.IsValid() || !bv.IsValid() {
		return !av.IsValid() && !bv.IsValid()
	}
	switch av.Kind() {
	case reflect.Ptr, reflect.Chan, reflect.UnsafePointer:
		return av.Kind() == bv.Kind() && av.Pointer() == bv.Pointer()
	}
	return false
}

func isCallable(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.IsValid() && rv.Kind() == reflect.Func
}

// identicalFuncValues compares two func values by pointer identity, the
// only equality Go allows for functions.
func identicalFuncValues(a, b any) bool {
	av, bv := reflect.ValueOf(a), reflect.ValueOf(b)
	if av.Kind() != reflect.Func || bv.Kind() != reflect.Func {
		return false
	}
	if av.IsNil() || bv.IsNil() {
		return av.IsNil() && bv.IsNil()
	}
	return av.Pointer() == bv.Pointer()
}

// bothNaN reports whether old and new are both floating-point NaN of the
// same kind. Naive arithmetic equality reports NaN as forever "changed";
// that would mean writing NaN where the value is already NaN propagates
// on every write.
func bothNaN(a, b any) bool {
	switch av := a.(type) {
	case float64:
		bv, ok := b.(float64)
		return ok && math.IsNaN(av) && math.IsNaN(bv)
	case float32:
		bv, ok := b.(float32)
		return ok && math.IsNaN(float64(av)) && math.IsNaN(float64(bv))
	}
	return false
}

// NumericEqual is an EqualFunc for any floating-point signal or computed
// value that treats NaN as equal to itself, the same NaN carve-out changed
// applies through the any-typed bothNaN path, but usable directly as an
// Options.Equal override (for a Signal or a Computed) when T is concretely known
// to be a float kind (so no reflection is needed on the hot path).
func NumericEqual[F constraints.Float](a, b F) bool {
	if a == b {
		return true
	}
	return isNaN(a) && isNaN(b)
}

func isNaN[F constraints.Float](v F) bool {
	return v != v
}

func isArrayLike(v reflect.Value) bool {
	if !v.IsValid() {
		return false
	}
	switch v.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	}
	return false
}

// arrayLikeEqual treats two array-like values as equal iff every element
// is equal and the shapes match; a shape mismatch (length, key set, or
// one side not being array-like at all) is always a change.
func arrayLikeEqual(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return false
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch a.Kind() {
	case reflect.Slice, reflect.Array:
		if a.Kind() == reflect.Slice && (a.IsNil() != b.IsNil()) {
			return false
		}
		if a.Len() != b.Len() {
			return false
		}
		for i := 0; i < a.Len(); i++ {
			if !elementEqual(a.Index(i), b.Index(i)) {
				return false
			}
		}
		return true
	case reflect.Map:
		if a.IsNil() != b.IsNil() {
			return false
		}
		if a.Len() != b.Len() {
			return false
		}
		iter := a.MapRange()
		for iter.Next() {
			k := iter.Key()
			bv := b.MapIndex(k)
			if !bv.IsValid() {
				return false
			}
			if !elementEqual(iter.Value(), bv) {
				return false
			}
		}
		return true
	}
	return reflect.DeepEqual(a.Interface(), b.Interface())
}

func elementEqual(a, b reflect.Value) (result bool) {
	defer func() {
		if recover() != nil {
			result = false
		}
	}()
	if isArrayLike(a) || isArrayLike(b) {
		return arrayLikeEqual(a, b)
	}
	av, bv := a.Interface(), b.Interface()
	if bothNaN(av, bv) {
		return true
	}
	return reflect.DeepEqual(av, bv)
}
