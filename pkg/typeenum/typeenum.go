// Package typeenum holds the runtime support imported by code that the
// typeenum generator emits.
//
// Generated unions expose three capabilities per variant: a conversion
// constructor, borrow accessors and a consuming extractor. The extractor
// returns an Extracted value, which carries either the payload taken out of
// the union or, when another variant is active, the union itself unchanged.
package typeenum

import "fmt"

// Extracted is the result of consuming a union of type U for a payload of
// type T. Exactly one of the payload or the original union is meaningful.
type Extracted[T, U any] struct {
	value T
	union U
	ok    bool
}

// Take returns an Extracted holding the payload v.
func Take[T, U any](v T) Extracted[T, U] {
	return Extracted[T, U]{value: v, ok: true}
}

// Keep returns an Extracted handing the union u back to the caller.
func Keep[T, U any](u U) Extracted[T, U] {
	return Extracted[T, U]{union: u}
}

// OK reports whether the payload was extracted.
func (e Extracted[T, U]) OK() bool { return e.ok }

// Get returns the payload and true, or the zero T and false on mismatch.
func (e Extracted[T, U]) Get() (T, bool) {
	return e.value, e.ok
}

// Union returns the original union and true when the variant did not match.
func (e Extracted[T, U]) Union() (U, bool) {
	return e.union, !e.ok
}

// Unwrap returns all parts at once: the payload, the original union and
// whether the payload is the valid half.
func (e Extracted[T, U]) Unwrap() (T, U, bool) {
	return e.value, e.union, e.ok
}

// Must returns the payload or panics when the variant did not match.
func (e Extracted[T, U]) Must() T {
	if !e.ok {
		panic(fmt.Sprintf("typeenum: %T does not hold a %T payload", e.union, e.value))
	}
	return e.value
}

// Or returns the payload, or fallback applied to the original union.
func (e Extracted[T, U]) Or(fallback func(U) T) T {
	if e.ok {
		return e.value
	}
	return fallback(e.union)
}
