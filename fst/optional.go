package fst

import "fmt"

// NA is rendered in reports wherever a value is absent.
const NA = "N/A"

// Optional holds a value that the solver output may or may not contain.
// The zero value is absent.
type Optional[T any] struct {
	value T
	set   bool
}

// Some returns a present Optional holding v.
func Some[T any](v T) Optional[T] {
	return Optional[T]{value: v, set: true}
}

// None returns an absent Optional.
func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Get returns the value and whether it is present.
func (o Optional[T]) Get() (T, bool) {
	return o.value, o.set
}

// IsSet reports whether a value is present.
func (o Optional[T]) IsSet() bool {
	return o.set
}

// OrElse returns the value, or def when absent.
func (o Optional[T]) OrElse(def T) T {
	if !o.set {
		return def
	}
	return o.value
}

// Format renders the value with a fmt verb, or NA when absent.
func (o Optional[T]) Format(format string) string {
	if !o.set {
		return NA
	}
	return fmt.Sprintf(format, o.value)
}

// String renders the value with %v, or NA when absent.
func (o Optional[T]) String() string {
	return o.Format("%v")
}

// Map applies fn to a present value.
func Map[T, U any](o Optional[T], fn func(T) U) Optional[U] {
	if !o.set {
		return None[U]()
	}
	return Some(fn(o.value))
}

// First returns the first present Optional, or an absent one.
func First[T any](opts ...Optional[T]) Optional[T] {
	for _, o := range opts {
		if o.set {
			return o
		}
	}
	return None[T]()
}
