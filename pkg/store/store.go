// Package store provides observable single-value containers.
//
// A store holds a value, hands out snapshots through Get and calls every
// subscriber synchronously, in subscription order, after each mutation.
// Stores never compare old and new values: setting an equal value notifies
// again, so callers that want to short-circuit must compare before calling Set.
package store

// Unsubscriber removes the subscription that returned it. Calling it more
// than once is a no-op.
type Unsubscriber func()

type ReadableStore[T any] interface {
	Get() T
	Subscribe(callback func(T)) Unsubscriber
}

type Store[T any] interface {
	ReadableStore[T]
	Set(value T)
	Update(fn func(T) T)
}

var (
	_ Store[int]         = (*Atom[int])(nil)
	_ ReadableStore[int] = (*Computed[int])(nil)
	_ ReadableStore[int] = (*Reducer[int, struct{}])(nil)
)
