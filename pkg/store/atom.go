package store

import (
	"sync"
)

// Atom is a writable store holding a single value of type T.
type Atom[T any] struct {
	value T
	mu    sync.RWMutex
	subs  listeners[T]
}

func NewAtom[T any](initial T) *Atom[T] {
	return &Atom[T]{value: initial}
}

func (a *Atom[T]) Get() T {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

func (a *Atom[T]) Value() T {
	return a.Get()
}

// Set replaces the value and then calls every subscriber with it. Subscribers
// run after the lock is released, so when several goroutines write at once
// their notifications may arrive in a different order than the writes.
// Subscribers that need the latest value should read Get.
func (a *Atom[T]) Set(value T) {
	a.mu.Lock()
	a.value = value
	subs := a.subs.snapshot()
	a.mu.Unlock()

	notify(subs, value)
}

// Update replaces the value with fn applied to the current one. The read and
// the write happen under the same lock, so concurrent updates are never lost.
// fn must not call back into the atom.
func (a *Atom[T]) Update(fn func(T) T) {
	a.mu.Lock()
	a.value = fn(a.value)
	newValue := a.value
	subs := a.subs.snapshot()
	a.mu.Unlock()

	notify(subs, newValue)
}

// UpdateIf is Update for writes that may be refused. fn runs under the lock
// and returns the next value plus whether to keep it. Nothing changes and no
// subscriber is called when it returns false. It reports whether the value
// was replaced.
func (a *Atom[T]) UpdateIf(fn func(T) (T, bool)) bool {
	a.mu.Lock()
	next, ok := fn(a.value)
	if !ok {
		a.mu.Unlock()
		return false
	}
	a.value = next
	subs := a.subs.snapshot()
	a.mu.Unlock()

	notify(subs, next)
	return true
}

func (a *Atom[T]) Subscribe(callback func(T)) Unsubscriber {
	return a.subs.add(callback)
}

// Subscribers reports how many callbacks are currently registered.
func (a *Atom[T]) Subscribers() int {
	return a.subs.len()
}

// Destroy drops every subscriber. The value stays readable.
func (a *Atom[T]) Destroy() {
	a.subs.clear()
}
