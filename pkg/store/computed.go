package store

import (
	"sync"
)

// Computed is a read-only store derived from another store. Its value is
// recomputed from the source on every source notification.
type Computed[T any] struct {
	value T
	mu    sync.RWMutex
	subs  listeners[T]
	unsub Unsubscriber
}

func NewComputed[S any, T any](source ReadableStore[S], transform func(S) T) *Computed[T] {
	c := &Computed[T]{
		value: transform(source.Get()),
	}

	c.unsub = source.Subscribe(func(val S) {
		c.mu.Lock()
		c.value = transform(val)
		newValue := c.value
		subs := c.subs.snapshot()
		c.mu.Unlock()

		notify(subs, newValue)
	})

	return c
}

func (c *Computed[T]) Get() T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.value
}

func (c *Computed[T]) Value() T {
	return c.Get()
}

func (c *Computed[T]) Subscribe(callback func(T)) Unsubscriber {
	return c.subs.add(callback)
}

// Destroy detaches from the source and drops every subscriber.
func (c *Computed[T]) Destroy() {
	if c.unsub != nil {
		c.unsub()
	}
	c.subs.clear()
}
