// Package counter implements the counter widget state in two styles: a
// hook-style Counter driven by method calls, and a reducer-style Slice driven
// by dispatched actions. Both start at zero and every constructor call returns
// an independent store.
package counter

import (
	"github.com/withgalaxy/quasar/pkg/store"
)

type Counter struct {
	atom *store.Atom[int]
}

func New() *Counter {
	return &Counter{atom: store.NewAtom(0)}
}

// Increment adds one through a functional update so rapid successive calls
// never lose a step.
func (c *Counter) Increment() {
	c.atom.Update(func(n int) int { return n + 1 })
}

func (c *Counter) Count() int {
	return c.atom.Get()
}

func (c *Counter) Subscribe(callback func(int)) store.Unsubscriber {
	return c.atom.Subscribe(callback)
}

// Store exposes the counter as a read-only store for views.
func (c *Counter) Store() store.ReadableStore[int] {
	return c.atom
}

func (c *Counter) Destroy() {
	c.atom.Destroy()
}
