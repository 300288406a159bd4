package store

import (
	"sync"
	"sync/atomic"
)

type listener[T any] struct {
	fn     func(T)
	active atomic.Bool
}

// listeners is an ordered subscriber list shared by every store kind.
// Notification works on a snapshot so subscribing mid-pass only affects
// later passes, while the per-listener flag makes an unsubscribe take effect
// immediately, even for the pass that is running.
type listeners[T any] struct {
	mu   sync.Mutex
	list []*listener[T]
}

func (l *listeners[T]) add(fn func(T)) Unsubscriber {
	ln := &listener[T]{fn: fn}
	ln.active.Store(true)

	l.mu.Lock()
	l.list = append(l.list, ln)
	l.mu.Unlock()

	return func() {
		if !ln.active.Swap(false) {
			return
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, cur := range l.list {
			if cur == ln {
				l.list = append(l.list[:i], l.list[i+1:]...)
				break
			}
		}
	}
}

func (l *listeners[T]) snapshot() []*listener[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	subs := make([]*listener[T], len(l.list))
	copy(subs, l.list)
	return subs
}

func (l *listeners[T]) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.list)
}

func (l *listeners[T]) clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, ln := range l.list {
		ln.active.Store(false)
	}
	l.list = nil
}

func notify[T any](subs []*listener[T], value T) {
	for _, ln := range subs {
		if ln.active.Load() {
			ln.fn(value)
		}
	}
}
