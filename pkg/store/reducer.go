package store

// Reducer is a store whose only mutator is Dispatch. Each action is folded
// into the current state with reduce through Atom.Update.
type Reducer[S any, A any] struct {
	atom   *Atom[S]
	reduce func(S, A) S
}

func NewReducer[S any, A any](initial S, reduce func(S, A) S) *Reducer[S, A] {
	return &Reducer[S, A]{
		atom:   NewAtom(initial),
		reduce: reduce,
	}
}

func (r *Reducer[S, A]) Dispatch(action A) {
	r.atom.Update(func(s S) S {
		return r.reduce(s, action)
	})
}

func (r *Reducer[S, A]) Get() S {
	return r.atom.Get()
}

func (r *Reducer[S, A]) Value() S {
	return r.atom.Get()
}

func (r *Reducer[S, A]) Subscribe(callback func(S)) Unsubscriber {
	return r.atom.Subscribe(callback)
}

func (r *Reducer[S, A]) Destroy() {
	r.atom.Destroy()
}
