package counter

import (
	"github.com/withgalaxy/quasar/pkg/store"
)

type Action string

const (
	Increment Action = "counter/increment"
)

type State struct {
	Value int `json:"value"`
}

// Reduce folds an action into the counter state. Unknown actions leave the
// state untouched.
func Reduce(s State, a Action) State {
	switch a {
	case Increment:
		s.Value++
	}
	return s
}

// Slice is the dispatch-driven counter.
type Slice struct {
	*store.Reducer[State, Action]
}

func NewSlice() *Slice {
	return &Slice{Reducer: store.NewReducer(State{}, Reduce)}
}

func (s *Slice) Count() int {
	return s.Get().Value
}
