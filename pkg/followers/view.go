package followers

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/withgalaxy/quasar/pkg/store"
)

type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusReady   Status = "ready"
	StatusFailed  Status = "failed"
)

// State is what a followers view renders from.
type State struct {
	Status    Status            `json:"status"`
	Followers []FollowerSummary `json:"followers,omitempty"`
	Err       error             `json:"-"`
}

func (s State) MarshalJSON() ([]byte, error) {
	type alias State
	out := struct {
		alias
		Error string `json:"error,omitempty"`
	}{alias: alias(s)}
	if s.Err != nil {
		out.Error = s.Err.Error()
	}
	return json.Marshal(out)
}

// mount is one mount of the view. A fetch resolving after its mount died
// is dropped.
type mount struct {
	cancel context.CancelFunc
	done   chan struct{}
	alive  bool
}

// View drives the followers list lifecycle: one fetch per mount, a loading
// state while it is pending, then ready or failed. No retries, no caching.
type View struct {
	fetch FetchFunc
	state *store.Atom[State]
	log   *zap.Logger

	mu      sync.Mutex
	current *mount
}

type ViewOption func(*View)

func WithLogger(l *zap.Logger) ViewOption {
	return func(v *View) {
		v.log = l
	}
}

func NewView(fetch FetchFunc, opts ...ViewOption) *View {
	v := &View{
		fetch: fetch,
		state: store.NewAtom(State{Status: StatusIdle}),
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Mount starts the fetch for a new mount and returns a channel closed once
// the fetch has resolved. Mounting an already mounted view does not fetch
// again and returns the existing channel.
func (v *View) Mount(ctx context.Context) <-chan struct{} {
	v.mu.Lock()
	if v.current != nil && v.current.alive {
		done := v.current.done
		v.mu.Unlock()
		return done
	}

	ctx, cancel := context.WithCancel(ctx)
	m := &mount{cancel: cancel, done: make(chan struct{}), alive: true}
	v.current = m
	v.mu.Unlock()

	v.publish(m, State{Status: StatusLoading})
	v.log.Debug("fetching followers")

	go func() {
		defer close(m.done)
		defer cancel()

		resp, err := v.fetch(ctx)

		var next State
		if err != nil {
			next = State{Status: StatusFailed, Err: err}
		} else {
			next = State{Status: StatusReady, Followers: Summarize(resp)}
		}
		v.log.Debug("followers resolved", zap.String("status", string(next.Status)))

		if !v.publish(m, next) {
			v.log.Debug("dropping followers result for unmounted view")
			return
		}
		if err != nil {
			v.log.Warn("fetch followers failed", zap.Error(err))
			return
		}
		v.log.Debug("followers loaded", zap.Int("count", len(next.Followers)))
	}()

	return m.done
}

// publish writes next only while m is still the live mount. The check runs
// under the state lock, and Unmount takes that lock after clearing alive, so
// a dead mount never writes.
func (v *View) publish(m *mount, next State) bool {
	return v.state.UpdateIf(func(State) (State, bool) {
		v.mu.Lock()
		defer v.mu.Unlock()
		return next, m.alive
	})
}

// Unmount marks the current mount dead and cancels its fetch. Once it
// returns, a result of that mount can no longer change the state.
func (v *View) Unmount() {
	v.mu.Lock()
	m := v.current
	v.current = nil
	if m != nil {
		m.alive = false
	}
	v.mu.Unlock()

	if m == nil {
		return
	}
	m.cancel()
	// Wait out a publish that passed its mount check before alive was cleared.
	v.state.Get()
}

func (v *View) State() State {
	return v.state.Get()
}

func (v *View) Subscribe(callback func(State)) store.Unsubscriber {
	return v.state.Subscribe(callback)
}

// Store exposes the view state as a read-only store.
func (v *View) Store() store.ReadableStore[State] {
	return v.state
}

// Destroy unmounts the view and drops every subscriber.
func (v *View) Destroy() {
	v.Unmount()
	v.state.Destroy()
}
