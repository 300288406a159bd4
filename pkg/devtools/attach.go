package devtools

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"

	"github.com/withgalaxy/quasar/pkg/store"
)

// Attach publishes the current value of st under name and then every change
// it notifies. The returned func stops publishing and detaches the store.
//
// Each notification publishes a fresh read of st rather than the notified
// value. Writers on different goroutines may notify out of order, and this way
// the last frame sent always carries the value after the last write.
func Attach[T any](s *Server, name string, st store.ReadableStore[T]) store.Unsubscriber {
	var mu sync.Mutex
	publish := func(T) {
		mu.Lock()
		defer mu.Unlock()

		data, err := json.Marshal(st.Get())
		if err != nil {
			s.log.Warn("encode snapshot", zap.String("store", name), zap.Error(err))
			return
		}
		s.Publish(name, data)
	}

	publish(st.Get())
	unsub := st.Subscribe(publish)

	return func() {
		unsub()
		s.Detach(name)
	}
}
