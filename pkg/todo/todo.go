// Package todo holds the todo list state: an ordered sequence of tasks with
// add, toggle and remove operations and a derived incomplete count.
//
// Every mutation publishes a fresh slice, so a snapshot handed to a
// subscriber or returned by Tasks is never modified afterwards.
package todo

import (
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/withgalaxy/quasar/pkg/store"
)

type Store struct {
	atom  *store.Atom[[]Task]
	newID func() string
	log   *zap.Logger
}

type Option func(*Store)

// WithIDGenerator replaces the UUID generator. The generator must not repeat
// ids within the store's lifetime.
func WithIDGenerator(fn func() string) Option {
	return func(s *Store) {
		s.newID = fn
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		s.log = l
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		atom:  store.NewAtom([]Task{}),
		newID: uuid.NewString,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddTask appends an incomplete task. Text that is empty after trimming is
// ignored without notifying.
func (s *Store) AddTask(text string) {
	if strings.TrimSpace(text) == "" {
		s.log.Debug("ignoring empty task")
		return
	}
	task := Task{ID: s.newID(), Text: text}
	s.atom.Update(func(tasks []Task) []Task {
		next := make([]Task, len(tasks), len(tasks)+1)
		copy(next, tasks)
		return append(next, task)
	})
	s.log.Debug("task added", zap.String("id", task.ID))
}

// ToggleTask flips the completion flag of the task with the given id.
// Unknown ids are ignored, which tolerates views holding stale tasks.
func (s *Store) ToggleTask(id string) {
	if indexOf(s.atom.Get(), id) < 0 {
		s.log.Debug("toggle of unknown task", zap.String("id", id))
		return
	}
	s.atom.Update(func(tasks []Task) []Task {
		i := indexOf(tasks, id)
		if i < 0 {
			return tasks
		}
		next := make([]Task, len(tasks))
		copy(next, tasks)
		next[i].Completed = !next[i].Completed
		return next
	})
}

// RemoveTask deletes the task with the given id, keeping the order of the
// rest. Unknown ids are ignored.
func (s *Store) RemoveTask(id string) {
	if indexOf(s.atom.Get(), id) < 0 {
		s.log.Debug("remove of unknown task", zap.String("id", id))
		return
	}
	s.atom.Update(func(tasks []Task) []Task {
		i := indexOf(tasks, id)
		if i < 0 {
			return tasks
		}
		next := make([]Task, 0, len(tasks)-1)
		next = append(next, tasks[:i]...)
		return append(next, tasks[i+1:]...)
	})
}

// Import appends every non-empty checklist item in order with a single
// notification and returns how many tasks were added.
func (s *Store) Import(items []ChecklistItem) int {
	added := make([]Task, 0, len(items))
	for _, item := range items {
		if strings.TrimSpace(item.Text) == "" {
			continue
		}
		added = append(added, Task{ID: s.newID(), Text: item.Text, Completed: item.Completed})
	}
	if len(added) == 0 {
		return 0
	}
	s.atom.Update(func(tasks []Task) []Task {
		next := make([]Task, len(tasks), len(tasks)+len(added))
		copy(next, tasks)
		return append(next, added...)
	})
	return len(added)
}

// IncompleteCount counts the tasks not yet completed in the current state.
func (s *Store) IncompleteCount() int {
	return countIncomplete(s.atom.Get())
}

// Tasks returns a copy of the current sequence.
func (s *Store) Tasks() []Task {
	tasks := s.atom.Get()
	out := make([]Task, len(tasks))
	copy(out, tasks)
	return out
}

func (s *Store) Len() int {
	return len(s.atom.Get())
}

func (s *Store) Subscribe(callback func([]Task)) store.Unsubscriber {
	return s.atom.Subscribe(callback)
}

// Store exposes the task sequence as a read-only store.
func (s *Store) Store() store.ReadableStore[[]Task] {
	return s.atom
}

// Remaining returns a derived store of the incomplete count. The caller owns
// it and must Destroy it when done.
func (s *Store) Remaining() *store.Computed[int] {
	return store.NewComputed[[]Task, int](s.atom, countIncomplete)
}

func (s *Store) Destroy() {
	s.atom.Destroy()
}
