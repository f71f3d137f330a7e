package task

import (
	"sync"

	"github.com/pkg/errors"
)

// Registry holds every task created during the process lifetime.
// Tasks are never evicted.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string
}

func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]*Task),
		order: make([]string, 0),
	}
}

func (r *Registry) Add(t *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[t.ID()]; exists {
		return errors.Wrapf(ErrDuplicateTask, "task '%s' already registered", t.ID())
	}

	r.tasks[t.ID()] = t
	r.order = append(r.order, t.ID())

	return nil
}

func (r *Registry) Get(id string) (*Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tasks[id]
	if !exists {
		return nil, errors.Wrapf(ErrTaskNotFound, "task '%s' not found", id)
	}

	return t, nil
}

type ListFilter func(t *Task) bool

func WithType(taskType Type) ListFilter {
	return func(t *Task) bool {
		return t.Type() == taskType
	}
}

func WithRunning(running bool) ListFilter {
	return func(t *Task) bool {
		return t.Running() == running
	}
}

// List returns the registered tasks matching every filter, in insertion order.
func (r *Registry) List(filters ...ListFilter) []*Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]*Task, 0, len(r.order))

outer:
	for _, id := range r.order {
		t := r.tasks[id]
		for _, match := range filters {
			if !match(t) {
				continue outer
			}
		}

		tasks = append(tasks, t)
	}

	return tasks
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.order)
}
