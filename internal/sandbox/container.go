package sandbox

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

// Container is the mount point of the live sandboxes, one per task id.
type Container struct {
	mu        sync.RWMutex
	sandboxes map[string]*Sandbox
}

func NewContainer() *Container {
	return &Container{
		sandboxes: make(map[string]*Sandbox),
	}
}

func (c *Container) Mount(id string, s *Sandbox) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.sandboxes[id]; exists {
		return errors.Wrapf(ErrAlreadyMounted, "a sandbox is already mounted for task '%s'", id)
	}

	c.sandboxes[id] = s

	return nil
}

func (c *Container) Unmount(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.sandboxes, id)
}

func (c *Container) Get(id string) (*Sandbox, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, exists := c.sandboxes[id]

	return s, exists
}

// IDs returns the sorted ids of the mounted sandboxes.
func (c *Container) IDs() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ids := make([]string, 0, len(c.sandboxes))
	for id := range c.sandboxes {
		ids = append(ids, id)
	}

	sort.Strings(ids)

	return ids
}

func (c *Container) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.sandboxes)
}
