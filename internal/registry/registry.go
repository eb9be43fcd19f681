// Package registry holds the managed windows and their grouping into
// containers. It never talks to the display server.
package registry

import (
	"fmt"

	"github.com/1broseidon/stackwm/internal/platform"
)

// ContainerID identifies a container for its whole lifetime.
type ContainerID int

// Window is a managed top-level window.
type Window struct {
	ID       platform.WindowID // None while a placeholder slot is unbound
	Title    string
	HasTitle bool
	PID      int

	// Display bookkeeping, so restores only issue commands on change.
	Mapped         bool
	ButtonsGrabbed bool
}

// Bound reports whether the window slot refers to a real display window.
func (w *Window) Bound() bool {
	return w != nil && w.ID != platform.None
}

// Container is a stack of related windows shown as one unit. Windows[0] is
// the head, the only window that is ever visible.
type Container struct {
	ID                    ContainerID
	Windows               []*Window
	Hidden                bool
	AcceptsConfigRequests bool
}

// Head returns the front-most window.
func (c *Container) Head() *Window {
	if c == nil || len(c.Windows) == 0 {
		return nil
	}
	return c.Windows[0]
}

// Placeholder reports whether the container is waiting for the first window
// of a spawned process.
func (c *Container) Placeholder() bool {
	return !c.Head().Bound()
}

func (c *Container) indexOf(id platform.WindowID) int {
	if id == platform.None {
		return -1
	}
	for i, w := range c.Windows {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// Registry is an arena of containers plus their most-recently-focused-first
// order.
type Registry struct {
	containers map[ContainerID]*Container
	order      []ContainerID
	nextID     ContainerID
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{
		containers: make(map[ContainerID]*Container),
		nextID:     1,
	}
}

// CreateContainer makes a new container holding win and puts it at the head
// of the list.
func (r *Registry) CreateContainer(win *Window, acceptsConfigRequests, startHidden bool) *Container {
	c := &Container{
		ID:                    r.nextID,
		Windows:               []*Window{win},
		Hidden:                startHidden,
		AcceptsConfigRequests: acceptsConfigRequests,
	}
	r.nextID++
	r.containers[c.ID] = c
	r.order = append([]ContainerID{c.ID}, r.order...)
	return c
}

// Container returns the container with the given id.
func (r *Registry) Container(id ContainerID) (*Container, bool) {
	c, ok := r.containers[id]
	return c, ok
}

// Attach pushes win as the new head of the container.
func (r *Registry) Attach(id ContainerID, win *Window) bool {
	c, ok := r.containers[id]
	if !ok || win == nil {
		return false
	}
	c.Windows = append([]*Window{win}, c.Windows...)
	return true
}

// Detach removes the window from the container. When the container ends up
// empty it is destroyed in the same step and destroyed is true.
func (r *Registry) Detach(id ContainerID, handle platform.WindowID) (destroyed bool, ok bool) {
	c, found := r.containers[id]
	if !found {
		return false, false
	}
	i := c.indexOf(handle)
	if i < 0 {
		return false, false
	}
	c.Windows = append(c.Windows[:i], c.Windows[i+1:]...)
	if len(c.Windows) > 0 {
		return false, true
	}
	r.remove(id)
	return true, true
}

// Remove destroys a container regardless of its contents.
func (r *Registry) Remove(id ContainerID) bool {
	if _, ok := r.containers[id]; !ok {
		return false
	}
	r.remove(id)
	return true
}

func (r *Registry) remove(id ContainerID) {
	delete(r.containers, id)
	r.unlink(id)
}

func (r *Registry) unlink(id ContainerID) {
	for i, cid := range r.order {
		if cid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			return
		}
	}
}

// MoveToFront splices the container to the head of the list.
func (r *Registry) MoveToFront(id ContainerID) bool {
	if _, ok := r.containers[id]; !ok {
		return false
	}
	if len(r.order) > 0 && r.order[0] == id {
		return true
	}
	r.unlink(id)
	r.order = append([]ContainerID{id}, r.order...)
	return true
}

// FindWindow returns the container and window for a display handle.
func (r *Registry) FindWindow(handle platform.WindowID) (*Container, *Window, bool) {
	if handle == platform.None {
		return nil, nil, false
	}
	for _, id := range r.order {
		c := r.containers[id]
		if i := c.indexOf(handle); i >= 0 {
			return c, c.Windows[i], true
		}
	}
	return nil, nil, false
}

// FindContainer returns the container owning the display handle.
func (r *Registry) FindContainer(handle platform.WindowID) (*Container, bool) {
	c, _, ok := r.FindWindow(handle)
	return c, ok
}

// Managed reports whether the handle belongs to any container.
func (r *Registry) Managed(handle platform.WindowID) bool {
	_, _, ok := r.FindWindow(handle)
	return ok
}

// FindPlaceholder returns an unbound placeholder created for pid.
func (r *Registry) FindPlaceholder(pid int) (*Container, bool) {
	if pid <= 0 {
		return nil, false
	}
	for _, id := range r.order {
		c := r.containers[id]
		if c.Placeholder() && c.Head().PID == pid {
			return c, true
		}
	}
	return nil, false
}

// BindPlaceholder fills the unbound head slot of a placeholder container.
func (r *Registry) BindPlaceholder(id ContainerID, handle platform.WindowID, title string, hasTitle bool) bool {
	c, ok := r.containers[id]
	if !ok || !c.Placeholder() || handle == platform.None || r.Managed(handle) {
		return false
	}
	head := c.Head()
	head.ID = handle
	head.Title = title
	head.HasTitle = hasTitle
	return true
}

// Containers returns the containers in list order. The slice is a copy; the
// containers are not.
func (r *Registry) Containers() []*Container {
	out := make([]*Container, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.containers[id])
	}
	return out
}

// Current returns the first non-hidden container.
func (r *Registry) Current() (*Container, bool) {
	for _, id := range r.order {
		if c := r.containers[id]; !c.Hidden {
			return c, true
		}
	}
	return nil, false
}

// Count returns the number of containers.
func (r *Registry) Count() int {
	return len(r.order)
}

// HiddenCount returns the number of hidden containers.
func (r *Registry) HiddenCount() int {
	n := 0
	for _, id := range r.order {
		if r.containers[id].Hidden {
			n++
		}
	}
	return n
}

// WindowCount returns the number of windows across all containers.
func (r *Registry) WindowCount() int {
	n := 0
	for _, id := range r.order {
		n += len(r.containers[id].Windows)
	}
	return n
}

// CheckInvariants verifies the structural invariants of the registry.
func (r *Registry) CheckInvariants() error {
	if len(r.order) != len(r.containers) {
		return fmt.Errorf("order has %d ids but arena has %d containers", len(r.order), len(r.containers))
	}
	seen := make(map[ContainerID]struct{}, len(r.order))
	handles := make(map[platform.WindowID]ContainerID)
	for _, id := range r.order {
		if _, dup := seen[id]; dup {
			return fmt.Errorf("container %d listed twice", id)
		}
		seen[id] = struct{}{}
		c, ok := r.containers[id]
		if !ok {
			return fmt.Errorf("container %d listed but not stored", id)
		}
		if c.ID != id {
			return fmt.Errorf("container stored as %d has id %d", id, c.ID)
		}
		if len(c.Windows) == 0 {
			return fmt.Errorf("container %d is empty", id)
		}
		for _, w := range c.Windows {
			if !w.Bound() {
				continue
			}
			if other, dup := handles[w.ID]; dup {
				return fmt.Errorf("window %d owned by containers %d and %d", w.ID, other, id)
			}
			handles[w.ID] = id
		}
	}
	return nil
}
