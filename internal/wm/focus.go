package wm

import (
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/registry"
)

// Focus unhides the container, moves it to the head of the list and
// restores the display.
func (w *WM) Focus(id registry.ContainerID) {
	c, ok := w.reg.Container(id)
	if !ok {
		return
	}
	c.Hidden = false
	w.reg.MoveToFront(id)
	w.Restore()
}

// Restore re-derives the display state from the registry. The first
// non-hidden container shows and focuses its head; every other window is
// unmapped and every other head carries a click-to-focus grab. Commands are
// only issued where the tracked state differs, so a repeated Restore is
// silent.
func (w *WM) Restore() {
	current, hasCurrent := w.reg.Current()

	for _, c := range w.reg.Containers() {
		head := c.Head()
		if hasCurrent && c.ID == current.ID {
			for _, win := range c.Windows[1:] {
				w.unmap(win)
			}
			if !head.Bound() {
				continue
			}
			if !head.Mapped {
				w.display.Map(head.ID)
				head.Mapped = true
			}
			if head.ButtonsGrabbed {
				w.display.UngrabButtons(head.ID)
				head.ButtonsGrabbed = false
			}
			if w.focused != head.ID {
				w.display.Raise(head.ID)
				w.display.Focus(head.ID)
				w.focused = head.ID
				w.logger.Debug("focus", "window", head.ID, "container", c.ID)
			}
			continue
		}

		for _, win := range c.Windows {
			w.unmap(win)
		}
		if head.Bound() && !head.ButtonsGrabbed {
			w.display.GrabButtons(head.ID)
			head.ButtonsGrabbed = true
		}
	}

	if !hasCurrent && w.focused != platform.None {
		w.display.Focus(platform.None)
		w.focused = platform.None
	}
}

func (w *WM) unmap(win *registry.Window) {
	if !win.Bound() || !win.Mapped {
		return
	}
	w.display.Unmap(win.ID)
	win.Mapped = false
}

// Hide iconifies the container.
func (w *WM) Hide(id registry.ContainerID) {
	c, ok := w.reg.Container(id)
	if !ok {
		return
	}
	c.Hidden = true
	w.Restore()
}

// UnhideByIndex focuses the n-th (1-based) hidden container in list order.
func (w *WM) UnhideByIndex(n int) {
	hidden := w.hiddenContainers()
	if n < 1 || n > len(hidden) {
		return
	}
	w.Focus(hidden[n-1].ID)
}

// FocusByIndex focuses the n-th (0-based) container in list order.
func (w *WM) FocusByIndex(n int) {
	all := w.boundContainers()
	if n < 0 || n >= len(all) {
		return
	}
	w.Focus(all[n].ID)
}

// boundContainers lists containers whose head is a real window. Placeholders
// waiting for a spawned process are invisible to menus and indices.
func (w *WM) boundContainers() []*registry.Container {
	var out []*registry.Container
	for _, c := range w.reg.Containers() {
		if !c.Placeholder() {
			out = append(out, c)
		}
	}
	return out
}

func (w *WM) hiddenContainers() []*registry.Container {
	var out []*registry.Container
	for _, c := range w.boundContainers() {
		if c.Hidden {
			out = append(out, c)
		}
	}
	return out
}
