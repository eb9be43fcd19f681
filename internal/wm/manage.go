package wm

import (
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/proctree"
	"github.com/1broseidon/stackwm/internal/registry"
)

func (w *WM) mapRequest(win platform.WindowID) {
	if win == platform.None || win == w.display.Root() || win == w.display.MenuWindow() {
		return
	}
	if _, managed, ok := w.reg.FindWindow(win); ok {
		// The client withdrew the window behind our back and wants it back.
		// Only the current head is actually mapped again. Withdrawing a
		// focused window drops focus to the pointer root, so focus is
		// reissued as well.
		managed.Mapped = false
		if w.focused == win {
			w.focused = platform.None
		}
		w.Restore()
		return
	}
	attrs, err := w.display.Attributes(win)
	if err != nil || attrs.OverrideRedirect {
		return
	}
	w.manage(win, false)
}

// manage adopts a new top-level window: a pending placeholder for its
// process wins, then a container whose head process is an ancestor, then a
// new container.
func (w *WM) manage(handle platform.WindowID, mapped bool) {
	title, hasTitle := w.display.Title(handle)
	win := &registry.Window{
		ID:       handle,
		Title:    title,
		HasTitle: hasTitle,
		PID:      w.display.PID(handle),
		Mapped:   mapped,
	}
	w.display.Manage(handle, w.cfg.BorderWidth, w.cfg.BorderColor)

	if w.manageFromPlaceholder(win) {
		return
	}
	if w.manageOnContainer(win) {
		return
	}

	c := w.reg.CreateContainer(win, true, false)
	w.logger.Debug("managed in new container", "window", handle, "pid", win.PID, "container", c.ID)
	w.Restore()
}

func (w *WM) manageFromPlaceholder(win *registry.Window) bool {
	c, ok := w.reg.FindPlaceholder(win.PID)
	if !ok {
		return false
	}
	if !w.reg.BindPlaceholder(c.ID, win.ID, win.Title, win.HasTitle) {
		return false
	}
	c.Head().Mapped = win.Mapped
	w.logger.Debug("bound placeholder", "window", win.ID, "pid", win.PID, "container", c.ID)

	if w.cfg.SweepNewWindows && !w.pointerGrabbed() {
		w.Resize(c.ID)
	} else {
		w.display.MoveResize(win.ID, w.newWindowBounds())
	}
	w.Focus(c.ID)
	return true
}

func (w *WM) manageOnContainer(win *registry.Window) bool {
	if win.PID <= 0 {
		return false
	}
	for _, c := range w.reg.Containers() {
		head := c.Head()
		if !head.Bound() || !proctree.IsAncestor(w.parent, head.PID, win.PID) {
			continue
		}
		if bounds, err := w.display.Geometry(head.ID); err == nil {
			w.display.MoveResize(win.ID, bounds)
		}
		w.reg.Attach(c.ID, win)
		w.logger.Debug("joined container", "window", win.ID, "pid", win.PID, "container", c.ID, "head_pid", head.PID)
		w.Focus(c.ID)
		return true
	}
	return false
}

// newWindowBounds centers the default new-window size on the screen.
func (w *WM) newWindowBounds() platform.Rect {
	sw, sh := w.display.ScreenSize()
	width, height := w.cfg.NewWindowWidth, w.cfg.NewWindowHeight
	if width <= 0 || width > sw {
		width = sw * 2 / 3
	}
	if height <= 0 || height > sh {
		height = sh * 2 / 3
	}
	width = max(width, w.cfg.MinWindowSize)
	height = max(height, w.cfg.MinWindowSize)
	return platform.Rect{
		X:      (sw - width) / 2,
		Y:      (sh - height) / 2,
		Width:  width,
		Height: height,
	}
}

func (w *WM) destroyNotify(win platform.WindowID) {
	c, ok := w.reg.FindContainer(win)
	if !ok {
		return
	}
	if w.focused == win {
		w.focused = platform.None
	}
	destroyed, _ := w.reg.Detach(c.ID, win)
	w.logger.Debug("unmanaged", "window", win, "container", c.ID, "container_destroyed", destroyed)
	w.Restore()
}

func (w *WM) propertyNotify(ev platform.PropertyNotify) {
	if !ev.Title {
		return
	}
	_, win, ok := w.reg.FindWindow(ev.Window)
	if !ok {
		return
	}
	win.Title, win.HasTitle = w.display.Title(ev.Window)
}

func (w *WM) configureRequest(ev platform.ConfigureRequest) {
	c, _, ok := w.reg.FindWindow(ev.Window)
	if !ok {
		// Not ours yet; clients size themselves before asking to be mapped.
		w.display.Configure(ev)
		return
	}
	if !c.AcceptsConfigRequests {
		return
	}
	current, err := w.display.Geometry(ev.Window)
	if err != nil {
		return
	}
	w.display.MoveResize(ev.Window, ev.Apply(current))
}

// pruneStalePlaceholders drops placeholders whose process died before it
// mapped a window.
func (w *WM) pruneStalePlaceholders() {
	for _, c := range w.reg.Containers() {
		if c.Placeholder() && !w.alive(c.Head().PID) {
			w.logger.Debug("dropping stale placeholder", "pid", c.Head().PID, "container", c.ID)
			w.reg.Remove(c.ID)
		}
	}
}

func (w *WM) spawnTerminal() {
	pid, err := w.spawner.Spawn(w.cfg.Terminal)
	if err != nil {
		w.logger.Warn("failed to launch terminal", "error", err)
		return
	}
	c := w.reg.CreateContainer(&registry.Window{PID: pid}, false, true)
	w.logger.Debug("placeholder created", "pid", pid, "container", c.ID)
}
