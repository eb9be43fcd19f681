package wm

import (
	"github.com/1broseidon/stackwm/internal/hotkeys"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/registry"
)

const allPointerEvents = platform.PointerPress | platform.PointerRelease | platform.PointerMotion

// cancelButton reports whether a press aborts a selection or sweep. Only the
// right button (and anything beyond it) confirms.
func cancelButton(button int) bool {
	return button == 1 || button == 2
}

func (w *WM) grab(on platform.WindowID, mask platform.PointerMask, cursor platform.Cursor) bool {
	if err := w.display.GrabPointer(on, mask, cursor); err != nil {
		w.logger.Debug("pointer grab failed, aborting", "mode", w.mode(), "error", err)
		return false
	}
	return true
}

// SelectWindow waits for a single click and returns the top-level window
// under the pointer, or None when the click used a cancel button.
func (w *WM) SelectWindow() platform.WindowID {
	defer w.enter(ModeSelecting)()

	if !w.grab(w.display.Root(), platform.PointerPress, platform.CursorSelect) {
		return platform.None
	}
	defer w.display.UngrabPointer()

	for {
		ev, err := w.display.NextEvent()
		if err != nil {
			return platform.None
		}
		press, ok := ev.(platform.ButtonPress)
		if !ok {
			w.Dispatch(ev)
			continue
		}
		if cancelButton(press.Button) {
			return platform.None
		}
		if press.Child != platform.None {
			return press.Child
		}
		return press.Window
	}
}

// selectContainer runs SelectWindow and resolves the managed container.
func (w *WM) selectContainer() (registry.ContainerID, bool) {
	win := w.SelectWindow()
	c, ok := w.reg.FindContainer(win)
	if !ok {
		return 0, false
	}
	return c.ID, true
}

// Move drags an outline of the container's head around and moves every
// window of the container there on release. A press aborts.
func (w *WM) Move(id registry.ContainerID) {
	c, ok := w.reg.Container(id)
	if !ok || c.Placeholder() {
		return
	}
	start, err := w.display.Geometry(c.Head().ID)
	if err != nil {
		return
	}
	px, py, err := w.display.QueryPointer(w.display.Root())
	if err != nil {
		return
	}
	dx, dy := px-start.X, py-start.Y

	defer w.enter(ModeMoving)()

	w.display.ShowOutline(start)
	defer w.display.HideOutline()

	if !w.grab(w.display.Root(), allPointerEvents, platform.CursorMove) {
		return
	}
	defer w.display.UngrabPointer()

	bounds := start
	for {
		ev, err := w.display.NextEvent()
		if err != nil {
			return
		}
		switch e := ev.(type) {
		case platform.MotionNotify:
			bounds.X = e.RootX - dx
			bounds.Y = e.RootY - dy
			w.display.ShowOutline(bounds)
		case platform.ButtonPress:
			return
		case platform.ButtonRelease:
			c, ok := w.reg.Container(id)
			if !ok {
				return
			}
			for _, win := range c.Windows {
				if win.Bound() {
					w.display.Move(win.ID, bounds.X, bounds.Y)
				}
			}
			w.Focus(id)
			return
		default:
			w.Dispatch(ev)
			if _, ok := w.reg.Container(id); !ok {
				w.logger.Debug("move target vanished", "container", id)
				return
			}
		}
	}
}

// Resize lets the user sweep a new rectangle for the container: the first
// press fixes a corner, motion drags the opposite one and release commits.
// It reports whether the new geometry was applied.
func (w *WM) Resize(id registry.ContainerID) bool {
	if _, ok := w.reg.Container(id); !ok {
		return false
	}

	defer w.enter(ModeResizing)()

	if !w.grab(w.display.Root(), allPointerEvents, platform.CursorResize) {
		return false
	}
	defer w.display.UngrabPointer()
	defer w.display.HideOutline()

	var (
		fx, fy   int
		sweeping bool
		bounds   platform.Rect
	)
	for {
		ev, err := w.display.NextEvent()
		if err != nil {
			return false
		}
		switch e := ev.(type) {
		case platform.MotionNotify:
			if sweeping {
				bounds = sweep(fx, fy, e.RootX, e.RootY)
				w.display.ShowOutline(bounds)
			}
		case platform.ButtonRelease:
			// Releases before a corner is fixed belong to whatever opened us.
			if sweeping {
				return w.commitResize(id, bounds)
			}
		case platform.ButtonPress:
			if cancelButton(e.Button) || sweeping {
				return false
			}
			fx, fy = e.RootX, e.RootY
			sweeping = true
			bounds = platform.Rect{X: fx, Y: fy, Width: 1, Height: 1}
			w.display.ShowOutline(bounds)
		default:
			w.Dispatch(ev)
			if _, ok := w.reg.Container(id); !ok {
				w.logger.Debug("resize target vanished", "container", id)
				return false
			}
		}
	}
}

func (w *WM) commitResize(id registry.ContainerID, bounds platform.Rect) bool {
	c, ok := w.reg.Container(id)
	if !ok {
		return false
	}
	bounds.Width = max(bounds.Width, w.cfg.MinWindowSize)
	bounds.Height = max(bounds.Height, w.cfg.MinWindowSize)
	for _, win := range c.Windows {
		if win.Bound() {
			w.display.MoveResize(win.ID, bounds)
		}
	}
	w.Restore()
	return true
}

// sweep returns the rectangle spanned by the fixed corner and the pointer.
func sweep(fx, fy, x, y int) platform.Rect {
	var r platform.Rect
	if x < fx {
		r.X, r.Width = x, fx-x
	} else {
		r.X, r.Width = fx, x-fx+1
	}
	if y < fy {
		r.Y, r.Height = y, fy-y
	} else {
		r.Y, r.Height = fy, y-fy+1
	}
	return r
}

// Fullscreen strips the head's border and covers the screen until the
// fullscreen chord is pressed again, then hands over to Resize so the user
// picks the next size.
func (w *WM) Fullscreen(id registry.ContainerID) {
	c, ok := w.reg.Container(id)
	if !ok || c.Placeholder() {
		return
	}
	head := c.Head().ID

	defer w.enter(ModeFullscreen)()

	sw, sh := w.display.ScreenSize()
	w.display.SetBorderWidth(head, 0)
	w.display.MoveResize(head, platform.Rect{Width: sw, Height: sh})

	for {
		ev, err := w.display.NextEvent()
		if err != nil {
			return
		}
		key, ok := ev.(platform.KeyPress)
		if !ok {
			w.Dispatch(ev)
			if !w.reg.Managed(head) {
				w.logger.Debug("fullscreen window vanished", "window", head)
				return
			}
			continue
		}
		if action, ok := w.lookupKey(key); ok && action == hotkeys.ActionFullscreen {
			w.display.SetBorderWidth(head, w.cfg.BorderWidth)
			w.Resize(id)
			return
		}
	}
}

// Redraw nudges the head's width by one pixel and back, forcing clients that
// missed an expose to repaint.
func (w *WM) Redraw(id registry.ContainerID) {
	c, ok := w.reg.Container(id)
	if !ok || c.Placeholder() {
		return
	}
	head := c.Head().ID
	bounds, err := w.display.Geometry(head)
	if err != nil {
		return
	}
	shrunk := bounds
	shrunk.Width = max(bounds.Width-1, 1)
	w.display.MoveResize(head, shrunk)
	w.display.MoveResize(head, bounds)
}

func (w *WM) lookupKey(ev platform.KeyPress) (hotkeys.Action, bool) {
	if w.keys == nil {
		return 0, false
	}
	return w.keys.Lookup(ev.Keycode, ev.State)
}
