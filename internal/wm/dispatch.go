package wm

import (
	"github.com/1broseidon/stackwm/internal/hotkeys"
	"github.com/1broseidon/stackwm/internal/platform"
)

// Mode names the modal loop an event was dispatched from.
type Mode int

const (
	ModeNone Mode = iota
	ModeSelecting
	ModeMoving
	ModeResizing
	ModeFullscreen
	ModeMenu
)

func (m Mode) String() string {
	switch m {
	case ModeSelecting:
		return "selecting"
	case ModeMoving:
		return "moving"
	case ModeResizing:
		return "resizing"
	case ModeFullscreen:
		return "fullscreen"
	case ModeMenu:
		return "menu"
	default:
		return "none"
	}
}

// enter pushes a modal context and returns the matching pop.
func (w *WM) enter(m Mode) func() {
	w.modes = append(w.modes, m)
	depth := len(w.modes)
	return func() {
		w.modes = w.modes[:depth-1]
	}
}

// mode returns the innermost active modal context.
func (w *WM) mode() Mode {
	if len(w.modes) == 0 {
		return ModeNone
	}
	return w.modes[len(w.modes)-1]
}

// pointerGrabbed reports whether an active modal loop holds the pointer.
// Fullscreen is the one loop that runs without a grab.
func (w *WM) pointerGrabbed() bool {
	for _, m := range w.modes {
		if m != ModeFullscreen {
			return true
		}
	}
	return false
}

// Depth returns how many modal loops are currently active.
func (w *WM) Depth() int {
	return len(w.modes)
}

// Dispatch routes one event. Modal loops call it for every event they do
// not consume themselves.
func (w *WM) Dispatch(ev platform.Event) {
	switch e := ev.(type) {
	case platform.MapRequest:
		w.mapRequest(e.Window)
	case platform.DestroyNotify:
		w.destroyNotify(e.Window)
	case platform.PropertyNotify:
		w.propertyNotify(e)
	case platform.ConfigureRequest:
		w.configureRequest(e)
	case platform.ButtonPress:
		w.buttonPress(e)
	case platform.KeyPress:
		w.keyPress(e)
	default:
		// Releases and motion only matter inside a modal loop.
		return
	}
	if w.mode() != ModeNone {
		w.logger.Debug("nested dispatch", "mode", w.mode(), "depth", len(w.modes))
	}
}

func (w *WM) buttonPress(ev platform.ButtonPress) {
	if ev.Window != w.display.Root() {
		if c, ok := w.reg.FindContainer(ev.Window); ok {
			w.Focus(c.ID)
		}
		return
	}
	// A click on a client that does not select button events propagates
	// to the root with the client as child.
	if c, ok := w.reg.FindContainer(ev.Child); ok {
		w.Focus(c.ID)
		return
	}
	switch ev.Button {
	case 3:
		w.MainMenu(ev.RootX, ev.RootY)
	case 1:
		w.SwitcherMenu(ev.RootX, ev.RootY)
	}
}

func (w *WM) keyPress(ev platform.KeyPress) {
	action, ok := w.lookupKey(ev)
	if !ok {
		return
	}
	// A nested loop would release the outer loop's grab on exit.
	if w.pointerGrabbed() {
		w.logger.Debug("chord ignored while grabbed", "action", action, "mode", w.mode())
		return
	}
	c, ok := w.reg.Current()
	if !ok || c.Placeholder() {
		return
	}
	w.logger.Debug("chord", "action", action, "container", c.ID)

	switch action {
	case hotkeys.ActionFullscreen:
		w.Fullscreen(c.ID)
	case hotkeys.ActionReshape:
		w.Resize(c.ID)
	case hotkeys.ActionRedraw:
		w.Redraw(c.ID)
	}
}
