package wm

import (
	"github.com/1broseidon/stackwm/internal/menu"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/registry"
)

// MainMenu runs the action menu at the pointer and executes the selection.
func (w *WM) MainMenu(x, y int) {
	w.pruneStalePlaceholders()

	row := w.runMenu(x, y, w.mainLabels)
	action, index := menu.MainAction(row)
	w.logger.Debug("main menu", "row", row, "action", action)

	switch action {
	case menu.ActionNew:
		w.spawnTerminal()
	case menu.ActionReshape:
		if id, ok := w.selectContainer(); ok {
			w.Resize(id)
		}
	case menu.ActionMove:
		if id, ok := w.selectContainer(); ok {
			w.Move(id)
		}
	case menu.ActionDelete:
		if id, ok := w.selectContainer(); ok {
			w.Delete(id)
		}
	case menu.ActionHide:
		if id, ok := w.selectContainer(); ok {
			w.Hide(id)
		}
	case menu.ActionUnhide:
		w.UnhideByIndex(index)
	}
}

// SwitcherMenu lists every container and focuses the chosen one.
func (w *WM) SwitcherMenu(x, y int) {
	w.pruneStalePlaceholders()
	if len(w.boundContainers()) == 0 {
		return
	}

	row := w.runMenu(x, y, w.switcherLabels)
	w.logger.Debug("switcher menu", "row", row)
	if row != menu.NoSelection {
		w.FocusByIndex(row)
	}
}

// Delete closes every window of the container.
func (w *WM) Delete(id registry.ContainerID) {
	c, ok := w.reg.Container(id)
	if !ok {
		return
	}
	for _, win := range c.Windows {
		if win.Bound() {
			w.display.Close(win.ID)
		}
	}
}

func (w *WM) mainLabels() []string {
	hidden := w.hiddenContainers()
	titles := make([]string, 0, len(hidden))
	for _, c := range hidden {
		titles = append(titles, menu.Title(c.Head().Title, c.Head().HasTitle))
	}
	return menu.MainLabels(titles)
}

func (w *WM) switcherLabels() []string {
	all := w.boundContainers()
	labels := make([]string, 0, len(all))
	for _, c := range all {
		labels = append(labels, menu.Title(c.Head().Title, c.Head().HasTitle))
	}
	return labels
}

// runMenu shows the menu surface and tracks the highlighted row until a
// button event ends the loop. Labels are re-read on every motion since
// nested dispatch may add or remove containers. The result is the highlighted
// row, or NoSelection when the pointer ends outside the menu.
func (w *WM) runMenu(x, y int, labels func() []string) int {
	defer w.enter(ModeMenu)()

	rows := labels()
	if len(rows) == 0 {
		return menu.NoSelection
	}
	width, rowHeight := w.display.MenuMetrics(w.cfg.MenuLabelHint)
	sw, sh := w.display.ScreenSize()
	bounds := menu.Bounds(x, y, width, rowHeight, len(rows), sw, sh)

	w.display.ShowMenu(bounds)
	defer w.display.HideMenu()
	highlight := menu.NoSelection
	w.drawMenu(rows, width, rowHeight, highlight)

	if !w.grab(w.display.MenuWindow(), allPointerEvents, platform.CursorNormal) {
		return menu.NoSelection
	}
	defer w.display.UngrabPointer()

	for {
		ev, err := w.display.NextEvent()
		if err != nil {
			return menu.NoSelection
		}
		switch e := ev.(type) {
		case platform.MotionNotify:
			next := labels()
			if len(next) == 0 {
				return menu.NoSelection
			}
			if len(next) != len(rows) {
				bounds.Height = rowHeight * len(next)
				w.display.ShowMenu(bounds)
			}
			rows = next
			highlight = menu.RowAt(e.RootX-bounds.X, e.RootY-bounds.Y, width, rowHeight, len(rows))
			w.drawMenu(rows, width, rowHeight, highlight)
		case platform.ButtonPress:
			return finalRow(e.Pointer, bounds, width, rowHeight, len(rows), highlight)
		case platform.ButtonRelease:
			return finalRow(e.Pointer, bounds, width, rowHeight, len(rows), highlight)
		default:
			w.Dispatch(ev)
		}
	}
}

func finalRow(p platform.Pointer, bounds platform.Rect, width, rowHeight, rows, highlight int) int {
	if menu.RowAt(p.RootX-bounds.X, p.RootY-bounds.Y, width, rowHeight, rows) == menu.NoSelection {
		return menu.NoSelection
	}
	return highlight
}

func (w *WM) drawMenu(rows []string, width, rowHeight, highlight int) {
	for i, label := range rows {
		style := w.cfg.MenuNormal
		if i == highlight {
			style = w.cfg.MenuHighlight
		}
		w.display.DrawMenuRow(i, width, rowHeight, label, style)
	}
}
