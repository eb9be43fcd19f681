// Package menu is the row model behind the main menu and the container
// switcher: labels, hit testing, placement and row-to-action mapping.
// Drawing and the modal loop live with the window manager.
package menu

import "github.com/1broseidon/stackwm/internal/platform"

// Action is what a main menu row does.
type Action int

const (
	ActionNone Action = iota
	ActionNew
	ActionReshape
	ActionMove
	ActionDelete
	ActionHide
	ActionUnhide
)

func (a Action) String() string {
	switch a {
	case ActionNew:
		return "new"
	case ActionReshape:
		return "reshape"
	case ActionMove:
		return "move"
	case ActionDelete:
		return "delete"
	case ActionHide:
		return "hide"
	case ActionUnhide:
		return "unhide"
	default:
		return "none"
	}
}

// FixedRows is the number of action rows at the top of the main menu.
const FixedRows = 5

var fixedLabels = [FixedRows]string{"New", "Reshape", "Move", "Delete", "Hide"}

var fixedActions = [FixedRows]Action{ActionNew, ActionReshape, ActionMove, ActionDelete, ActionHide}

// NoSelection is the row index for "nothing under the pointer".
const NoSelection = -1

// MainLabels returns the main menu rows: the fixed actions followed by the
// titles of the hidden containers.
func MainLabels(hiddenTitles []string) []string {
	labels := make([]string, 0, FixedRows+len(hiddenTitles))
	labels = append(labels, fixedLabels[:]...)
	return append(labels, hiddenTitles...)
}

// MainAction maps a main menu row to its action. For ActionUnhide the
// second result is the 1-based index among hidden containers.
func MainAction(row int) (Action, int) {
	switch {
	case row < 0:
		return ActionNone, 0
	case row < FixedRows:
		return fixedActions[row], 0
	default:
		return ActionUnhide, row - (FixedRows - 1)
	}
}

// RowAt returns the row under a point relative to the menu's top-left
// corner, or NoSelection when the point is outside the menu.
func RowAt(x, y, width, rowHeight, rows int) int {
	if rowHeight <= 0 || rows <= 0 {
		return NoSelection
	}
	if x < 0 || y < 0 || x >= width || y >= rowHeight*rows {
		return NoSelection
	}
	return y / rowHeight
}

// Bounds places a menu horizontally centered on the pointer with its top
// edge at the pointer, kept on screen where it fits.
func Bounds(pointerX, pointerY, width, rowHeight, rows, screenWidth, screenHeight int) platform.Rect {
	r := platform.Rect{
		X:      pointerX - width/2,
		Y:      pointerY,
		Width:  width,
		Height: rowHeight * rows,
	}
	if screenWidth > 0 && r.X+r.Width > screenWidth {
		r.X = screenWidth - r.Width
	}
	if screenHeight > 0 && r.Y+r.Height > screenHeight {
		r.Y = screenHeight - r.Height
	}
	if r.X < 0 {
		r.X = 0
	}
	if r.Y < 0 {
		r.Y = 0
	}
	return r
}

// Title returns the label shown for a window title.
func Title(title string, hasTitle bool) string {
	if !hasTitle || title == "" {
		return "?"
	}
	return title
}
