package platform

import "errors"

// WindowID is a display-server window handle.
type WindowID uint32

// None is the zero handle: no window.
const None WindowID = 0

// Rect describes a rectangular region in screen coordinates.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// Contains reports whether the point lies inside the rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Cursor selects the pointer shape shown while a grab is active.
type Cursor int

const (
	CursorNormal Cursor = iota
	CursorSelect
	CursorMove
	CursorResize
)

// PointerMask selects which pointer events a grab reports.
type PointerMask uint16

const (
	PointerPress PointerMask = 1 << iota
	PointerRelease
	PointerMotion
)

// ErrGrabRefused is returned when the display server will not give us an
// exclusive grab (another client holds it, or the window is not viewable).
var ErrGrabRefused = errors.New("input grab refused")

// ErrClosed is returned by NextEvent once the connection is gone.
var ErrClosed = errors.New("display connection closed")

// Attributes is the subset of window attributes the manager inspects.
type Attributes struct {
	OverrideRedirect bool
	Viewable         bool
}

// MenuStyle carries the colors a menu row is painted with.
type MenuStyle struct {
	Foreground uint32
	Background uint32
}

// Backend abstracts the display server. Requests are fire-and-forget unless
// they return an error; protocol errors caused by races with destroyed
// windows surface later through NextEvent and are expected to be ignored.
type Backend interface {
	// NextEvent blocks until the next event arrives. Protocol errors are
	// consumed by the implementation and never returned.
	NextEvent() (Event, error)

	Root() WindowID
	ScreenSize() (width, height int)
	TopLevelWindows() ([]WindowID, error)
	Attributes(win WindowID) (Attributes, error)
	Title(win WindowID) (string, bool)
	PID(win WindowID) int
	Geometry(win WindowID) (Rect, error)

	// Manage subscribes to the window's property changes and decorates it.
	Manage(win WindowID, borderWidth int, borderColor uint32)
	Map(win WindowID)
	Unmap(win WindowID)
	Raise(win WindowID)
	// Focus with None reverts input focus to the pointer root.
	Focus(win WindowID)
	Move(win WindowID, x, y int)
	MoveResize(win WindowID, bounds Rect)
	SetBorderWidth(win WindowID, width int)
	Configure(req ConfigureRequest)
	// Close asks the client to close the window, killing it when it does not
	// support a graceful close.
	Close(win WindowID)

	// GrabButtons installs a click-to-focus grab on the window; clicks are
	// reported as ButtonPress events instead of reaching the client.
	GrabButtons(win WindowID)
	UngrabButtons(win WindowID)
	GrabPointer(on WindowID, mask PointerMask, cursor Cursor) error
	UngrabPointer()
	// QueryPointer reports the pointer position relative to the window.
	QueryPointer(relativeTo WindowID) (x, y int, err error)

	// Outline is the lightweight proxy shown during move and resize.
	ShowOutline(bounds Rect)
	HideOutline()

	MenuWindow() WindowID
	// MenuMetrics returns the menu width for the label hint and a row height.
	MenuMetrics(labelHint string) (width, rowHeight int)
	ShowMenu(bounds Rect)
	DrawMenuRow(row int, width, rowHeight int, label string, style MenuStyle)
	HideMenu()
}
