package platform

// Event is one inbound display-server event the manager understands.
type Event interface {
	event()
}

// MapRequest asks the manager to map a top-level window.
type MapRequest struct {
	Window WindowID
}

// DestroyNotify reports that a window no longer exists.
type DestroyNotify struct {
	Window WindowID
}

// PropertyNotify reports a property change. Title is set when the property
// is one of the window name properties.
type PropertyNotify struct {
	Window WindowID
	Title  bool
}

// ConfigMask marks which ConfigureRequest fields the client set.
type ConfigMask uint16

const (
	ConfigX ConfigMask = 1 << iota
	ConfigY
	ConfigWidth
	ConfigHeight
)

// ConfigureRequest is a client asking for new geometry.
type ConfigureRequest struct {
	Window WindowID
	X      int
	Y      int
	Width  int
	Height int
	Mask   ConfigMask
}

// Apply overlays the requested fields onto the current geometry.
func (r ConfigureRequest) Apply(current Rect) Rect {
	out := current
	if r.Mask&ConfigX != 0 {
		out.X = r.X
	}
	if r.Mask&ConfigY != 0 {
		out.Y = r.Y
	}
	if r.Mask&ConfigWidth != 0 {
		out.Width = r.Width
	}
	if r.Mask&ConfigHeight != 0 {
		out.Height = r.Height
	}
	return out
}

// Pointer carries the coordinates shared by button and motion events. X and
// Y are relative to Window; RootX and RootY to the root window.
type Pointer struct {
	Window WindowID
	Child  WindowID
	RootX  int
	RootY  int
	X      int
	Y      int
}

// ButtonPress is a pointer button going down.
type ButtonPress struct {
	Pointer
	Button int
}

// ButtonRelease is a pointer button going up.
type ButtonRelease struct {
	Pointer
	Button int
}

// MotionNotify is pointer motion while a grab reports it.
type MotionNotify struct {
	Pointer
}

// KeyPress is a key going down with the modifier state at that time.
type KeyPress struct {
	Keycode byte
	State   uint16
}

func (MapRequest) event()       {}
func (DestroyNotify) event()    {}
func (PropertyNotify) event()   {}
func (ConfigureRequest) event() {}
func (ButtonPress) event()      {}
func (ButtonRelease) event()    {}
func (MotionNotify) event()     {}
func (KeyPress) event()         {}
