package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/res"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/icccm"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/stackwm/internal/platform"
)

// TopLevelWindows lists the root's children, minus the manager's own windows.
func (c *Connection) TopLevelWindows() ([]platform.WindowID, error) {
	tree, err := xproto.QueryTree(c.XUtil.Conn(), c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("query tree: %w", err)
	}

	out := make([]platform.WindowID, 0, len(tree.Children))
	for _, child := range tree.Children {
		if c.ownWindow(child) {
			continue
		}
		out = append(out, platform.WindowID(child))
	}
	return out, nil
}

func (c *Connection) ownWindow(win xproto.Window) bool {
	if win == c.check {
		return true
	}
	if c.outline != nil && win == c.outline.window {
		return true
	}
	return c.menu != nil && win == c.menu.window
}

func (c *Connection) Attributes(win platform.WindowID) (platform.Attributes, error) {
	attrs, err := xproto.GetWindowAttributes(c.XUtil.Conn(), xproto.Window(win)).Reply()
	if err != nil {
		return platform.Attributes{}, fmt.Errorf("get attributes of 0x%x: %w", uint32(win), err)
	}
	return platform.Attributes{
		OverrideRedirect: attrs.OverrideRedirect,
		Viewable:         attrs.MapState == xproto.MapStateViewable,
	}, nil
}

// Title prefers _NET_WM_NAME and falls back to WM_NAME.
func (c *Connection) Title(win platform.WindowID) (string, bool) {
	if name, err := ewmh.WmNameGet(c.XUtil, xproto.Window(win)); err == nil && name != "" {
		return name, true
	}
	name, err := icccm.WmNameGet(c.XUtil, xproto.Window(win))
	if err != nil {
		return "", false
	}
	return name, true
}

// PID asks the X-Resource extension for the owning client's process and falls
// back to the self-reported _NET_WM_PID. Zero means unknown.
func (c *Connection) PID(win platform.WindowID) int {
	if c.hasRes {
		spec := res.ClientIdSpec{Client: uint32(win), Mask: res.ClientIdMaskLocalClientPID}
		reply, err := res.QueryClientIds(c.XUtil.Conn(), 1, []res.ClientIdSpec{spec}).Reply()
		if err == nil {
			for _, id := range reply.Ids {
				if id.Spec.Mask&res.ClientIdMaskLocalClientPID != 0 && len(id.Value) > 0 {
					return int(id.Value[0])
				}
			}
		}
	}

	pid, err := ewmh.WmPidGet(c.XUtil, xproto.Window(win))
	if err != nil {
		return 0
	}
	return int(pid)
}

func (c *Connection) Geometry(win platform.WindowID) (platform.Rect, error) {
	geom, err := xwindow.RawGeometry(c.XUtil, xproto.Drawable(win))
	if err != nil {
		return platform.Rect{}, fmt.Errorf("get geometry of 0x%x: %w", uint32(win), err)
	}
	return platform.Rect{X: geom.X(), Y: geom.Y(), Width: geom.Width(), Height: geom.Height()}, nil
}

// Manage selects property changes on the window and paints its border.
func (c *Connection) Manage(win platform.WindowID, borderWidth int, borderColor uint32) {
	conn := c.XUtil.Conn()
	xproto.ChangeWindowAttributes(
		conn,
		xproto.Window(win),
		xproto.CwBorderPixel|xproto.CwEventMask,
		[]uint32{borderColor, xproto.EventMaskPropertyChange},
	)
	c.SetBorderWidth(win, borderWidth)
}

func (c *Connection) Map(win platform.WindowID) {
	xwindow.New(c.XUtil, xproto.Window(win)).Map()
}

func (c *Connection) Unmap(win platform.WindowID) {
	xwindow.New(c.XUtil, xproto.Window(win)).Unmap()
}

func (c *Connection) Raise(win platform.WindowID) {
	xwindow.New(c.XUtil, xproto.Window(win)).Stack(xproto.StackModeAbove)
}

// Focus gives the window input focus and publishes it as the EWMH active
// window. platform.None reverts focus to the pointer root.
func (c *Connection) Focus(win platform.WindowID) {
	target := xproto.Window(win)
	if win == platform.None {
		target = xproto.InputFocusPointerRoot
	}
	xproto.SetInputFocus(c.XUtil.Conn(), xproto.InputFocusPointerRoot, target, xproto.TimeCurrentTime)

	if err := ewmh.ActiveWindowSet(c.XUtil, xproto.Window(win)); err != nil {
		c.logger.Debug("x11: set active window failed", "window", uint32(win), "error", err)
	}
}

func (c *Connection) Move(win platform.WindowID, x, y int) {
	xwindow.New(c.XUtil, xproto.Window(win)).Move(x, y)
}

func (c *Connection) MoveResize(win platform.WindowID, bounds platform.Rect) {
	width, height := bounds.Width, bounds.Height
	// Ensure minimum dimensions
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	xwindow.New(c.XUtil, xproto.Window(win)).MoveResize(bounds.X, bounds.Y, width, height)
}

func (c *Connection) SetBorderWidth(win platform.WindowID, width int) {
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		xproto.Window(win),
		xproto.ConfigWindowBorderWidth,
		[]uint32{uint32(width)},
	)
}

// Configure forwards a client's geometry request unchanged.
func (c *Connection) Configure(req platform.ConfigureRequest) {
	var (
		mask   uint16
		values []uint32
	)
	// Value list order follows the bit positions of the mask.
	if req.Mask&platform.ConfigX != 0 {
		mask |= xproto.ConfigWindowX
		values = append(values, uint32(req.X))
	}
	if req.Mask&platform.ConfigY != 0 {
		mask |= xproto.ConfigWindowY
		values = append(values, uint32(req.Y))
	}
	if req.Mask&platform.ConfigWidth != 0 {
		mask |= xproto.ConfigWindowWidth
		values = append(values, uint32(req.Width))
	}
	if req.Mask&platform.ConfigHeight != 0 {
		mask |= xproto.ConfigWindowHeight
		values = append(values, uint32(req.Height))
	}
	if mask == 0 {
		return
	}
	xproto.ConfigureWindow(c.XUtil.Conn(), xproto.Window(req.Window), mask, values)
}

// Close sends WM_DELETE_WINDOW when the client supports it and kills the
// client otherwise.
func (c *Connection) Close(win platform.WindowID) {
	if c.supportsDelete(win) {
		ev := xproto.ClientMessageEvent{
			Format: 32,
			Window: xproto.Window(win),
			Type:   c.atoms.wmProtocols,
			Data: xproto.ClientMessageDataUnionData32New([]uint32{
				uint32(c.atoms.wmDeleteWin), xproto.TimeCurrentTime, 0, 0, 0,
			}),
		}
		xproto.SendEvent(c.XUtil.Conn(), false, xproto.Window(win), xproto.EventMaskNoEvent, string(ev.Bytes()))
		return
	}
	xproto.KillClient(c.XUtil.Conn(), uint32(win))
}

func (c *Connection) supportsDelete(win platform.WindowID) bool {
	protocols, err := icccm.WmProtocolsGet(c.XUtil, xproto.Window(win))
	if err != nil {
		return false
	}
	for _, p := range protocols {
		if p == "WM_DELETE_WINDOW" {
			return true
		}
	}
	return false
}

func (c *Connection) GrabButtons(win platform.WindowID) {
	xproto.GrabButton(
		c.XUtil.Conn(),
		false,
		xproto.Window(win),
		xproto.EventMaskButtonPress,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		xproto.CursorNone,
		xproto.ButtonIndexAny,
		xproto.ModMaskAny,
	)
}

func (c *Connection) UngrabButtons(win platform.WindowID) {
	xproto.UngrabButton(c.XUtil.Conn(), xproto.ButtonIndexAny, xproto.Window(win), xproto.ModMaskAny)
}

// GrabPointer takes an exclusive pointer grab reporting the masked events on
// the given window. Anything short of success is platform.ErrGrabRefused.
func (c *Connection) GrabPointer(on platform.WindowID, mask platform.PointerMask, cursor platform.Cursor) error {
	var events uint16
	if mask&platform.PointerPress != 0 {
		events |= xproto.EventMaskButtonPress
	}
	if mask&platform.PointerRelease != 0 {
		events |= xproto.EventMaskButtonRelease
	}
	if mask&platform.PointerMotion != 0 {
		events |= xproto.EventMaskPointerMotion
	}

	reply, err := xproto.GrabPointer(
		c.XUtil.Conn(),
		false,
		xproto.Window(on),
		events,
		xproto.GrabModeAsync,
		xproto.GrabModeAsync,
		xproto.WindowNone,
		c.cursors[cursor],
		xproto.TimeCurrentTime,
	).Reply()
	if err != nil {
		return fmt.Errorf("grab pointer: %w", err)
	}
	if reply.Status != xproto.GrabStatusSuccess {
		return fmt.Errorf("%w (status %d)", platform.ErrGrabRefused, reply.Status)
	}
	return nil
}

func (c *Connection) UngrabPointer() {
	xproto.UngrabPointer(c.XUtil.Conn(), xproto.TimeCurrentTime)
}

func (c *Connection) QueryPointer(relativeTo platform.WindowID) (int, int, error) {
	reply, err := xproto.QueryPointer(c.XUtil.Conn(), xproto.Window(relativeTo)).Reply()
	if err != nil {
		return 0, 0, fmt.Errorf("query pointer: %w", err)
	}
	return int(reply.WinX), int(reply.WinY), nil
}
