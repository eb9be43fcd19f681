package x11

import (
	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/stackwm/internal/platform"
)

// NextEvent blocks until an event the manager understands arrives. Protocol
// errors are expected (requests racing window destruction) and only logged.
// Once woken by Wake it keeps returning platform.ErrClosed.
func (c *Connection) NextEvent() (platform.Event, error) {
	if c.stopped {
		return nil, platform.ErrClosed
	}
	conn := c.XUtil.Conn()
	for {
		ev, xerr := conn.WaitForEvent()
		if ev == nil && xerr == nil {
			return nil, platform.ErrClosed
		}
		if xerr != nil {
			c.logger.Debug("x11: protocol error", "error", xerr)
			continue
		}
		if c.isWake(ev) {
			c.stopped = true
			return nil, platform.ErrClosed
		}
		if out, ok := c.translate(ev); ok {
			return out, nil
		}
	}
}

func (c *Connection) isWake(ev xgb.Event) bool {
	msg, ok := ev.(xproto.ClientMessageEvent)
	return ok && c.check != 0 && msg.Window == c.check && msg.Type == c.atoms.wake
}

func (c *Connection) translate(ev xgb.Event) (platform.Event, bool) {
	switch e := ev.(type) {
	case xproto.MapRequestEvent:
		return platform.MapRequest{Window: platform.WindowID(e.Window)}, true
	case xproto.DestroyNotifyEvent:
		return platform.DestroyNotify{Window: platform.WindowID(e.Window)}, true
	case xproto.PropertyNotifyEvent:
		return platform.PropertyNotify{
			Window: platform.WindowID(e.Window),
			Title:  e.Atom == xproto.AtomWmName || e.Atom == c.atoms.netWmName,
		}, true
	case xproto.ConfigureRequestEvent:
		return configureRequest(e), true
	case xproto.ButtonPressEvent:
		return platform.ButtonPress{
			Pointer: pointer(e.Event, e.Child, e.RootX, e.RootY, e.EventX, e.EventY),
			Button:  int(e.Detail),
		}, true
	case xproto.ButtonReleaseEvent:
		return platform.ButtonRelease{
			Pointer: pointer(e.Event, e.Child, e.RootX, e.RootY, e.EventX, e.EventY),
			Button:  int(e.Detail),
		}, true
	case xproto.MotionNotifyEvent:
		return platform.MotionNotify{
			Pointer: pointer(e.Event, e.Child, e.RootX, e.RootY, e.EventX, e.EventY),
		}, true
	case xproto.KeyPressEvent:
		return platform.KeyPress{Keycode: byte(e.Detail), State: e.State}, true
	}
	return nil, false
}

func pointer(win, child xproto.Window, rootX, rootY, x, y int16) platform.Pointer {
	return platform.Pointer{
		Window: platform.WindowID(win),
		Child:  platform.WindowID(child),
		RootX:  int(rootX),
		RootY:  int(rootY),
		X:      int(x),
		Y:      int(y),
	}
}

func configureRequest(e xproto.ConfigureRequestEvent) platform.ConfigureRequest {
	req := platform.ConfigureRequest{
		Window: platform.WindowID(e.Window),
		X:      int(e.X),
		Y:      int(e.Y),
		Width:  int(e.Width),
		Height: int(e.Height),
	}
	bits := []struct {
		x11  uint16
		mask platform.ConfigMask
	}{
		{xproto.ConfigWindowX, platform.ConfigX},
		{xproto.ConfigWindowY, platform.ConfigY},
		{xproto.ConfigWindowWidth, platform.ConfigWidth},
		{xproto.ConfigWindowHeight, platform.ConfigHeight},
	}
	for _, b := range bits {
		if e.ValueMask&b.x11 != 0 {
			req.Mask |= b.mask
		}
	}
	return req
}
