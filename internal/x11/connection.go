package x11

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/res"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xcursor"
	"github.com/BurntSushi/xgbutil/xprop"
	"github.com/hashicorp/go-multierror"

	"github.com/1broseidon/stackwm/internal/platform"
)

// ErrAnotherWM is returned when substructure redirection on the root window
// is already held by another client.
var ErrAnotherWM = errors.New("another window manager is already running")

const wmName = "stackwm"

var _ platform.Backend = (*Connection)(nil)

// rootEventMask is what the manager selects on the root window.
const rootEventMask = xproto.EventMaskSubstructureRedirect |
	xproto.EventMaskSubstructureNotify |
	xproto.EventMaskButtonPress |
	xproto.EventMaskButtonRelease |
	xproto.EventMaskPropertyChange

// Options configures the connection and the surfaces it owns.
type Options struct {
	// Display overrides $DISPLAY when non-empty.
	Display string
	// Fonts are tried in order for menu text.
	Fonts []string

	Background    uint32
	HasBackground bool

	OutlineBorder     uint32
	OutlineBackground uint32
	MenuBorder        uint32

	Logger *slog.Logger
}

type atoms struct {
	netWmName   xproto.Atom
	wmProtocols xproto.Atom
	wmDeleteWin xproto.Atom
	wake        xproto.Atom
}

// Connection is the X11 display backend. It owns the manager's connection,
// the cursors it grabs with and the outline and menu surfaces.
type Connection struct {
	XUtil *xgbutil.XUtil

	root     xproto.Window
	opts     Options
	logger   *slog.Logger
	atoms    atoms
	cursors  map[platform.Cursor]xproto.Cursor
	hasRes   bool
	hasRandr bool

	check   xproto.Window
	outline *outlineSurface
	menu    *menuSurface

	// stopped is only touched by the event loop goroutine.
	stopped bool

	closeOnce sync.Once
	closeErr  error
}

// NewConnection connects to the display, claims the window manager role on
// the root window and creates the cursors and surfaces. Failing to claim the
// root window returns ErrAnotherWM.
func NewConnection(opts Options) (*Connection, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	xu, err := xgbutil.NewConnDisplay(opts.Display)
	if err != nil {
		return nil, fmt.Errorf("connect to display: %w", err)
	}

	c := &Connection{
		XUtil:   xu,
		root:    xu.RootWin(),
		opts:    opts,
		logger:  logger,
		cursors: make(map[platform.Cursor]xproto.Cursor),
	}

	if err := c.claimRoot(); err != nil {
		xu.Conn().Close()
		return nil, err
	}

	// Initialize keybind module (required for global hotkeys)
	keybind.Initialize(xu)

	if err := c.init(); err != nil {
		c.Disconnect()
		return nil, err
	}
	return c, nil
}

func (c *Connection) claimRoot() error {
	err := xproto.ChangeWindowAttributesChecked(
		c.XUtil.Conn(),
		c.root,
		xproto.CwEventMask,
		[]uint32{rootEventMask},
	).Check()
	if err != nil {
		var access xproto.AccessError
		if errors.As(err, &access) {
			return ErrAnotherWM
		}
		return fmt.Errorf("select root events: %w", err)
	}
	return nil
}

func (c *Connection) init() error {
	if err := c.internAtoms(); err != nil {
		return err
	}
	if err := c.createCursors(); err != nil {
		return err
	}

	if err := res.Init(c.XUtil.Conn()); err != nil {
		c.logger.Debug("x11: X-Resource extension unavailable, using _NET_WM_PID", "error", err)
	} else {
		c.hasRes = true
	}
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		c.logger.Debug("x11: RandR unavailable, using root size", "error", err)
	} else {
		c.hasRandr = true
	}

	mask := uint32(xproto.CwCursor)
	values := []uint32{uint32(c.cursors[platform.CursorNormal])}
	if c.opts.HasBackground {
		// Value list order follows the bit positions of the mask.
		mask |= xproto.CwBackPixel
		values = []uint32{c.opts.Background, values[0]}
	}
	xproto.ChangeWindowAttributes(c.XUtil.Conn(), c.root, mask, values)
	if c.opts.HasBackground {
		xproto.ClearArea(c.XUtil.Conn(), false, c.root, 0, 0, 0, 0)
	}

	outline, err := c.newOutlineSurface()
	if err != nil {
		return fmt.Errorf("create outline window: %w", err)
	}
	c.outline = outline

	menu, err := c.newMenuSurface()
	if err != nil {
		return fmt.Errorf("create menu window: %w", err)
	}
	c.menu = menu

	check, err := c.createOverrideRedirectWindow(0, 0)
	if err != nil {
		return fmt.Errorf("create check window: %w", err)
	}
	c.check = check

	if err := c.advertise(); err != nil {
		c.logger.Warn("x11: EWMH setup failed", "error", err)
	}
	return nil
}

func (c *Connection) internAtoms() error {
	names := []struct {
		name string
		dst  *xproto.Atom
	}{
		{"_NET_WM_NAME", &c.atoms.netWmName},
		{"WM_PROTOCOLS", &c.atoms.wmProtocols},
		{"WM_DELETE_WINDOW", &c.atoms.wmDeleteWin},
		{"_STACKWM_WAKE", &c.atoms.wake},
	}
	for _, n := range names {
		atom, err := xprop.Atm(c.XUtil, n.name)
		if err != nil {
			return fmt.Errorf("intern %s: %w", n.name, err)
		}
		*n.dst = atom
	}
	return nil
}

func (c *Connection) createCursors() error {
	shapes := map[platform.Cursor]uint16{
		platform.CursorNormal: xcursor.LeftPtr,
		platform.CursorSelect: xcursor.Crosshair,
		platform.CursorMove:   xcursor.Fleur,
		platform.CursorResize: xcursor.Sizing,
	}
	for cursor, shape := range shapes {
		id, err := xcursor.CreateCursor(c.XUtil, shape)
		if err != nil {
			return fmt.Errorf("create cursor %d: %w", shape, err)
		}
		c.cursors[cursor] = id
	}
	return nil
}

// advertise publishes the EWMH supporting-WM check window and our name.
func (c *Connection) advertise() error {
	check := c.check
	var result *multierror.Error
	result = multierror.Append(result,
		ewmh.SupportingWmCheckSet(c.XUtil, c.root, check),
		ewmh.SupportingWmCheckSet(c.XUtil, check, check),
		ewmh.WmNameSet(c.XUtil, check, wmName),
		ewmh.SupportedSet(c.XUtil, []string{
			"_NET_SUPPORTED",
			"_NET_SUPPORTING_WM_CHECK",
			"_NET_WM_NAME",
			"_NET_WM_PID",
			"_NET_ACTIVE_WINDOW",
		}),
	)
	return result.ErrorOrNil()
}

// RootWindow returns the root window as an xproto handle.
func (c *Connection) RootWindow() xproto.Window {
	return c.root
}

// Root implements platform.Backend.
func (c *Connection) Root() platform.WindowID {
	return platform.WindowID(c.root)
}

// Wake makes a blocked NextEvent return platform.ErrClosed by sending a
// client message to our check window. Safe to call from another goroutine.
func (c *Connection) Wake() error {
	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: c.check,
		Type:   c.atoms.wake,
		Data:   xproto.ClientMessageDataUnionData32New([]uint32{0, 0, 0, 0, 0}),
	}
	return xproto.SendEventChecked(
		c.XUtil.Conn(),
		false,
		c.check,
		xproto.EventMaskNoEvent,
		string(ev.Bytes()),
	).Check()
}

// Disconnect releases the server-side resources the manager created and
// closes the connection. Safe to call more than once, but only from the
// goroutine that issues requests.
func (c *Connection) Disconnect() error {
	c.closeOnce.Do(func() {
		var result *multierror.Error
		conn := c.XUtil.Conn()

		if c.menu != nil {
			result = multierror.Append(result, c.menu.destroy(conn))
		}
		if c.outline != nil {
			result = multierror.Append(result, xproto.DestroyWindowChecked(conn, c.outline.window).Check())
		}
		if c.check != 0 {
			result = multierror.Append(result, xproto.DestroyWindowChecked(conn, c.check).Check())
		}
		for _, cursor := range c.cursors {
			result = multierror.Append(result, xproto.FreeCursorChecked(conn, cursor).Check())
		}

		conn.Close()
		c.closeErr = result.ErrorOrNil()
	})
	return c.closeErr
}
