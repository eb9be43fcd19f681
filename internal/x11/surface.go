package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/hashicorp/go-multierror"

	"github.com/1broseidon/stackwm/internal/platform"
)

const (
	surfaceBorder = 1
	menuPaddingX  = 6
	menuPaddingY  = 2
)

var defaultFonts = []string{"fixed", "9x15", "8x13", "6x13"}

// outlineSurface is the bordered proxy window shown while moving or resizing.
type outlineSurface struct {
	window xproto.Window
	mapped bool
}

// menuSurface is the menu window plus the font and GC its rows are drawn with.
type menuSurface struct {
	window  xproto.Window
	font    xproto.Font
	gc      xproto.Gcontext
	ascent  int
	descent int
	mapped  bool
}

// createOverrideRedirectWindow creates an unmapped window the manager never
// receives a MapRequest for.
func (c *Connection) createOverrideRedirectWindow(background, border uint32) (xproto.Window, error) {
	conn := c.XUtil.Conn()
	screen := c.XUtil.Screen()

	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return 0, err
	}

	err = xproto.CreateWindowChecked(
		conn,
		screen.RootDepth,
		wid,
		c.root,
		0, 0, // x, y (will be updated later)
		1, 1, // width, height (will be updated later)
		surfaceBorder,
		xproto.WindowClassInputOutput,
		screen.RootVisual,
		xproto.CwBackPixel|xproto.CwBorderPixel|xproto.CwOverrideRedirect,
		// Value list order follows the bit positions of the mask (low to high).
		[]uint32{background, border, 1},
	).Check()
	if err != nil {
		return 0, err
	}
	return wid, nil
}

func (c *Connection) newOutlineSurface() (*outlineSurface, error) {
	wid, err := c.createOverrideRedirectWindow(c.opts.OutlineBackground, c.opts.OutlineBorder)
	if err != nil {
		return nil, err
	}
	return &outlineSurface{window: wid}, nil
}

func (c *Connection) newMenuSurface() (*menuSurface, error) {
	conn := c.XUtil.Conn()

	wid, err := c.createOverrideRedirectWindow(0, c.opts.MenuBorder)
	if err != nil {
		return nil, err
	}
	m := &menuSurface{window: wid}

	font, err := xproto.NewFontId(conn)
	if err != nil {
		xproto.DestroyWindow(conn, wid)
		return nil, err
	}

	fontNames := append(append([]string{}, c.opts.Fonts...), defaultFonts...)
	opened := ""
	for _, fontName := range fontNames {
		if fontName == "" {
			continue
		}
		if xproto.OpenFontChecked(conn, font, uint16(len(fontName)), fontName).Check() == nil {
			opened = fontName
			break
		}
	}
	if opened == "" {
		xproto.DestroyWindow(conn, wid)
		return nil, fmt.Errorf("no usable font among %v", fontNames)
	}
	m.font = font
	c.logger.Debug("x11: menu font opened", "font", opened)

	gc, err := xproto.NewGcontextId(conn)
	if err != nil {
		m.destroy(conn)
		return nil, err
	}
	err = xproto.CreateGCChecked(
		conn,
		gc,
		xproto.Drawable(wid),
		xproto.GcForeground|xproto.GcBackground|xproto.GcFont|xproto.GcGraphicsExposures,
		[]uint32{
			c.XUtil.Screen().BlackPixel, // foreground
			c.XUtil.Screen().WhitePixel, // background
			uint32(font),                // font
			0,                           // graphics_exposures=false
		},
	).Check()
	if err != nil {
		m.destroy(conn)
		return nil, err
	}
	m.gc = gc

	extents, err := xproto.QueryTextExtents(conn, xproto.Fontable(font), toChar2b("Xg"), 2).Reply()
	if err != nil {
		m.destroy(conn)
		return nil, fmt.Errorf("query font extents: %w", err)
	}
	m.ascent = int(extents.FontAscent)
	m.descent = int(extents.FontDescent)
	return m, nil
}

func (m *menuSurface) destroy(conn *xgb.Conn) error {
	var result *multierror.Error
	if m.gc != 0 {
		result = multierror.Append(result, xproto.FreeGCChecked(conn, m.gc).Check())
	}
	if m.font != 0 {
		result = multierror.Append(result, xproto.CloseFontChecked(conn, m.font).Check())
	}
	if m.window != 0 {
		result = multierror.Append(result, xproto.DestroyWindowChecked(conn, m.window).Check())
	}
	m.window, m.gc, m.font = 0, 0, 0
	return result.ErrorOrNil()
}

func toChar2b(s string) []xproto.Char2b {
	out := make([]xproto.Char2b, len(s))
	for i := 0; i < len(s); i++ {
		out[i] = xproto.Char2b{Byte1: 0, Byte2: s[i]}
	}
	return out
}

// place moves, resizes and raises a surface.
func (c *Connection) place(wid xproto.Window, bounds platform.Rect) {
	width, height := bounds.Width, bounds.Height
	if width < 1 {
		width = 1
	}
	if height < 1 {
		height = 1
	}
	xproto.ConfigureWindow(
		c.XUtil.Conn(),
		wid,
		xproto.ConfigWindowX|xproto.ConfigWindowY|xproto.ConfigWindowWidth|xproto.ConfigWindowHeight|xproto.ConfigWindowStackMode,
		[]uint32{
			uint32(bounds.X),
			uint32(bounds.Y),
			uint32(width),
			uint32(height),
			xproto.StackModeAbove, // Keep on top
		},
	)
}

// ShowOutline places the outline so its border frames bounds.
func (c *Connection) ShowOutline(bounds platform.Rect) {
	o := c.outline
	c.place(o.window, platform.Rect{
		X:      bounds.X,
		Y:      bounds.Y,
		Width:  bounds.Width - 2*surfaceBorder,
		Height: bounds.Height - 2*surfaceBorder,
	})
	if !o.mapped {
		xproto.MapWindow(c.XUtil.Conn(), o.window)
		o.mapped = true
	}
}

func (c *Connection) HideOutline() {
	o := c.outline
	if !o.mapped {
		return
	}
	xproto.UnmapWindow(c.XUtil.Conn(), o.window)
	o.mapped = false
}

func (c *Connection) MenuWindow() platform.WindowID {
	return platform.WindowID(c.menu.window)
}

// MenuMetrics sizes the menu from the rendered width of labelHint.
func (c *Connection) MenuMetrics(labelHint string) (int, int) {
	rowHeight := c.menu.ascent + c.menu.descent + 2*menuPaddingY
	if len(labelHint) > 255 {
		labelHint = labelHint[:255]
	}
	extents, err := xproto.QueryTextExtents(
		c.XUtil.Conn(),
		xproto.Fontable(c.menu.font),
		toChar2b(labelHint),
		uint16(len(labelHint)),
	).Reply()
	if err != nil {
		c.logger.Debug("x11: query text extents failed", "error", err)
		return 8*len(labelHint) + 2*menuPaddingX, rowHeight
	}
	return int(extents.OverallWidth) + 2*menuPaddingX, rowHeight
}

func (c *Connection) ShowMenu(bounds platform.Rect) {
	m := c.menu
	c.place(m.window, bounds)
	if !m.mapped {
		xproto.MapWindow(c.XUtil.Conn(), m.window)
		m.mapped = true
	}
}

// DrawMenuRow paints the row background and its label.
func (c *Connection) DrawMenuRow(row int, width, rowHeight int, label string, style platform.MenuStyle) {
	conn := c.XUtil.Conn()
	m := c.menu
	top := row * rowHeight

	xproto.ChangeGC(conn, m.gc, xproto.GcForeground, []uint32{style.Background})
	xproto.PolyFillRectangle(conn, xproto.Drawable(m.window), m.gc, []xproto.Rectangle{{
		X:      0,
		Y:      int16(top),
		Width:  uint16(width),
		Height: uint16(rowHeight),
	}})

	if label == "" {
		return
	}
	if len(label) > 255 {
		label = label[:255]
	}
	xproto.ChangeGC(
		conn,
		m.gc,
		xproto.GcForeground|xproto.GcBackground,
		[]uint32{style.Foreground, style.Background},
	)
	xproto.ImageText8(
		conn,
		byte(len(label)),
		xproto.Drawable(m.window),
		m.gc,
		int16(menuPaddingX),
		int16(top+menuPaddingY+m.ascent),
		label,
	)
}

func (c *Connection) HideMenu() {
	m := c.menu
	if !m.mapped {
		return
	}
	xproto.UnmapWindow(c.XUtil.Conn(), m.window)
	m.mapped = false
}
