package x11

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/xgb/randr"
)

var errNoRandr = errors.New("randr extension not available")

// Monitor is one active RandR output.
type Monitor struct {
	Name   string
	X      int
	Y      int
	Width  int
	Height int
}

// ScreenSize reports the area managed windows are laid out in: the monitor
// at the origin when RandR knows one, otherwise the whole root window.
func (c *Connection) ScreenSize() (int, int) {
	monitors, err := c.Monitors()
	if err != nil && !errors.Is(err, errNoRandr) {
		c.logger.Debug("x11: monitor query failed", "error", err)
	}
	for _, m := range monitors {
		if m.X == 0 && m.Y == 0 {
			return m.Width, m.Height
		}
	}
	screen := c.XUtil.Screen()
	return int(screen.WidthInPixels), int(screen.HeightInPixels)
}

// Monitors retrieves all active monitors using XRandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	if !c.hasRandr {
		return nil, errNoRandr
	}
	conn := c.XUtil.Conn()

	resources, err := randr.GetScreenResources(conn, c.root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(conn, crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Skip disabled CRTCs
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if output, err := randr.GetOutputInfo(conn, info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(output.Name)
		}

		monitors = append(monitors, Monitor{
			Name:   name,
			X:      int(info.X),
			Y:      int(info.Y),
			Width:  int(info.Width),
			Height: int(info.Height),
		})
	}
	return monitors, nil
}
