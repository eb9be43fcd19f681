package config

import "github.com/spf13/pflag"

// Overrides holds command-line values that take precedence over the files.
type Overrides struct {
	fs *pflag.FlagSet

	display         string
	font            string
	logLevel        string
	terminal        []string
	borderWidth     int
	sweepNewWindows bool
}

// BindFlags registers the overridable options on fs.
func BindFlags(fs *pflag.FlagSet) *Overrides {
	o := &Overrides{fs: fs}
	fs.StringVar(&o.display, "display", "", "X display to manage (default $DISPLAY)")
	fs.StringVar(&o.font, "font", "", "core font for menus")
	fs.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warning, error")
	fs.StringSliceVar(&o.terminal, "terminal", nil, "command (and arguments) spawned by the new menu entry")
	fs.IntVar(&o.borderWidth, "border-width", 0, "border width of managed windows in pixels")
	fs.BoolVar(&o.sweepNewWindows, "sweep-new-windows", false, "sweep the geometry of windows spawned from the menu")
	return o
}

// layer holds only the flags the user actually set. A nil Overrides
// contributes nothing.
func (o *Overrides) layer() layer {
	var raw RawConfig
	sources := map[string]Source{}
	if o == nil || o.fs == nil {
		return layer{sources: sources}
	}

	set := func(flag, path string) bool {
		if !o.fs.Changed(flag) {
			return false
		}
		sources[path] = Source{Kind: SourceFlag, Name: "--" + flag}
		return true
	}

	if set("display", "display") {
		raw.Display = &o.display
	}
	if set("font", "font") {
		raw.Font = &o.font
	}
	if set("log-level", "log_level") {
		raw.LogLevel = &o.logLevel
	}
	if set("terminal", "terminal") {
		raw.Terminal = append([]string(nil), o.terminal...)
	}
	if set("border-width", "border_width") {
		raw.BorderWidth = &o.borderWidth
	}
	if set("sweep-new-windows", "sweep_new_windows") {
		raw.SweepNewWindows = &o.sweepNewWindows
	}
	return layer{raw: raw, sources: sources}
}
