// Package wm is the window manager core: the focus and visibility state
// machine, the grouping resolver, the modal interaction loops, the menus and
// the event dispatcher that ties them together.
//
// Everything runs on the goroutine that calls Run. Modal loops block in
// Backend.NextEvent and hand events they do not handle back to Dispatch, so
// Dispatch may be re-entered several frames deep; every loop re-validates its
// target after each nested dispatch.
package wm

import (
	"context"
	"errors"
	"log/slog"

	"github.com/1broseidon/stackwm/internal/hotkeys"
	"github.com/1broseidon/stackwm/internal/launcher"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/proctree"
	"github.com/1broseidon/stackwm/internal/registry"
)

// Keys resolves key presses to chord actions.
type Keys interface {
	Lookup(keycode byte, state uint16) (hotkeys.Action, bool)
}

// Config holds the load-time settings the core needs.
type Config struct {
	BorderWidth     int
	BorderColor     uint32
	MinWindowSize   int
	NewWindowWidth  int
	NewWindowHeight int
	SweepNewWindows bool
	Terminal        []string
	MenuLabelHint   string
	MenuNormal      platform.MenuStyle
	MenuHighlight   platform.MenuStyle

	Logger *slog.Logger

	// Parent and Alive default to the live process table.
	Parent proctree.ParentFunc
	Alive  proctree.AliveFunc

	Spawner launcher.Spawner
	Keys    Keys
}

// WM is the single owned window manager state.
type WM struct {
	reg     *registry.Registry
	display platform.Backend
	cfg     Config
	logger  *slog.Logger
	parent  proctree.ParentFunc
	alive   proctree.AliveFunc
	spawner launcher.Spawner
	keys    Keys

	// focused is the window that last received input focus from Restore.
	focused platform.WindowID
	modes   []Mode
}

// New creates a window manager over the display.
func New(display platform.Backend, cfg Config) *WM {
	if cfg.MinWindowSize <= 0 {
		cfg.MinWindowSize = 10
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	parent := cfg.Parent
	if parent == nil {
		parent = proctree.Parent
	}
	alive := cfg.Alive
	if alive == nil {
		alive = proctree.Alive
	}
	spawner := cfg.Spawner
	if spawner == nil {
		spawner = launcher.New(logger)
	}

	return &WM{
		reg:     registry.New(),
		display: display,
		cfg:     cfg,
		logger:  logger,
		parent:  parent,
		alive:   alive,
		spawner: spawner,
		keys:    cfg.Keys,
	}
}

// Registry exposes the container registry for inspection.
func (w *WM) Registry() *registry.Registry {
	return w.reg
}

// Run adopts existing windows and dispatches events until the display
// connection closes or ctx is cancelled. Cancellation only takes effect
// once NextEvent returns, so callers wake the display to unblock it.
func (w *WM) Run(ctx context.Context) error {
	w.Scan()
	w.logger.Info("window manager started", "containers", w.reg.Count())

	for {
		if ctx.Err() != nil {
			return nil
		}
		ev, err := w.display.NextEvent()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, platform.ErrClosed) {
				w.logger.Info("window manager stopped")
				return nil
			}
			return err
		}
		w.Dispatch(ev)
	}
}

// Scan manages every viewable top-level window that existed before we
// started.
func (w *WM) Scan() {
	wins, err := w.display.TopLevelWindows()
	if err != nil {
		w.logger.Warn("scan: failed to list windows", "error", err)
		return
	}
	for _, win := range wins {
		if win == w.display.MenuWindow() {
			continue
		}
		attrs, err := w.display.Attributes(win)
		if err != nil || attrs.OverrideRedirect || !attrs.Viewable {
			continue
		}
		if w.reg.Managed(win) {
			continue
		}
		// Viewable already; Restore must not map it again.
		w.manage(win, true)
	}
}
