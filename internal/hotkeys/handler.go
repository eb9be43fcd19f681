package hotkeys

import (
	"fmt"
	"sync"

	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// Handler grabs the configured chords on the root window and keeps the
// parsed set for matching key presses.
type Handler struct {
	xu   *xgbutil.XUtil
	root xproto.Window
	set  *Set
}

var ignoreModsOnce sync.Once

// NewHandler creates a handler grabbing on root. keybind must already be
// initialized on xu.
func NewHandler(xu *xgbutil.XUtil, root xproto.Window) *Handler {
	ignoreModsOnce.Do(func() {
		configureIgnoreMods(xu)
	})

	return &Handler{
		xu:   xu,
		root: root,
		set:  NewSet(ignoredMask()),
	}
}

// Set returns the chords registered so far.
func (h *Handler) Set() *Set {
	return h.set
}

// Register parses the key sequence (for example "Mod4-f"), grabs it on the
// root window and binds it to the action.
func (h *Handler) Register(action Action, keySequence string) error {
	mods, keycodes, err := keybind.ParseString(h.xu, keySequence)
	if err != nil {
		return fmt.Errorf("parse %s chord %q: %w", action, keySequence, err)
	}
	if len(keycodes) == 0 {
		return fmt.Errorf("%s chord %q maps to no keycode", action, keySequence)
	}

	codes := make([]byte, 0, len(keycodes))
	for _, kc := range keycodes {
		if err := keybind.GrabChecked(h.xu, h.root, mods, kc); err != nil {
			return fmt.Errorf("grab %s chord %q: %w", action, keySequence, err)
		}
		codes = append(codes, byte(kc))
	}

	h.set.Bind(action, Chord{Mods: mods, Keycodes: codes})
	return nil
}

// Release drops every grab installed by Register.
func (h *Handler) Release() {
	for _, b := range h.set.bindings {
		for _, kc := range b.chord.Keycodes {
			keybind.Ungrab(h.xu, h.root, b.chord.Mods, xproto.Keycode(kc))
		}
	}
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	// Always ignore CapsLock.
	caps := uint16(xproto.ModMaskLock)

	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	unique := make(map[uint16]struct{})
	add := func(mask uint16) {
		unique[mask] = struct{}{}
	}

	add(0)
	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	for subset := 1; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		add(mask)
	}

	ignore := make([]uint16, 0, len(unique))
	for mask := range unique {
		ignore = append(ignore, mask)
	}

	xevent.IgnoreMods = ignore
}

// ignoredMask folds the lock modifiers into one mask for matching.
func ignoredMask() uint16 {
	var mask uint16
	for _, m := range xevent.IgnoreMods {
		mask |= m
	}
	return mask
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
