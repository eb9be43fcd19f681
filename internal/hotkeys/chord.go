// Package hotkeys parses, grabs and matches the window manager's global key
// chords.
package hotkeys

// Action is what a chord triggers on the current container.
type Action int

const (
	ActionFullscreen Action = iota
	ActionReshape
	ActionRedraw
)

func (a Action) String() string {
	switch a {
	case ActionFullscreen:
		return "fullscreen"
	case ActionReshape:
		return "reshape"
	case ActionRedraw:
		return "redraw"
	default:
		return "unknown"
	}
}

// modifierBits covers Shift, Lock, Control and Mod1 through Mod5. Pointer
// button bits in a key event's state are never part of a chord.
const modifierBits uint16 = 0x00ff

// Chord is a modifier mask plus the keycodes its keysym resolves to.
type Chord struct {
	Mods     uint16
	Keycodes []byte
}

// Matches reports whether a key press with the given state triggers the
// chord. Bits in ignore (lock modifiers) are not significant.
func (c Chord) Matches(keycode byte, state uint16, ignore uint16) bool {
	if state&modifierBits&^ignore != c.Mods&^ignore {
		return false
	}
	for _, kc := range c.Keycodes {
		if kc == keycode {
			return true
		}
	}
	return false
}

type binding struct {
	action Action
	chord  Chord
}

// Set is an ordered collection of chord bindings.
type Set struct {
	ignore   uint16
	bindings []binding
}

// NewSet returns an empty set treating the ignore bits as insignificant.
func NewSet(ignore uint16) *Set {
	return &Set{ignore: ignore}
}

// Bind adds or replaces the chord for an action.
func (s *Set) Bind(action Action, chord Chord) {
	for i := range s.bindings {
		if s.bindings[i].action == action {
			s.bindings[i].chord = chord
			return
		}
	}
	s.bindings = append(s.bindings, binding{action: action, chord: chord})
}

// Lookup returns the first action whose chord matches the key press.
func (s *Set) Lookup(keycode byte, state uint16) (Action, bool) {
	if s == nil {
		return 0, false
	}
	for _, b := range s.bindings {
		if b.chord.Matches(keycode, state, s.ignore) {
			return b.action, true
		}
	}
	return 0, false
}
