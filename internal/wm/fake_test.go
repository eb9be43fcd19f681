package wm

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"testing"

	"github.com/1broseidon/stackwm/internal/hotkeys"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/proctree"
	"github.com/1broseidon/stackwm/internal/registry"
)

const (
	fakeRoot      platform.WindowID = 1
	fakeMenu      platform.WindowID = 2
	fakeWidth                       = 800
	fakeHeight                      = 600
	fakeMenuWidth                   = 100
	fakeRowHeight                   = 20
)

var (
	normalStyle    = platform.MenuStyle{Foreground: 0x000000, Background: 0xeaffea}
	highlightStyle = platform.MenuStyle{Foreground: 0xeaffea, Background: 0x448844}
)

type call struct {
	op     string
	win    platform.WindowID
	bounds platform.Rect
}

type fakeWindow struct {
	attrs    platform.Attributes
	title    string
	hasTitle bool
	pid      int
	bounds   platform.Rect
	mapped   bool
	grabbed  bool
	border   int
}

// fakeDisplay is a scripted platform.Backend. NextEvent pops the script and
// reports ErrClosed once it is exhausted. Commands are recorded, and any
// command on a window whose DestroyNotify was delivered fails the test.
type fakeDisplay struct {
	t *testing.T

	windows   map[platform.WindowID]*fakeWindow
	destroyed map[platform.WindowID]bool
	events    []platform.Event
	calls     []call

	focus platform.WindowID

	refuseGrab  bool
	grabs       int
	ungrabs     int
	grabCursors []platform.Cursor

	pointerX, pointerY int

	outlineVisible bool
	outline        platform.Rect
	outlineShows   int

	menuVisible bool
	menuBounds  platform.Rect
	menuRows    map[int]string
	highlight   int

	closed []platform.WindowID
}

func newFakeDisplay(t *testing.T) *fakeDisplay {
	return &fakeDisplay{
		t:         t,
		windows:   make(map[platform.WindowID]*fakeWindow),
		destroyed: make(map[platform.WindowID]bool),
		menuRows:  make(map[int]string),
		highlight: -1,
	}
}

func (f *fakeDisplay) addWindow(id platform.WindowID, pid int, title string) *fakeWindow {
	fw := &fakeWindow{
		title:    title,
		hasTitle: title != "",
		pid:      pid,
		bounds:   platform.Rect{X: 10, Y: 10, Width: 300, Height: 200},
	}
	f.windows[id] = fw
	return fw
}

func (f *fakeDisplay) script(events ...platform.Event) {
	f.events = append(f.events, events...)
}

func (f *fakeDisplay) record(op string, win platform.WindowID, bounds platform.Rect) *fakeWindow {
	f.calls = append(f.calls, call{op: op, win: win, bounds: bounds})
	if f.destroyed[win] {
		f.t.Errorf("%s issued on destroyed window %d", op, win)
		return nil
	}
	return f.windows[win]
}

func (f *fakeDisplay) count(op string, win platform.WindowID) int {
	n := 0
	for _, c := range f.calls {
		if c.op == op && c.win == win {
			n++
		}
	}
	return n
}

func (f *fakeDisplay) geometryCalls() []call {
	var out []call
	for _, c := range f.calls {
		if c.op == "move" || c.op == "moveresize" {
			out = append(out, c)
		}
	}
	return out
}

func (f *fakeDisplay) NextEvent() (platform.Event, error) {
	if len(f.events) == 0 {
		return nil, platform.ErrClosed
	}
	ev := f.events[0]
	f.events = f.events[1:]
	if d, ok := ev.(platform.DestroyNotify); ok {
		delete(f.windows, d.Window)
		f.destroyed[d.Window] = true
	}
	return ev, nil
}

func (f *fakeDisplay) Root() platform.WindowID { return fakeRoot }

func (f *fakeDisplay) ScreenSize() (int, int) { return fakeWidth, fakeHeight }

func (f *fakeDisplay) TopLevelWindows() ([]platform.WindowID, error) {
	ids := make([]platform.WindowID, 0, len(f.windows))
	for id := range f.windows {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (f *fakeDisplay) Attributes(win platform.WindowID) (platform.Attributes, error) {
	fw, ok := f.windows[win]
	if !ok {
		return platform.Attributes{}, fmt.Errorf("bad window %d", win)
	}
	return fw.attrs, nil
}

func (f *fakeDisplay) Title(win platform.WindowID) (string, bool) {
	fw, ok := f.windows[win]
	if !ok {
		return "", false
	}
	return fw.title, fw.hasTitle
}

func (f *fakeDisplay) PID(win platform.WindowID) int {
	if fw, ok := f.windows[win]; ok {
		return fw.pid
	}
	return 0
}

func (f *fakeDisplay) Geometry(win platform.WindowID) (platform.Rect, error) {
	fw, ok := f.windows[win]
	if !ok {
		return platform.Rect{}, fmt.Errorf("bad window %d", win)
	}
	return fw.bounds, nil
}

func (f *fakeDisplay) Manage(win platform.WindowID, borderWidth int, borderColor uint32) {
	if fw := f.record("manage", win, platform.Rect{}); fw != nil {
		fw.border = borderWidth
	}
}

func (f *fakeDisplay) Map(win platform.WindowID) {
	if fw := f.record("map", win, platform.Rect{}); fw != nil {
		fw.mapped = true
	}
}

func (f *fakeDisplay) Unmap(win platform.WindowID) {
	if fw := f.record("unmap", win, platform.Rect{}); fw != nil {
		fw.mapped = false
	}
}

func (f *fakeDisplay) Raise(win platform.WindowID) {
	f.record("raise", win, platform.Rect{})
}

func (f *fakeDisplay) Focus(win platform.WindowID) {
	f.record("focus", win, platform.Rect{})
	f.focus = win
}

func (f *fakeDisplay) Move(win platform.WindowID, x, y int) {
	if fw := f.record("move", win, platform.Rect{X: x, Y: y}); fw != nil {
		fw.bounds.X, fw.bounds.Y = x, y
	}
}

func (f *fakeDisplay) MoveResize(win platform.WindowID, bounds platform.Rect) {
	if fw := f.record("moveresize", win, bounds); fw != nil {
		fw.bounds = bounds
	}
}

func (f *fakeDisplay) SetBorderWidth(win platform.WindowID, width int) {
	if fw := f.record("border", win, platform.Rect{Width: width}); fw != nil {
		fw.border = width
	}
}

func (f *fakeDisplay) Configure(req platform.ConfigureRequest) {
	if fw := f.record("configure", req.Window, platform.Rect{}); fw != nil {
		fw.bounds = req.Apply(fw.bounds)
	}
}

func (f *fakeDisplay) Close(win platform.WindowID) {
	f.record("close", win, platform.Rect{})
	f.closed = append(f.closed, win)
}

func (f *fakeDisplay) GrabButtons(win platform.WindowID) {
	if fw := f.record("grabbuttons", win, platform.Rect{}); fw != nil {
		fw.grabbed = true
	}
}

func (f *fakeDisplay) UngrabButtons(win platform.WindowID) {
	if fw := f.record("ungrabbuttons", win, platform.Rect{}); fw != nil {
		fw.grabbed = false
	}
}

func (f *fakeDisplay) GrabPointer(on platform.WindowID, mask platform.PointerMask, cursor platform.Cursor) error {
	if f.refuseGrab {
		return platform.ErrGrabRefused
	}
	f.grabs++
	f.grabCursors = append(f.grabCursors, cursor)
	return nil
}

func (f *fakeDisplay) UngrabPointer() {
	f.ungrabs++
}

func (f *fakeDisplay) QueryPointer(relativeTo platform.WindowID) (int, int, error) {
	return f.pointerX, f.pointerY, nil
}

func (f *fakeDisplay) ShowOutline(bounds platform.Rect) {
	f.outlineVisible = true
	f.outline = bounds
	f.outlineShows++
}

func (f *fakeDisplay) HideOutline() {
	f.outlineVisible = false
}

func (f *fakeDisplay) MenuWindow() platform.WindowID { return fakeMenu }

func (f *fakeDisplay) MenuMetrics(labelHint string) (int, int) {
	return fakeMenuWidth, fakeRowHeight
}

func (f *fakeDisplay) ShowMenu(bounds platform.Rect) {
	f.menuVisible = true
	f.menuBounds = bounds
	f.menuRows = make(map[int]string)
}

func (f *fakeDisplay) DrawMenuRow(row int, width, rowHeight int, label string, style platform.MenuStyle) {
	f.menuRows[row] = label
	if style == highlightStyle {
		f.highlight = row
	} else if f.highlight == row {
		f.highlight = -1
	}
}

func (f *fakeDisplay) HideMenu() {
	f.menuVisible = false
}

var errSpawn = errors.New("spawn failed")

type fakeSpawner struct {
	pid   int
	err   error
	calls [][]string
}

func (s *fakeSpawner) Spawn(argv []string) (int, error) {
	s.calls = append(s.calls, argv)
	return s.pid, s.err
}

const (
	fullscreenKey byte   = 41
	reshapeKey    byte   = 27
	redrawKey     byte   = 38
	mod4          uint16 = 1 << 6
)

func testKeys() *hotkeys.Set {
	set := hotkeys.NewSet(1 << 1)
	set.Bind(hotkeys.ActionFullscreen, hotkeys.Chord{Mods: mod4, Keycodes: []byte{fullscreenKey}})
	set.Bind(hotkeys.ActionReshape, hotkeys.Chord{Mods: mod4, Keycodes: []byte{reshapeKey}})
	set.Bind(hotkeys.ActionRedraw, hotkeys.Chord{Mods: mod4, Keycodes: []byte{redrawKey}})
	return set
}

type harness struct {
	wm      *WM
	display *fakeDisplay
	spawner *fakeSpawner
	alive   map[int]bool
}

func newHarness(t *testing.T, parents proctree.Table) *harness {
	t.Helper()
	h := &harness{
		display: newFakeDisplay(t),
		spawner: &fakeSpawner{pid: 500},
		alive:   make(map[int]bool),
	}
	if parents == nil {
		parents = proctree.Table{}
	}
	h.wm = New(h.display, Config{
		BorderWidth:     2,
		BorderColor:     0x52aaad,
		MinWindowSize:   10,
		NewWindowWidth:  400,
		NewWindowHeight: 300,
		Terminal:        []string{"xterm"},
		MenuNormal:      normalStyle,
		MenuHighlight:   highlightStyle,
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Parent:          parents.Parent,
		Alive:           func(pid int) bool { return h.alive[pid] },
		Spawner:         h.spawner,
		Keys:            testKeys(),
	})
	return h
}

// mapWindow creates a client window and delivers its MapRequest.
func (h *harness) mapWindow(id platform.WindowID, pid int, title string) *fakeWindow {
	fw := h.display.addWindow(id, pid, title)
	h.wm.Dispatch(platform.MapRequest{Window: id})
	return fw
}

func (h *harness) container(t *testing.T, win platform.WindowID) *registry.Container {
	t.Helper()
	c, ok := h.wm.Registry().FindContainer(win)
	if !ok {
		t.Fatalf("window %d not managed", win)
	}
	return c
}

// assertInvariant checks the focus invariant against the fake display.
func (h *harness) assertInvariant(t *testing.T) {
	t.Helper()
	reg := h.wm.Registry()
	if err := reg.CheckInvariants(); err != nil {
		t.Fatalf("registry invariant: %v", err)
	}
	current, hasCurrent := reg.Current()
	visible := 0
	for _, c := range reg.Containers() {
		for i, win := range c.Windows {
			if !win.Bound() {
				continue
			}
			fw, ok := h.display.windows[win.ID]
			if !ok {
				t.Fatalf("managed window %d does not exist", win.ID)
			}
			shouldShow := hasCurrent && c.ID == current.ID && i == 0
			if fw.mapped != shouldShow {
				t.Fatalf("window %d mapped=%v, want %v", win.ID, fw.mapped, shouldShow)
			}
			if shouldShow {
				visible++
				if h.display.focus != win.ID {
					t.Fatalf("focus on %d, want %d", h.display.focus, win.ID)
				}
				if fw.grabbed {
					t.Fatalf("current head %d still has its click grab", win.ID)
				}
			} else if i == 0 && !fw.grabbed {
				t.Fatalf("background head %d has no click grab", win.ID)
			}
		}
	}
	if visible > 1 {
		t.Fatalf("%d windows visible, want at most 1", visible)
	}
}

func press(button, x, y int, window, child platform.WindowID) platform.ButtonPress {
	return platform.ButtonPress{
		Pointer: platform.Pointer{Window: window, Child: child, RootX: x, RootY: y, X: x, Y: y},
		Button:  button,
	}
}

func release(button, x, y int) platform.ButtonRelease {
	return platform.ButtonRelease{
		Pointer: platform.Pointer{Window: fakeRoot, RootX: x, RootY: y, X: x, Y: y},
		Button:  button,
	}
}

func motion(x, y int) platform.MotionNotify {
	return platform.MotionNotify{Pointer: platform.Pointer{Window: fakeRoot, RootX: x, RootY: y, X: x, Y: y}}
}

// destroy delivers a DestroyNotify for a window the client already
// destroyed.
func (h *harness) destroy(id platform.WindowID) {
	delete(h.display.windows, id)
	h.display.destroyed[id] = true
	h.wm.Dispatch(platform.DestroyNotify{Window: id})
}
