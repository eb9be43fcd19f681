package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func writeConfig(t *testing.T, path string, lines ...string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected defaults to validate, got %v", err)
	}
	if cfg.MinWindowSize != 10 || cfg.BorderWidth != 2 {
		t.Fatalf("unexpected defaults: min=%d border=%d", cfg.MinWindowSize, cfg.BorderWidth)
	}
}

func TestLoadFromPath_MissingFileUsesDefaults(t *testing.T) {
	res, err := LoadFromPath(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(res.Config, DefaultConfig()) {
		t.Fatalf("expected defaults, got %#v", res.Config)
	}
	if len(res.Files) != 0 {
		t.Fatalf("expected no files loaded, got %v", res.Files)
	}
}

func TestLoadFromPath_EmptyFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "# empty")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Keys != DefaultConfig().Keys {
		t.Fatalf("expected default keys, got %#v", res.Config.Keys)
	}
}

func TestLoadFromPath_NestedBlocksMergeOverDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path,
		"menu_colors:",
		"  highlight:",
		"    bg: \"#112233\"",
		"keys:",
		"  reshape: Mod1-r",
		"new_window:",
		"  width: 800",
		"terminal: [st, -f, mono]",
		"sweep_new_windows: true",
	)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	cfg := res.Config
	def := DefaultConfig()

	if cfg.MenuColors.Highlight.Background != "#112233" {
		t.Fatalf("expected highlight bg overridden, got %q", cfg.MenuColors.Highlight.Background)
	}
	if cfg.MenuColors.Highlight.Foreground != def.MenuColors.Highlight.Foreground {
		t.Fatalf("expected highlight fg kept from defaults, got %q", cfg.MenuColors.Highlight.Foreground)
	}
	if cfg.Keys.Reshape != "Mod1-r" || cfg.Keys.Fullscreen != def.Keys.Fullscreen {
		t.Fatalf("unexpected keys %#v", cfg.Keys)
	}
	if cfg.NewWindow.Width != 800 || cfg.NewWindow.Height != 0 {
		t.Fatalf("unexpected new_window %#v", cfg.NewWindow)
	}
	if !reflect.DeepEqual(cfg.ResolveTerminal(), []string{"st", "-f", "mono"}) {
		t.Fatalf("unexpected terminal %v", cfg.ResolveTerminal())
	}
	if !cfg.SweepNewWindows {
		t.Fatalf("expected sweep_new_windows set")
	}
}

func TestLoadFromPath_StrictUnknownKeyErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "unknown_key: 1")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error for unknown key")
	}
	if !strings.Contains(err.Error(), "unknown_key") && !strings.Contains(err.Error(), "field") {
		t.Fatalf("expected unknown field error, got %v", err)
	}
	if !strings.Contains(err.Error(), path) {
		t.Fatalf("expected error to include file path, got %v", err)
	}
}

func TestLoadFromPath_ValidationErrorHasSourceContext(t *testing.T) {
	tests := []struct {
		name string
		line string
		path string
	}{
		{"bad color", "border_color: teal", "border_color"},
		{"negative border", "border_width: -1", "border_width"},
		{"zero min size", "min_window_size: 0", "min_window_size"},
		{"bad log level", "log_level: verbose", "log_level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeConfig(t, path, "font: fixed", tt.line)

			_, err := LoadFromPath(path)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if verr.Path != tt.path {
				t.Fatalf("expected path %q, got %q", tt.path, verr.Path)
			}
			if !strings.Contains(err.Error(), path+":2:") {
				t.Fatalf("expected file:line prefix, got %v", err)
			}
		})
	}
}

func TestLoadFromPath_IncludeDirectoryOrderAndMainOverrides(t *testing.T) {
	dir := t.TempDir()

	// config.d loaded first, in sorted order.
	configD := filepath.Join(dir, "config.d")
	if err := os.MkdirAll(configD, 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	writeConfig(t, filepath.Join(configD, "10-base.yaml"), "border_width: 5", "min_window_size: 20")
	writeConfig(t, filepath.Join(configD, "20-override.yaml"), "border_width: 6")

	// Main file overrides includes.
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path,
		"include:",
		"  - config.d",
		"border_width: 7",
	)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderWidth != 7 {
		t.Fatalf("expected border_width to be 7, got %d", res.Config.BorderWidth)
	}
	if res.Config.MinWindowSize != 20 {
		t.Fatalf("expected min_window_size from include, got %d", res.Config.MinWindowSize)
	}
	if len(res.Files) != 3 {
		t.Fatalf("expected 3 loaded files, got %v", res.Files)
	}

	_, src, err := Explain(res, "min_window_size")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFile || filepath.Base(src.File) != "10-base.yaml" || src.Line != 2 {
		t.Fatalf("expected source 10-base.yaml:2, got %#v", src)
	}
}

func TestLoadFromPath_IncludeMissingPathHasContext(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "include:", "  - missing.yaml")

	_, err := LoadFromPath(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if !strings.Contains(err.Error(), "include") || !strings.Contains(err.Error(), "missing.yaml") {
		t.Fatalf("expected include error, got %v", err)
	}
	if !strings.Contains(err.Error(), path+":") {
		t.Fatalf("expected error to include file:line:col prefix, got %v", err)
	}
}

func TestLoadFromPath_IncludeCycleDetection(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.yaml")
	b := filepath.Join(dir, "b.yaml")
	writeConfig(t, a, "include: b.yaml")
	writeConfig(t, b, "include: a.yaml")

	_, err := LoadFromPath(a)
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if !strings.Contains(err.Error(), "include cycle") {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestLoadFromPath_IncludeReachedTwiceLoadsOnce(t *testing.T) {
	dir := t.TempDir()
	shared := filepath.Join(dir, "shared.yaml")
	writeConfig(t, shared, "font: 9x15")
	writeConfig(t, filepath.Join(dir, "colors.yaml"), "include: shared.yaml", "border_color: \"#112233\"")
	path := filepath.Join(dir, "config.yaml")
	writeConfig(t, path,
		"include:",
		"  - colors.yaml",
		"  - shared.yaml",
	)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Font != "9x15" || res.Config.BorderColor != "#112233" {
		t.Fatalf("unexpected merge: font=%q border=%q", res.Config.Font, res.Config.BorderColor)
	}
	want := []string{"shared.yaml", "colors.yaml", "config.yaml"}
	if len(res.Files) != len(want) {
		t.Fatalf("expected files %v, got %v", want, res.Files)
	}
	for i, name := range want {
		if filepath.Base(res.Files[i]) != name {
			t.Fatalf("expected files %v, got %v", want, res.Files)
		}
	}
}

func TestIncludeTargets(t *testing.T) {
	dir := t.TempDir()
	from := filepath.Join(dir, "config.yaml")
	confD := filepath.Join(dir, "conf.d")
	if err := os.MkdirAll(filepath.Join(confD, "nested.yaml"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	for _, name := range []string{"b.yml", "a.yaml", "notes.txt"} {
		writeConfig(t, filepath.Join(confD, name), "font: fixed")
	}

	tests := []struct {
		name    string
		include string
		want    []string
		wantErr bool
	}{
		{"relative directory", "conf.d", []string{"a.yaml", "b.yml"}, false},
		{"relative file", "conf.d/b.yml", []string{"b.yml"}, false},
		{"absolute file", filepath.Join(confD, "a.yaml"), []string{"a.yaml"}, false},
		{"missing", "nope.yaml", nil, true},
		{"empty", "", nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := includeTargets(from, tt.include)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("include targets: %v", err)
			}
			var names []string
			for _, p := range got {
				names = append(names, filepath.Base(p))
			}
			if !reflect.DeepEqual(names, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, names)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path,
		"menu_colors:",
		"  normal:",
		"    fg: \"#101010\"",
	)
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	tests := []struct {
		path     string
		want     any
		wantKind SourceKind
	}{
		{"menu_colors.normal.fg", Color("#101010"), SourceFile},
		{"menu_colors.normal.bg", Color("#eaffea"), SourceDefault},
		{"keys.redraw", "Mod4-a", SourceDefault},
		{"new_window.height", 0, SourceDefault},
		{"border_width", 2, SourceDefault},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			val, src, err := Explain(res, tt.path)
			if err != nil {
				t.Fatalf("explain: %v", err)
			}
			if val != tt.want {
				t.Fatalf("expected %#v, got %#v", tt.want, val)
			}
			if src.Kind != tt.wantKind {
				t.Fatalf("expected source %q, got %#v", tt.wantKind, src)
			}
		})
	}

	for _, bad := range []string{"", "nope", "keys.launch", "font.size", "menu_colors.normal.fg.x"} {
		if _, _, err := Explain(res, bad); err == nil {
			t.Fatalf("expected error for path %q", bad)
		}
	}
}

func TestBindFlags_OverridesFileAndRecordsSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "border_width: 4", "log_level: warning")

	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	overrides := BindFlags(fs)
	if err := fs.Parse([]string{"--border-width=1", "--terminal=urxvt,-e,sh"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	res, err := Load(path, overrides)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.BorderWidth != 1 {
		t.Fatalf("expected flag to win, got border_width %d", res.Config.BorderWidth)
	}
	if res.Config.LogLevel != "warning" {
		t.Fatalf("expected unset flag to leave file value, got %q", res.Config.LogLevel)
	}
	if !reflect.DeepEqual(res.Config.Terminal, []string{"urxvt", "-e", "sh"}) {
		t.Fatalf("unexpected terminal %v", res.Config.Terminal)
	}

	_, src, err := Explain(res, "border_width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if src.Kind != SourceFlag || src.Name != "--border-width" {
		t.Fatalf("expected flag source, got %#v", src)
	}
}

func TestBindFlags_InvalidValueReportsPath(t *testing.T) {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	overrides := BindFlags(fs)
	if err := fs.Parse([]string{"--log-level=loud"}); err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"), overrides)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Path != "log_level" || verr.Source.Kind != SourceFlag {
		t.Fatalf("expected log_level validation error from flag, got %v", err)
	}
}

func TestColorPixel(t *testing.T) {
	tests := []struct {
		in      Color
		want    uint32
		wantErr bool
	}{
		{"#52aaad", 0x52aaad, false},
		{"ffffff", 0xffffff, false},
		{" #000000 ", 0, false},
		{"#fff", 0, true},
		{"#gggggg", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		t.Run(string(tt.in), func(t *testing.T) {
			got, err := tt.in.Pixel()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Pixel(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Fatalf("Pixel(%q) = %#x, want %#x", tt.in, got, tt.want)
			}
		})
	}
}

func TestBackgroundCanBeDisabled(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeConfig(t, path, "background: \"\"")

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Config.Background != "" {
		t.Fatalf("expected background disabled, got %q", res.Config.Background)
	}
}

func TestSaveRoundTripsThroughLoader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	cfg := DefaultConfig()
	cfg.Terminal = []string{"xterm", "-fa", "Mono"}
	cfg.SweepNewWindows = true

	if err := cfg.Save(path); err != nil {
		t.Fatalf("save: %v", err)
	}
	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !reflect.DeepEqual(res.Config, cfg) {
		t.Fatalf("expected saved config to load back unchanged:\n got %#v\nwant %#v", res.Config, cfg)
	}
}
