package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Color is an RGB color written as "#rrggbb".
type Color string

// Pixel returns the color as a 24-bit TrueColor pixel value.
func (c Color) Pixel() (uint32, error) {
	s := strings.TrimPrefix(strings.TrimSpace(string(c)), "#")
	if len(s) != 6 {
		return 0, fmt.Errorf("color %q must be #rrggbb", string(c))
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("color %q must be #rrggbb", string(c))
	}
	return uint32(v), nil
}

// MustPixel is Pixel for colors that already passed Validate.
func (c Color) MustPixel() uint32 {
	v, err := c.Pixel()
	if err != nil {
		return 0
	}
	return v
}

// ColorPair is a foreground/background pair for menu rows.
type ColorPair struct {
	Foreground Color `yaml:"fg"`
	Background Color `yaml:"bg"`
}

type MenuColors struct {
	Normal    ColorPair `yaml:"normal"`
	Highlight ColorPair `yaml:"highlight"`
}

// Keys are xgbutil key strings such as "Mod4-f".
type Keys struct {
	Fullscreen string `yaml:"fullscreen"`
	Reshape    string `yaml:"reshape"`
	Redraw     string `yaml:"redraw"`
}

// WindowSize is the default geometry for spawned windows. Zero means two
// thirds of the screen.
type WindowSize struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

type Config struct {
	Display            string     `yaml:"display,omitempty"`
	Font               string     `yaml:"font"`
	MenuColors         MenuColors `yaml:"menu_colors"`
	MenuBorderColor    Color      `yaml:"menu_border_color"`
	MenuLabelHint      string     `yaml:"menu_label_hint"`
	BorderColor        Color      `yaml:"border_color"`
	BorderWidth        int        `yaml:"border_width"`
	OutlineBorderColor Color      `yaml:"outline_border_color"`
	OutlineBackground  Color      `yaml:"outline_background"`
	// Background paints the root window when set.
	Background      Color      `yaml:"background,omitempty"`
	MinWindowSize   int        `yaml:"min_window_size"`
	Terminal        []string   `yaml:"terminal,omitempty"`
	Keys            Keys       `yaml:"keys"`
	NewWindow       WindowSize `yaml:"new_window"`
	SweepNewWindows bool       `yaml:"sweep_new_windows"`
	LogLevel        string     `yaml:"log_level"`
}

func DefaultConfig() *Config {
	return &Config{
		Font: "fixed",
		MenuColors: MenuColors{
			Normal:    ColorPair{Foreground: "#000000", Background: "#eaffea"},
			Highlight: ColorPair{Foreground: "#eaffea", Background: "#448844"},
		},
		MenuBorderColor:    "#88cb88",
		MenuLabelHint:      "MMMMMMMMMMMMMMMM",
		BorderColor:        "#52aaad",
		BorderWidth:        2,
		OutlineBorderColor: "#88cb88",
		OutlineBackground:  "#ffffff",
		Background:         "#757373",
		MinWindowSize:      10,
		Keys: Keys{
			Fullscreen: "Mod4-f",
			Reshape:    "Mod4-r",
			Redraw:     "Mod4-a",
		},
		LogLevel: "info",
	}
}

// ResolveTerminal returns the configured terminal command, or the first known
// terminal found on PATH.
func (c *Config) ResolveTerminal() []string {
	if len(c.Terminal) > 0 {
		return append([]string(nil), c.Terminal...)
	}
	if name := DetectTerminal(); name != "" {
		return []string{name}
	}
	return []string{"xterm"}
}

// Validate checks the effective configuration.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Font) == "" {
		return &ValidationError{Path: "font", Err: fmt.Errorf("font must not be empty")}
	}
	colors := []struct {
		path  string
		color Color
	}{
		{"menu_colors.normal.fg", c.MenuColors.Normal.Foreground},
		{"menu_colors.normal.bg", c.MenuColors.Normal.Background},
		{"menu_colors.highlight.fg", c.MenuColors.Highlight.Foreground},
		{"menu_colors.highlight.bg", c.MenuColors.Highlight.Background},
		{"menu_border_color", c.MenuBorderColor},
		{"border_color", c.BorderColor},
		{"outline_border_color", c.OutlineBorderColor},
		{"outline_background", c.OutlineBackground},
	}
	if c.Background != "" {
		colors = append(colors, struct {
			path  string
			color Color
		}{"background", c.Background})
	}
	for _, entry := range colors {
		if _, err := entry.color.Pixel(); err != nil {
			return &ValidationError{Path: entry.path, Err: err}
		}
	}
	if c.BorderWidth < 0 {
		return &ValidationError{Path: "border_width", Err: fmt.Errorf("border_width must be >= 0")}
	}
	if c.MinWindowSize < 1 {
		return &ValidationError{Path: "min_window_size", Err: fmt.Errorf("min_window_size must be >= 1")}
	}
	if c.NewWindow.Width < 0 || c.NewWindow.Height < 0 {
		return &ValidationError{Path: "new_window", Err: fmt.Errorf("new_window values must be >= 0")}
	}
	if c.MenuLabelHint == "" {
		return &ValidationError{Path: "menu_label_hint", Err: fmt.Errorf("menu_label_hint must not be empty")}
	}
	if len(c.Terminal) > 0 && strings.TrimSpace(c.Terminal[0]) == "" {
		return &ValidationError{Path: "terminal", Err: fmt.Errorf("terminal command must not be empty")}
	}
	keys := []struct {
		path  string
		value string
	}{
		{"keys.fullscreen", c.Keys.Fullscreen},
		{"keys.reshape", c.Keys.Reshape},
		{"keys.redraw", c.Keys.Redraw},
	}
	for _, k := range keys {
		if strings.TrimSpace(k.value) == "" {
			return &ValidationError{Path: k.path, Err: fmt.Errorf("key chord must not be empty")}
		}
	}
	if !isValidLogLevel(c.LogLevel) {
		return &ValidationError{Path: "log_level", Err: fmt.Errorf("log_level must be one of: debug, info, warning, error")}
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warning", "error":
		return true
	}
	return false
}

// Save writes the configuration to path.
//
// Note: this marshals the effective config and will not preserve comments or
// include structure from the original YAML.
func (c *Config) Save(path string) error {
	if err := c.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
