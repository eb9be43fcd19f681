package config

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// IncludeList supports either:
//
//	include: "/path/to/file.yaml"
//
// or:
//
//	include:
//	  - "/path/to/file.yaml"
//	  - "/path/to/dir"
type IncludeList []string

func (l *IncludeList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case 0:
		// Not present.
		*l = nil
		return nil
	case yaml.ScalarNode:
		if value.Tag != "!!str" {
			return fmt.Errorf("include must be a string or list of strings")
		}
		*l = []string{value.Value}
		return nil
	case yaml.SequenceNode:
		out := make([]string, 0, len(value.Content))
		for _, item := range value.Content {
			if item.Kind != yaml.ScalarNode || item.Tag != "!!str" {
				return fmt.Errorf("include entries must be strings")
			}
			out = append(out, item.Value)
		}
		*l = out
		return nil
	default:
		return fmt.Errorf("include must be a string or list of strings")
	}
}

type RawColorPair struct {
	Foreground *Color `yaml:"fg"`
	Background *Color `yaml:"bg"`
}

type RawMenuColors struct {
	Normal    *RawColorPair `yaml:"normal"`
	Highlight *RawColorPair `yaml:"highlight"`
}

type RawKeys struct {
	Fullscreen *string `yaml:"fullscreen"`
	Reshape    *string `yaml:"reshape"`
	Redraw     *string `yaml:"redraw"`
}

type RawWindowSize struct {
	Width  *int `yaml:"width"`
	Height *int `yaml:"height"`
}

type RawConfig struct {
	Include            IncludeList    `yaml:"include"`
	Display            *string        `yaml:"display"`
	Font               *string        `yaml:"font"`
	MenuColors         *RawMenuColors `yaml:"menu_colors"`
	MenuBorderColor    *Color         `yaml:"menu_border_color"`
	MenuLabelHint      *string        `yaml:"menu_label_hint"`
	BorderColor        *Color         `yaml:"border_color"`
	BorderWidth        *int           `yaml:"border_width"`
	OutlineBorderColor *Color         `yaml:"outline_border_color"`
	OutlineBackground  *Color         `yaml:"outline_background"`
	Background         *Color         `yaml:"background"`
	MinWindowSize      *int           `yaml:"min_window_size"`
	Terminal           []string       `yaml:"terminal"`
	Keys               *RawKeys       `yaml:"keys"`
	NewWindow          *RawWindowSize `yaml:"new_window"`
	SweepNewWindows    *bool          `yaml:"sweep_new_windows"`
	LogLevel           *string        `yaml:"log_level"`
}

func (c RawConfig) merge(overlay RawConfig) RawConfig {
	out := c

	if overlay.Display != nil {
		out.Display = overlay.Display
	}
	if overlay.Font != nil {
		out.Font = overlay.Font
	}
	if overlay.MenuColors != nil {
		if out.MenuColors == nil {
			out.MenuColors = &RawMenuColors{}
		}
		merged := mergeRawMenuColors(*out.MenuColors, *overlay.MenuColors)
		out.MenuColors = &merged
	}
	if overlay.MenuBorderColor != nil {
		out.MenuBorderColor = overlay.MenuBorderColor
	}
	if overlay.MenuLabelHint != nil {
		out.MenuLabelHint = overlay.MenuLabelHint
	}
	if overlay.BorderColor != nil {
		out.BorderColor = overlay.BorderColor
	}
	if overlay.BorderWidth != nil {
		out.BorderWidth = overlay.BorderWidth
	}
	if overlay.OutlineBorderColor != nil {
		out.OutlineBorderColor = overlay.OutlineBorderColor
	}
	if overlay.OutlineBackground != nil {
		out.OutlineBackground = overlay.OutlineBackground
	}
	if overlay.Background != nil {
		out.Background = overlay.Background
	}
	if overlay.MinWindowSize != nil {
		out.MinWindowSize = overlay.MinWindowSize
	}
	if overlay.Terminal != nil {
		out.Terminal = append([]string(nil), overlay.Terminal...)
	}
	if overlay.Keys != nil {
		if out.Keys == nil {
			out.Keys = &RawKeys{}
		}
		merged := mergeRawKeys(*out.Keys, *overlay.Keys)
		out.Keys = &merged
	}
	if overlay.NewWindow != nil {
		if out.NewWindow == nil {
			out.NewWindow = &RawWindowSize{}
		}
		merged := mergeRawWindowSize(*out.NewWindow, *overlay.NewWindow)
		out.NewWindow = &merged
	}
	if overlay.SweepNewWindows != nil {
		out.SweepNewWindows = overlay.SweepNewWindows
	}
	if overlay.LogLevel != nil {
		out.LogLevel = overlay.LogLevel
	}

	return out
}

func mergeRawColorPair(base RawColorPair, overlay RawColorPair) RawColorPair {
	out := base
	if overlay.Foreground != nil {
		out.Foreground = overlay.Foreground
	}
	if overlay.Background != nil {
		out.Background = overlay.Background
	}
	return out
}

func mergeRawMenuColors(base RawMenuColors, overlay RawMenuColors) RawMenuColors {
	out := base
	if overlay.Normal != nil {
		if out.Normal == nil {
			out.Normal = &RawColorPair{}
		}
		merged := mergeRawColorPair(*out.Normal, *overlay.Normal)
		out.Normal = &merged
	}
	if overlay.Highlight != nil {
		if out.Highlight == nil {
			out.Highlight = &RawColorPair{}
		}
		merged := mergeRawColorPair(*out.Highlight, *overlay.Highlight)
		out.Highlight = &merged
	}
	return out
}

func mergeRawKeys(base RawKeys, overlay RawKeys) RawKeys {
	out := base
	if overlay.Fullscreen != nil {
		out.Fullscreen = overlay.Fullscreen
	}
	if overlay.Reshape != nil {
		out.Reshape = overlay.Reshape
	}
	if overlay.Redraw != nil {
		out.Redraw = overlay.Redraw
	}
	return out
}

func mergeRawWindowSize(base RawWindowSize, overlay RawWindowSize) RawWindowSize {
	out := base
	if overlay.Width != nil {
		out.Width = overlay.Width
	}
	if overlay.Height != nil {
		out.Height = overlay.Height
	}
	return out
}
