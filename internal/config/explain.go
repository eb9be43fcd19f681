package config

import (
	"fmt"
	"strings"
)

// Explain returns the effective value at the given YAML-like path and its source.
//
// Supported paths include:
//
//	display
//	font
//	menu_colors.normal.fg
//	menu_colors.highlight.bg
//	menu_border_color
//	menu_label_hint
//	border_color
//	border_width
//	outline_border_color
//	outline_background
//	background
//	min_window_size
//	terminal
//	keys.fullscreen
//	new_window.width
//	sweep_new_windows
//	log_level
func Explain(res *LoadResult, path string) (any, Source, error) {
	if res == nil || res.Config == nil {
		return nil, Source{}, fmt.Errorf("no config loaded")
	}
	if path == "" {
		return nil, Source{}, fmt.Errorf("path is empty")
	}

	value, err := lookupValue(res.Config, path)
	if err != nil {
		return nil, Source{}, err
	}

	// Exact-path source wins.
	if src, ok := res.Sources[path]; ok {
		return value, src, nil
	}
	if path == "terminal" && len(res.Config.Terminal) == 0 {
		return value, Source{Kind: SourceDefault, Name: "PATH detection"}, nil
	}

	return value, Source{Kind: SourceDefault, Name: "defaults"}, nil
}

func lookupValue(cfg *Config, path string) (any, error) {
	parts := strings.Split(path, ".")
	leaf := func(v any) (any, error) {
		if len(parts) != 1 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		return v, nil
	}

	switch parts[0] {
	case "display":
		return leaf(cfg.Display)
	case "font":
		return leaf(cfg.Font)
	case "menu_border_color":
		return leaf(cfg.MenuBorderColor)
	case "menu_label_hint":
		return leaf(cfg.MenuLabelHint)
	case "border_color":
		return leaf(cfg.BorderColor)
	case "border_width":
		return leaf(cfg.BorderWidth)
	case "outline_border_color":
		return leaf(cfg.OutlineBorderColor)
	case "outline_background":
		return leaf(cfg.OutlineBackground)
	case "background":
		return leaf(cfg.Background)
	case "min_window_size":
		return leaf(cfg.MinWindowSize)
	case "terminal":
		return leaf(cfg.ResolveTerminal())
	case "sweep_new_windows":
		return leaf(cfg.SweepNewWindows)
	case "log_level":
		return leaf(cfg.LogLevel)
	case "menu_colors":
		if len(parts) == 1 {
			return cfg.MenuColors, nil
		}
		var pair ColorPair
		switch parts[1] {
		case "normal":
			pair = cfg.MenuColors.Normal
		case "highlight":
			pair = cfg.MenuColors.Highlight
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		if len(parts) == 2 {
			return pair, nil
		}
		if len(parts) != 3 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[2] {
		case "fg":
			return pair.Foreground, nil
		case "bg":
			return pair.Background, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "keys":
		if len(parts) == 1 {
			return cfg.Keys, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "fullscreen":
			return cfg.Keys.Fullscreen, nil
		case "reshape":
			return cfg.Keys.Reshape, nil
		case "redraw":
			return cfg.Keys.Redraw, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	case "new_window":
		if len(parts) == 1 {
			return cfg.NewWindow, nil
		}
		if len(parts) != 2 {
			return nil, fmt.Errorf("unknown path: %s", path)
		}
		switch parts[1] {
		case "width":
			return cfg.NewWindow.Width, nil
		case "height":
			return cfg.NewWindow.Height, nil
		default:
			return nil, fmt.Errorf("unknown path: %s", path)
		}
	default:
		return nil, fmt.Errorf("unknown path: %s", path)
	}
}
