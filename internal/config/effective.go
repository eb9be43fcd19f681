package config

import "fmt"

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.Kind == SourceFile && e.Source.File != "" && e.Source.Line > 0 {
		return fmt.Sprintf("%s:%d:%d: %s: %v", e.Source.File, e.Source.Line, e.Source.Column, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// BuildEffectiveConfig overlays the merged raw layer onto DefaultConfig.
func BuildEffectiveConfig(raw RawConfig) *Config {
	cfg := DefaultConfig()

	if raw.Display != nil {
		cfg.Display = *raw.Display
	}
	if raw.Font != nil {
		cfg.Font = *raw.Font
	}
	if mc := raw.MenuColors; mc != nil {
		applyColorPair(&cfg.MenuColors.Normal, mc.Normal)
		applyColorPair(&cfg.MenuColors.Highlight, mc.Highlight)
	}
	if raw.MenuBorderColor != nil {
		cfg.MenuBorderColor = *raw.MenuBorderColor
	}
	if raw.MenuLabelHint != nil {
		cfg.MenuLabelHint = *raw.MenuLabelHint
	}
	if raw.BorderColor != nil {
		cfg.BorderColor = *raw.BorderColor
	}
	if raw.BorderWidth != nil {
		cfg.BorderWidth = *raw.BorderWidth
	}
	if raw.OutlineBorderColor != nil {
		cfg.OutlineBorderColor = *raw.OutlineBorderColor
	}
	if raw.OutlineBackground != nil {
		cfg.OutlineBackground = *raw.OutlineBackground
	}
	if raw.Background != nil {
		cfg.Background = *raw.Background
	}
	if raw.MinWindowSize != nil {
		cfg.MinWindowSize = *raw.MinWindowSize
	}
	if raw.Terminal != nil {
		cfg.Terminal = append([]string(nil), raw.Terminal...)
	}
	if k := raw.Keys; k != nil {
		if k.Fullscreen != nil {
			cfg.Keys.Fullscreen = *k.Fullscreen
		}
		if k.Reshape != nil {
			cfg.Keys.Reshape = *k.Reshape
		}
		if k.Redraw != nil {
			cfg.Keys.Redraw = *k.Redraw
		}
	}
	if nw := raw.NewWindow; nw != nil {
		if nw.Width != nil {
			cfg.NewWindow.Width = *nw.Width
		}
		if nw.Height != nil {
			cfg.NewWindow.Height = *nw.Height
		}
	}
	if raw.SweepNewWindows != nil {
		cfg.SweepNewWindows = *raw.SweepNewWindows
	}
	if raw.LogLevel != nil {
		cfg.LogLevel = *raw.LogLevel
	}

	return cfg
}

func applyColorPair(dst *ColorPair, raw *RawColorPair) {
	if raw == nil {
		return
	}
	if raw.Foreground != nil {
		dst.Foreground = *raw.Foreground
	}
	if raw.Background != nil {
		dst.Background = *raw.Background
	}
}
