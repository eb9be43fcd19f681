package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/hotkeys"
	"github.com/1broseidon/stackwm/internal/launcher"
	"github.com/1broseidon/stackwm/internal/platform"
	"github.com/1broseidon/stackwm/internal/wm"
	"github.com/1broseidon/stackwm/internal/x11"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var configPath string
	var overrides *config.Overrides

	root := &cobra.Command{
		Use:           "stackwm",
		Short:         "A minimal stacking window manager for X11",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			runWM(configPath, overrides)
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file path (default: ~/.config/stackwm/config.yaml)")
	overrides = config.BindFlags(root.Flags())

	root.AddCommand(newConfigCommand(&configPath))
	return root
}

func loadConfig(path string, overrides *config.Overrides) (*config.LoadResult, error) {
	if path == "" {
		def, err := config.DefaultConfigPath()
		if err != nil {
			return nil, err
		}
		path = def
	}
	return config.Load(path, overrides)
}

func runWM(configPath string, overrides *config.Overrides) {
	res, err := loadConfig(configPath, overrides)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	cfg := res.Config

	logger := newLogger(os.Stderr, cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("configuration loaded", "files", res.Files)

	conn, err := x11.NewConnection(connectionOptions(cfg, logger))
	if err != nil {
		if errors.Is(err, x11.ErrAnotherWM) {
			log.Fatalf("Failed to start: %v", err)
		}
		log.Fatalf("Failed to connect to display: %v", err)
	}
	defer func() {
		if err := conn.Disconnect(); err != nil {
			logger.Debug("teardown reported errors", "error", err)
		}
	}()

	handler := hotkeys.NewHandler(conn.XUtil, conn.RootWindow())
	chords := []struct {
		action hotkeys.Action
		keys   string
	}{
		{hotkeys.ActionFullscreen, cfg.Keys.Fullscreen},
		{hotkeys.ActionReshape, cfg.Keys.Reshape},
		{hotkeys.ActionRedraw, cfg.Keys.Redraw},
	}
	for _, chord := range chords {
		if err := handler.Register(chord.action, chord.keys); err != nil {
			log.Fatalf("Failed to register hotkey: %v", err)
		}
		logger.Debug("hotkey registered", "action", chord.action.String(), "keys", chord.keys)
	}
	defer handler.Release()

	manager := wm.New(conn, wmConfig(cfg, logger, handler.Set()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handlers
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Info("shutting down", "signal", sig.String())
		cancel()
		if err := conn.Wake(); err != nil {
			logger.Warn("failed to wake event loop", "error", err)
		}
	}()

	if err := manager.Run(ctx); err != nil {
		logger.Error("event loop stopped", "error", err)
	}
}

func connectionOptions(cfg *config.Config, logger *slog.Logger) x11.Options {
	opts := x11.Options{
		Display:           cfg.Display,
		Fonts:             []string{cfg.Font},
		OutlineBorder:     cfg.OutlineBorderColor.MustPixel(),
		OutlineBackground: cfg.OutlineBackground.MustPixel(),
		MenuBorder:        cfg.MenuBorderColor.MustPixel(),
		Logger:            logger,
	}
	if cfg.Background != "" {
		opts.Background = cfg.Background.MustPixel()
		opts.HasBackground = true
	}
	return opts
}

func wmConfig(cfg *config.Config, logger *slog.Logger, keys wm.Keys) wm.Config {
	spawner := launcher.New(logger)
	spawner.SetDisplay(cfg.Display)

	return wm.Config{
		BorderWidth:     cfg.BorderWidth,
		BorderColor:     cfg.BorderColor.MustPixel(),
		MinWindowSize:   cfg.MinWindowSize,
		NewWindowWidth:  cfg.NewWindow.Width,
		NewWindowHeight: cfg.NewWindow.Height,
		SweepNewWindows: cfg.SweepNewWindows,
		Terminal:        cfg.ResolveTerminal(),
		MenuLabelHint:   cfg.MenuLabelHint,
		MenuNormal:      menuStyle(cfg.MenuColors.Normal),
		MenuHighlight:   menuStyle(cfg.MenuColors.Highlight),
		Logger:          logger,
		Spawner:         spawner,
		Keys:            keys,
	}
}

func menuStyle(pair config.ColorPair) platform.MenuStyle {
	return platform.MenuStyle{
		Foreground: pair.Foreground.MustPixel(),
		Background: pair.Background.MustPixel(),
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceFlag:
		if src.Name != "" {
			return "flag:" + src.Name
		}
		return "flag"
	case config.SourceDefault:
		if src.Name != "" {
			return "default:" + src.Name
		}
		return "default"
	default:
		return string(src.Kind)
	}
}
