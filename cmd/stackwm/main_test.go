package main

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/stackwm/internal/config"
	"github.com/1broseidon/stackwm/internal/launcher"
)

func TestFormatSource(t *testing.T) {
	tests := []struct {
		name string
		src  config.Source
		want string
	}{
		{"file with position", config.Source{Kind: config.SourceFile, File: "/c.yaml", Line: 3, Column: 5}, "file:/c.yaml:3:5"},
		{"file only", config.Source{Kind: config.SourceFile, File: "/c.yaml"}, "file:/c.yaml"},
		{"flag", config.Source{Kind: config.SourceFlag, Name: "--font"}, "flag:--font"},
		{"default", config.Source{Kind: config.SourceDefault, Name: "defaults"}, "default:defaults"},
		{"bare default", config.Source{Kind: config.SourceDefault}, "default"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := formatSource(tt.src); got != tt.want {
				t.Fatalf("formatSource = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
	}
	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestNewLoggerUsesJSONWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, "warning")

	logger.Info("hidden")
	logger.Warn("shown", "window", 42)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected info filtered at warning level, got %q", out)
	}
	if !strings.Contains(out, `"msg":"shown"`) || !strings.Contains(out, `"window":42`) {
		t.Fatalf("expected JSON record, got %q", out)
	}
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("border_width: 5\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	out, err := runCLI(t, "config", "validate", "--config", path)
	if err != nil || !strings.Contains(out, "config: ok") {
		t.Fatalf("validate: err=%v out=%q", err, out)
	}

	out, err = runCLI(t, "config", "explain", "--config", path, "border_width")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if !strings.Contains(out, "source: file:") || !strings.Contains(out, "value:\n5\n") {
		t.Fatalf("unexpected explain output %q", out)
	}

	out, err = runCLI(t, "config", "print", "--config", path)
	if err != nil || !strings.Contains(out, "border_width: 5") {
		t.Fatalf("print: err=%v out=%q", err, out)
	}
}

func TestConfigValidateReportsErrors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("border_color: teal\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := runCLI(t, "config", "validate", "--config", path); err == nil {
		t.Fatalf("expected validation failure")
	}
}

func TestConfigInit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "stackwm", "config.yaml")

	if _, err := runCLI(t, "config", "init", "--config", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := runCLI(t, "config", "init", "--config", path); err == nil {
		t.Fatalf("expected init to refuse overwriting")
	}
	if _, err := runCLI(t, "config", "validate", "--config", path); err != nil {
		t.Fatalf("expected written defaults to validate: %v", err)
	}
}

func TestWMConfigMapping(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Terminal = []string{"st"}
	cfg.NewWindow = config.WindowSize{Width: 640, Height: 480}

	got := wmConfig(cfg, slog.Default(), nil)

	if got.BorderColor != 0x52aaad || got.BorderWidth != 2 {
		t.Fatalf("unexpected border %#x/%d", got.BorderColor, got.BorderWidth)
	}
	if got.MenuHighlight.Background != 0x448844 || got.MenuNormal.Foreground != 0 {
		t.Fatalf("unexpected menu styles %+v %+v", got.MenuNormal, got.MenuHighlight)
	}
	if got.NewWindowWidth != 640 || got.NewWindowHeight != 480 || got.Terminal[0] != "st" {
		t.Fatalf("unexpected mapping %+v", got)
	}

	spawner, ok := got.Spawner.(*launcher.Launcher)
	if !ok {
		t.Fatalf("unexpected spawner %T", got.Spawner)
	}
	if spawner.Env != nil {
		t.Fatalf("expected inherited environment without a display, got %v", spawner.Env)
	}
	cfg.Display = ":7"
	spawner = wmConfig(cfg, slog.Default(), nil).Spawner.(*launcher.Launcher)
	if len(spawner.Env) == 0 || spawner.Env[len(spawner.Env)-1] != "DISPLAY=:7" {
		t.Fatalf("expected children pointed at :7, got env tail %v", spawner.Env)
	}

	opts := connectionOptions(cfg, slog.Default())
	if !opts.HasBackground || opts.Background != 0x757373 {
		t.Fatalf("expected root background from defaults, got %+v", opts)
	}
	cfg.Background = ""
	if connectionOptions(cfg, slog.Default()).HasBackground {
		t.Fatalf("expected no background when disabled")
	}
}
