// Package launcher starts detached child processes for the "New" action.
package launcher

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

// Spawner starts a command and returns its process id.
type Spawner interface {
	Spawn(argv []string) (int, error)
}

// Launcher spawns commands in their own session so they outlive the window
// manager's process group.
type Launcher struct {
	logger *slog.Logger
	// Env overrides the inherited environment when non-nil. SetDisplay
	// fills it for a non-default display.
	Env []string
}

// New returns a launcher that logs child exits at debug level.
func New(logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{logger: logger}
}

// SetDisplay makes children connect to display instead of the inherited
// $DISPLAY. An empty display keeps the inherited environment.
func (l *Launcher) SetDisplay(display string) {
	if display == "" {
		l.Env = nil
		return
	}
	env := make([]string, 0, len(os.Environ())+1)
	for _, kv := range os.Environ() {
		if strings.HasPrefix(kv, "DISPLAY=") {
			continue
		}
		env = append(env, kv)
	}
	l.Env = append(env, "DISPLAY="+display)
}

// Spawn starts argv and returns its pid without waiting for it.
func (l *Launcher) Spawn(argv []string) (int, error) {
	if len(argv) == 0 {
		return 0, fmt.Errorf("empty command")
	}

	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Stdin = nil
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Env = l.Env
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to spawn %q: %w", argv[0], err)
	}

	pid := cmd.Process.Pid
	// Reap in the background; terminals are long-lived.
	go func() {
		err := cmd.Wait()
		l.logger.Debug("spawned process exited", "pid", pid, "command", argv[0], "err", err)
	}()
	return pid, nil
}
