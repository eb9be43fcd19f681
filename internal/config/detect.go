package config

import "os/exec"

// knownTerminals is the PATH search order for the "new" menu entry when no
// terminal is configured.
var knownTerminals = []string{
	"9term",
	"xterm",
	"urxvt",
	"st",
	"alacritty",
	"kitty",
	"wezterm",
	"ghostty",
}

// DetectTerminal returns the first known terminal on PATH, or "".
func DetectTerminal() string {
	for _, name := range knownTerminals {
		if _, err := exec.LookPath(name); err == nil {
			return name
		}
	}
	return ""
}
