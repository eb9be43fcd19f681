// Package proctree answers process-ancestry questions used to group windows
// of related processes.
package proctree

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/process"
	"golang.org/x/sys/unix"
)

// MaxDepth bounds every ancestry walk.
const MaxDepth = 64

// ParentFunc returns the parent of pid, or false when it cannot be
// determined (process gone, no /proc, pid 0).
type ParentFunc func(pid int) (int, bool)

// AliveFunc reports whether pid still exists.
type AliveFunc func(pid int) bool

// IsAncestor reports whether ancestor is pid itself or one of its parents.
// Any lookup failure ends the walk with no match.
func IsAncestor(parent ParentFunc, ancestor, pid int) bool {
	if ancestor <= 0 || pid <= 0 || parent == nil {
		return false
	}
	for depth := 0; depth <= MaxDepth; depth++ {
		if pid == ancestor {
			return true
		}
		next, ok := parent(pid)
		if !ok || next <= 0 || next == pid {
			return false
		}
		pid = next
	}
	return false
}

// Parent looks up the parent through gopsutil, falling back to parsing
// /proc/<pid>/stat directly.
func Parent(pid int) (int, bool) {
	if pid <= 0 {
		return 0, false
	}
	if proc, err := process.NewProcess(int32(pid)); err == nil {
		if ppid, err := proc.Ppid(); err == nil {
			return int(ppid), ppid > 0
		}
	}
	ppid, err := readStatParent(pid)
	if err != nil {
		return 0, false
	}
	return ppid, ppid > 0
}

// Alive probes pid with signal 0.
func Alive(pid int) bool {
	if pid <= 0 {
		return false
	}
	err := unix.Kill(pid, 0)
	return err == nil || errors.Is(err, unix.EPERM)
}

// Table is a fixed pid -> parent mapping.
type Table map[int]int

// Parent implements ParentFunc over the table.
func (t Table) Parent(pid int) (int, bool) {
	ppid, ok := t[pid]
	return ppid, ok
}

func readStatParent(pid int) (int, error) {
	data, err := os.ReadFile(filepath.Join("/proc", fmt.Sprintf("%d", pid), "stat"))
	if err != nil {
		return 0, err
	}
	ppid := parsePPID(string(data))
	if ppid <= 0 {
		return 0, fmt.Errorf("no parent in /proc/%d/stat", pid)
	}
	return ppid, nil
}

// parsePPID extracts the PPID (field 4) from /proc/<pid>/stat.
// Format: pid (comm) state ppid ...
func parsePPID(stat string) int {
	// comm may contain spaces and parens, so split after the last one.
	idx := strings.LastIndex(stat, ") ")
	if idx < 0 {
		return 0
	}
	fields := strings.Fields(stat[idx+2:])
	if len(fields) < 2 {
		return 0
	}
	var ppid int
	fmt.Sscanf(fields[1], "%d", &ppid)
	return ppid
}
