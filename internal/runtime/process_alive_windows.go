//go:build windows

package runtime

import (
	"os"
	"syscall"
)

// IsProcessAlive checks if a process with the given PID is running.
func IsProcessAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	// Best effort: Signal(0) fails once the process has exited.
	return proc.Signal(syscall.Signal(0)) == nil
}
