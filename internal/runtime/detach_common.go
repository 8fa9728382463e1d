package runtime

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// Launcher starts the target program in the background.
type Launcher interface {
	Launch(name string, args []string, logPath string) (int, error)
}

// DetachedLauncher starts the target in its own session with stdout and
// stderr appended to the log file, so it outlives the attach session.
type DetachedLauncher struct{}

// Launch starts name with args and returns its pid. The child is reaped in
// the background and never waited on by the caller.
func (DetachedLauncher) Launch(name string, args []string, logPath string) (int, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return 0, fmt.Errorf("failed to create log directory: %w", err)
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer logFile.Close()

	cmd := exec.Command(name, args...)
	cmd.Stdout = logFile
	cmd.Stderr = logFile
	cmd.Stdin = nil
	cmd.SysProcAttr = detachedProcAttr()
	if err := cmd.Start(); err != nil {
		return 0, fmt.Errorf("failed to start %s: %w", name, err)
	}
	pid := cmd.Process.Pid
	go func() {
		_ = cmd.Wait()
	}()
	return pid, nil
}
