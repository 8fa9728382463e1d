//go:build !windows

// Package lock keeps a second session from attaching to the same target.
package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/jmagar/fifoattach/internal/model"
)

// FileLock represents a held attach lock.
type FileLock struct {
	lockFile *os.File
}

// Acquire takes an exclusive lock on lockPath, retrying up to maxRetries
// times 100ms apart. The holder's pid is written into the file. Contention
// returns an error wrapping model.ErrAlreadyAttached.
func Acquire(lockPath string, maxRetries int) (*FileLock, error) {
	if err := os.MkdirAll(filepath.Dir(lockPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open lock file: %w", err)
		}

		err = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			if err := writePID(lockFile); err != nil {
				_ = syscall.Flock(int(lockFile.Fd()), syscall.LOCK_UN)
				lockFile.Close()
				return nil, err
			}
			return &FileLock{lockFile: lockFile}, nil
		}

		lockFile.Close()
		lastErr = err

		if i < maxRetries {
			time.Sleep(100 * time.Millisecond)
		}
	}

	if pid := HolderPID(lockPath); pid > 0 {
		return nil, fmt.Errorf("%w (pid=%d): %w", model.ErrAlreadyAttached, pid, lastErr)
	}
	return nil, fmt.Errorf("%w: %w", model.ErrAlreadyAttached, lastErr)
}

func writePID(f *os.File) error {
	if err := f.Truncate(0); err != nil {
		return fmt.Errorf("failed to reset lock file: %w", err)
	}
	if _, err := f.WriteAt([]byte(strconv.Itoa(os.Getpid())+"\n"), 0); err != nil {
		return fmt.Errorf("failed to write lock file: %w", err)
	}
	return nil
}

// HolderPID returns the pid recorded in the lock file, or 0.
func HolderPID(lockPath string) int {
	data, err := os.ReadFile(lockPath)
	if err != nil {
		return 0
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0
	}
	return pid
}

// Release unlocks the lock file. Calling it again is a no-op.
func (fl *FileLock) Release() error {
	if fl == nil || fl.lockFile == nil {
		return nil
	}

	err := syscall.Flock(int(fl.lockFile.Fd()), syscall.LOCK_UN)
	if err != nil {
		fl.lockFile.Close()
		fl.lockFile = nil
		return fmt.Errorf("failed to release lock: %w", err)
	}

	err = fl.lockFile.Close()
	fl.lockFile = nil
	if err != nil {
		return fmt.Errorf("failed to close lock file: %w", err)
	}
	return nil
}
