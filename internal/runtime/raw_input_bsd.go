//go:build darwin || dragonfly || freebsd || netbsd || openbsd

package runtime

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// EnableRawInput switches the terminal to single-keystroke input without echo.
// Returns a restore function that should be deferred to reset the terminal.
func EnableRawInput(fd int) (func(), error) {
	orig, err := unix.IoctlGetTermios(fd, unix.TIOCGETA)
	if err != nil {
		return nil, fmt.Errorf("failed to get terminal attributes: %w", err)
	}
	newState := *orig
	newState.Lflag &^= unix.ICANON | unix.ECHO
	newState.Cc[unix.VMIN] = 1
	newState.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TIOCSETA, &newState); err != nil {
		return nil, fmt.Errorf("failed to set terminal attributes: %w", err)
	}
	return func() {
		_ = unix.IoctlSetTermios(fd, unix.TIOCSETA, orig)
	}, nil
}
