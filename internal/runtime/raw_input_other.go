//go:build !linux && !darwin && !dragonfly && !freebsd && !netbsd && !openbsd

package runtime

import (
	"fmt"

	"golang.org/x/term"
)

// EnableRawInput puts the terminal into full raw mode. ISIG is off here, so
// Ctrl-C reaches the reader as 0x03 instead of raising SIGINT.
func EnableRawInput(fd int) (func(), error) {
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enable raw input: %w", err)
	}
	return func() {
		_ = term.Restore(fd, state)
	}, nil
}
