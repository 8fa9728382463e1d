//go:build !windows

package runtime

import (
	"os"
	"syscall"
)

// TerminationSignals are the signals that end an attach session.
func TerminationSignals() []os.Signal {
	return []os.Signal{syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM}
}
