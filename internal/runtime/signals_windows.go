//go:build windows

package runtime

import "os"

// TerminationSignals are the signals that end an attach session.
func TerminationSignals() []os.Signal {
	return []os.Signal{os.Interrupt}
}
