package model

import "errors"

// Sentinel errors for attach sessions.
var (
	// ErrConfigurationMissing is returned when the control FIFO is absent and
	// was not created, or exists but is not a FIFO.
	ErrConfigurationMissing = errors.New("control channel missing")
	// ErrStartupObservability is returned when the target's output log did not
	// show up within the launch grace period.
	ErrStartupObservability = errors.New("target output log not observable")
	// ErrTargetTerminated reports that the liveness checker no longer sees the target.
	ErrTargetTerminated = errors.New("target terminated")
	// ErrAlreadyAttached is returned when another session holds the attach lock.
	ErrAlreadyAttached = errors.New("another session is already attached")
	// ErrInterrupted reports a teardown requested by a signal or Ctrl-C.
	ErrInterrupted = errors.New("interrupted")
	// ErrTargetNotRunning is returned when launching is disabled and the target is absent.
	ErrTargetNotRunning = errors.New("target is not running")
)

// Process exit codes.
const (
	ExitOK                   = 0
	ExitFailure              = 1
	ExitConfigurationMissing = 3
	ExitStartupObservability = 4
	ExitAlreadyAttached      = 5
)

// ExitCodeFor maps a session result to the process exit code. Normal
// teardown causes (target gone, interrupt) exit with zero.
func ExitCodeFor(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrTargetTerminated), errors.Is(err, ErrInterrupted):
		return ExitOK
	case errors.Is(err, ErrConfigurationMissing):
		return ExitConfigurationMissing
	case errors.Is(err, ErrStartupObservability):
		return ExitStartupObservability
	case errors.Is(err, ErrAlreadyAttached):
		return ExitAlreadyAttached
	default:
		return ExitFailure
	}
}
