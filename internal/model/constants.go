package model

import (
	"fmt"
	"strings"
	"time"
)

const (
	// DefaultTarget is the program attached to when none is configured.
	DefaultTarget = "pianobar"
	// DefaultPollInterval is how often the liveness checker looks for the target.
	DefaultPollInterval = time.Second
	// DefaultTailLines is how much existing output is replayed on attach.
	DefaultTailLines = 30
	// DefaultLaunchGrace bounds the wait for the output log after a launch.
	DefaultLaunchGrace = 2 * time.Second
	// LogWaitStep is the retry step while waiting for the output log.
	LogWaitStep = 100 * time.Millisecond
)

// Duration is a time.Duration that reads "1s"-style strings from config
// files and command line flags.
type Duration time.Duration

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	s := strings.TrimSpace(string(text))
	if s == "" {
		*d = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d Duration) String() string { return time.Duration(d).String() }
