// Package logging builds the diagnostic logger shared by the session
// components. User-facing status lines go through internal/ui instead.
package logging

import (
	"io"
	"os"

	"github.com/charmbracelet/log"
)

// New returns a stderr logger at warn level, or debug level when verbose.
func New(verbose bool) *log.Logger {
	return NewWithWriter(os.Stderr, verbose)
}

// NewWithWriter is New with an explicit destination.
func NewWithWriter(w io.Writer, verbose bool) *log.Logger {
	level := log.WarnLevel
	if verbose {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Prefix:          "fifoattach",
		Level:           level,
		ReportTimestamp: verbose,
	})
}

// Discard returns a logger that drops everything.
func Discard() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{Level: log.FatalLevel})
}

// OrDiscard returns l, or a discarding logger when l is nil.
func OrDiscard(l *log.Logger) *log.Logger {
	if l == nil {
		return Discard()
	}
	return l
}
