// Package relay streams the target's output log to the terminal, starting
// with the last few lines and then following appended bytes.
package relay

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
	"github.com/jmagar/fifoattach/internal/logging"
)

// ErrLogGone is returned when the output log is removed or renamed while relaying.
var ErrLogGone = errors.New("output log disappeared")

const defaultPollInterval = 250 * time.Millisecond

// Relay copies new bytes from Path to Out.
type Relay struct {
	Path      string
	TailLines int
	Out       io.Writer
	Logger    *log.Logger
	// PollInterval is the fallback re-check period for filesystems that do
	// not deliver change events. Zero means 250ms.
	PollInterval time.Duration
}

// Run replays the tail of the log and then follows it until ctx is
// cancelled. It returns ErrLogGone or a read error if the log goes away.
func (r *Relay) Run(ctx context.Context) error {
	logger := logging.OrDiscard(r.Logger)

	f, err := os.Open(r.Path)
	if err != nil {
		return fmt.Errorf("open output log: %w", err)
	}
	defer f.Close()

	start, err := Tail(f, r.TailLines)
	if err != nil {
		return fmt.Errorf("find log tail: %w", err)
	}
	if _, err := f.Seek(start, io.SeekStart); err != nil {
		return fmt.Errorf("seek output log: %w", err)
	}
	if err := r.drain(f); err != nil {
		return err
	}

	var (
		events <-chan fsnotify.Event
		errs   <-chan error
	)
	watcher, err := fsnotify.NewWatcher()
	if err == nil {
		defer watcher.Close()
		if addErr := watcher.Add(r.Path); addErr != nil {
			logger.Debug("watch failed, polling output log", "path", r.Path, "err", addErr)
		} else {
			events, errs = watcher.Events, watcher.Errors
		}
	} else {
		logger.Debug("fsnotify unavailable, polling output log", "err", err)
	}

	interval := r.PollInterval
	if interval <= 0 {
		interval = defaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename) {
				return fmt.Errorf("%w: %s", ErrLogGone, r.Path)
			}
			if ev.Has(fsnotify.Write) {
				if err := r.drain(f); err != nil {
					return err
				}
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			logger.Debug("watcher error", "err", err)
		case <-ticker.C:
			if _, err := os.Stat(r.Path); os.IsNotExist(err) {
				return fmt.Errorf("%w: %s", ErrLogGone, r.Path)
			}
			if err := r.drain(f); err != nil {
				return err
			}
		}
	}
}

// drain copies everything from the current offset to EOF. A log that
// shrank below the offset was truncated and is read again from the start.
func (r *Relay) drain(f *os.File) error {
	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat output log: %w", err)
	}
	pos, err := f.Seek(0, io.SeekCurrent)
	if err != nil {
		return fmt.Errorf("seek output log: %w", err)
	}
	if info.Size() < pos {
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind output log: %w", err)
		}
	}
	if _, err := io.Copy(r.Out, f); err != nil {
		return fmt.Errorf("relay output: %w", err)
	}
	return nil
}
