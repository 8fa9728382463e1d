// Package liveness polls for the target process by name and reports the
// first time it is no longer running.
package liveness

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/jmagar/fifoattach/internal/logging"
	"github.com/jmagar/fifoattach/internal/model"
	"github.com/jmagar/fifoattach/internal/runtime"
)

// Checker polls Finder every Interval.
type Checker struct {
	Name     string
	Interval time.Duration
	Finder   runtime.ProcessFinder
	// Notice is called once when the target is observed to be gone.
	Notice func(msg string)
	Logger *log.Logger
}

// Run polls until the target is absent, returning model.ErrTargetTerminated,
// or until ctx is cancelled, returning nil. The first poll happens one
// interval after Run starts. Absence is trusted on first sight; a failed
// lookup is logged and counts as still running.
func (c *Checker) Run(ctx context.Context) error {
	logger := logging.OrDiscard(c.Logger)
	interval := c.Interval
	if interval <= 0 {
		interval = model.DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}

		running, err := c.Finder.Running(ctx, c.Name)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Warn("liveness check failed", "target", c.Name, "err", err)
			continue
		}
		logger.Debug("liveness check", "target", c.Name, "running", running)
		if running {
			continue
		}

		if c.Notice != nil {
			c.Notice(fmt.Sprintf("%s is no longer running", c.Name))
		}
		return model.ErrTargetTerminated
	}
}
