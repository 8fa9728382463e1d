// Package fifo manages the control channel: a named pipe the target program
// reads commands from.
package fifo

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmagar/fifoattach/internal/helpers"
	"github.com/jmagar/fifoattach/internal/model"
)

// Confirmer asks the user a yes/no question.
type Confirmer func(question string) bool

// Ensure makes sure a FIFO exists at path. A missing FIFO is created only
// after confirm agrees. Returns true when the FIFO was created by this call.
// Every failure wraps model.ErrConfigurationMissing.
func Ensure(path string, confirm Confirmer) (bool, error) {
	exists, isFIFO, err := helpers.IsFIFO(path)
	if err != nil {
		return false, fmt.Errorf("%w: stat %s: %w", model.ErrConfigurationMissing, path, err)
	}
	if exists {
		if !isFIFO {
			return false, fmt.Errorf("%w: %s exists but is not a named pipe", model.ErrConfigurationMissing, path)
		}
		return false, nil
	}

	if confirm == nil || !confirm(fmt.Sprintf("Control FIFO %s does not exist. Create it?", path)) {
		return false, fmt.Errorf("%w: %s was not created", model.ErrConfigurationMissing, path)
	}
	if err := helpers.MakeDirs(filepath.Dir(path)); err != nil {
		return false, fmt.Errorf("%w: create directory for %s: %w", model.ErrConfigurationMissing, path, err)
	}
	if err := mkfifo(path, 0600); err != nil {
		return false, fmt.Errorf("%w: mkfifo %s: %w", model.ErrConfigurationMissing, path, err)
	}
	return true, nil
}

// Channel writes to the control FIFO. Each Send opens, writes and closes the
// pipe so the reader sees every write as its own burst.
type Channel struct {
	Path string
}

// NewChannel returns a Channel for the FIFO at path.
func NewChannel(path string) *Channel {
	return &Channel{Path: path}
}

// Send writes p to the FIFO. Opening blocks until the target has the pipe
// open for reading.
func (c *Channel) Send(p []byte) error {
	f, err := os.OpenFile(c.Path, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("open control channel: %w", err)
	}
	if _, err := f.Write(p); err != nil {
		f.Close()
		return fmt.Errorf("write control channel: %w", err)
	}
	return f.Close()
}
