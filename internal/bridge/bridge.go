// Package bridge forwards raw keystrokes from the terminal to the control
// channel, one write per keystroke.
package bridge

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/jmagar/fifoattach/internal/logging"
	"github.com/jmagar/fifoattach/internal/model"
)

// interruptByte is Ctrl-C as delivered by a terminal with ISIG disabled.
const interruptByte = 0x03

// Sink receives encoded keystrokes.
type Sink interface {
	Send(p []byte) error
}

// Bridge copies keystrokes from In to Sink.
type Bridge struct {
	In     io.Reader
	Sink   Sink
	Logger *log.Logger
}

// New returns a Bridge reading from in and writing to sink.
func New(in io.Reader, sink Sink, logger *log.Logger) *Bridge {
	return &Bridge{In: in, Sink: sink, Logger: logging.OrDiscard(logger)}
}

// Run forwards keystrokes until reading fails, Ctrl-C arrives as a byte
// (model.ErrInterrupted) or ctx is cancelled. Send failures are logged and
// the loop keeps going.
func (b *Bridge) Run(ctx context.Context) error {
	logger := logging.OrDiscard(b.Logger)
	r := bufio.NewReader(b.In)
	for {
		key, err := ReadKeystroke(r)
		if err != nil {
			return fmt.Errorf("read keystroke: %w", err)
		}
		if ctx.Err() != nil {
			return nil
		}
		if len(key) == 1 && key[0] == interruptByte {
			return model.ErrInterrupted
		}
		if err := b.Sink.Send(Encode(key)); err != nil {
			logger.Warn("keystroke not delivered", "key", fmt.Sprintf("%q", key), "err", err)
		}
	}
}

// ReadKeystroke reads one UTF-8 character, or one raw byte when the input
// is not valid UTF-8.
func ReadKeystroke(r *bufio.Reader) ([]byte, error) {
	ch, size, err := r.ReadRune()
	if err != nil {
		return nil, err
	}
	if ch == utf8.RuneError && size == 1 {
		if err := r.UnreadRune(); err != nil {
			return nil, err
		}
		raw, err := r.ReadByte()
		if err != nil {
			return nil, err
		}
		return []byte{raw}, nil
	}
	return utf8.AppendRune(nil, ch), nil
}

// Encode maps a keystroke to the bytes written to the control channel. The
// line-submission key produces no character of its own, so it is sent as a
// single newline; everything else is passed through verbatim.
func Encode(key []byte) []byte {
	if IsSubmit(key) {
		return []byte{'\n'}
	}
	return key
}

// IsSubmit reports whether key is the terminal's line-submission key.
func IsSubmit(key []byte) bool {
	return len(key) == 0 || (len(key) == 1 && (key[0] == '\r' || key[0] == '\n'))
}
