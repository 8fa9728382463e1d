//go:build windows

package fifo

import "errors"

func mkfifo(string, uint32) error {
	return errors.New("named pipes are not supported on this platform")
}
