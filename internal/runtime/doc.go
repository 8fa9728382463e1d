// Package runtime wraps the OS facilities an attach session needs: finding
// the target by name, launching it detached from the terminal, switching the
// terminal into single-keystroke input mode, and the set of signals that end
// a session.
package runtime
