package main

import (
	"fmt"
	"strings"

	"github.com/jmagar/fifoattach/internal/model"
	"github.com/jmagar/fifoattach/internal/ui"
)

func argsDescription() string {
	var b strings.Builder

	heading := func(title string) {
		fmt.Fprintf(&b, "\n%s◆ %s%s\n", ui.ColorBold, title, ui.ColorReset)
		fmt.Fprintf(&b, "%s─────────────────────────────────────────────────────────────────────────────%s\n", ui.ColorCyan, ui.ColorReset)
	}
	line := func(syntax, description string) {
		fmt.Fprintf(&b, "  %s•%s %s%-28s%s %s\n", ui.ColorGreen, ui.ColorReset, ui.ColorCyan, syntax, ui.ColorReset, description)
	}
	example := func(syntax string) {
		fmt.Fprintf(&b, "  %s▸%s %s%s%s\n", ui.ColorYellow, ui.ColorReset, ui.ColorCyan, syntax, ui.ColorReset)
	}

	fmt.Fprintf(&b, "%sAttach to a program controlled through a named pipe%s\n", ui.ColorBold, ui.ColorReset)

	heading("SESSION")
	line("keystrokes", "Forwarded to the control FIFO one at a time; Enter sends a newline")
	line("Ctrl-C / SIGTERM / SIGHUP", "Detach; the target keeps running")
	line("target exit", "Detected by polling the process table, ends the session")

	heading("DEFAULTS")
	line("target", model.DefaultTarget)
	line("control FIFO", "~/.config/<target>/ctl")
	line("output log", "~/.cache/fifoattach/<target>.log")
	line("poll interval", model.DefaultPollInterval.String())

	heading("EXAMPLES")
	example("fifoattach")
	example("fifoattach -t pianobar --tail 50")
	example("fifoattach --no-launch -c /tmp/player.ctl -l /tmp/player.log")

	heading("EXIT CODES")
	line("0", "Detached or target stopped")
	line(fmt.Sprint(model.ExitConfigurationMissing), "Control FIFO missing")
	line(fmt.Sprint(model.ExitStartupObservability), "Output log never appeared")
	line(fmt.Sprint(model.ExitAlreadyAttached), "Another session is attached")

	return b.String()
}
