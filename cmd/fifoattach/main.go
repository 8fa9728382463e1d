// Command fifoattach attaches the terminal to a long-running program that
// reads commands from a named pipe and writes its output to a log file.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jmagar/fifoattach/internal/completion"
	"github.com/jmagar/fifoattach/internal/config"
	"github.com/jmagar/fifoattach/internal/logging"
	"github.com/jmagar/fifoattach/internal/model"
	"github.com/jmagar/fifoattach/internal/supervisor"
	"github.com/jmagar/fifoattach/internal/ui"
)

func init() {
	model.ArgsDescriptionFunc = argsDescription
}

func main() {
	os.Exit(run())
}

func run() int {
	args := config.ParseArgs()
	if args.Completion != "" {
		if err := completion.Write(os.Stdout, args.Completion); err != nil {
			ui.PrintError(err.Error())
			return model.ExitFailure
		}
		return model.ExitOK
	}

	cfg, err := config.Resolve(args)
	if err != nil {
		ui.PrintError(fmt.Sprintf("Failed to parse config/args: %v", err))
		return model.ExitFailure
	}
	logger := logging.New(cfg.Verbose)
	if path := config.LoadedConfigPath; path != "" {
		logger.Debug("loaded config", "path", path)
	}

	err = supervisor.New(cfg, supervisor.WithLogger(logger)).Run(context.Background())
	code := model.ExitCodeFor(err)
	if code != model.ExitOK {
		ui.PrintError(err.Error())
	} else if err != nil {
		ui.PrintInfo(fmt.Sprintf("Detached (%v)", err))
	}
	return code
}
