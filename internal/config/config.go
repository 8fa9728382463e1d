package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/jmagar/fifoattach/internal/helpers"
	"github.com/jmagar/fifoattach/internal/model"
	"github.com/jmagar/fifoattach/internal/ui"
)

// LoadedConfigPath tracks which config file was loaded, empty when defaults are used.
var LoadedConfigPath string

// SearchPaths returns the config file locations in priority order.
func SearchPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}
	return []string{
		"config.json",
		filepath.Join(homeDir, ".fifoattach", "config.json"),
		filepath.Join(homeDir, ".config", "fifoattach", "config.json"),
	}, nil
}

// ParseArgs parses CLI arguments using go-arg, exiting on --help or bad flags.
func ParseArgs() *model.Args {
	var args model.Args
	arg.MustParse(&args)
	return &args
}

// ParseArgsFrom parses the given argument list without touching os.Args.
func ParseArgsFrom(argv []string) (*model.Args, error) {
	var args model.Args
	p, err := arg.NewParser(arg.Config{Program: "fifoattach"}, &args)
	if err != nil {
		return nil, err
	}
	if err := p.Parse(argv); err != nil {
		return nil, err
	}
	return &args, nil
}

// Resolve reads the config file, overlays the CLI args and fills in defaults.
func Resolve(args *model.Args) (*model.Config, error) {
	cfg, err := ReadConfig()
	if err != nil {
		return nil, err
	}

	if args.Target != "" {
		cfg.Target = args.Target
	}
	if len(args.TargetArgs) > 0 {
		cfg.TargetArgs = args.TargetArgs
	}
	if args.Control != "" {
		cfg.ControlPath = args.Control
	}
	if args.Log != "" {
		cfg.LogPath = args.Log
	}
	if args.Poll != nil {
		cfg.PollInterval = *args.Poll
	}
	if args.Tail != nil {
		cfg.TailLines = *args.Tail
	}
	if args.Grace != nil {
		cfg.LaunchGrace = *args.Grace
	}
	cfg.AssumeYes = args.Yes
	cfg.NoLaunch = args.NoLaunch
	cfg.Verbose = args.Verbose

	if err := applyDefaults(cfg); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyDefaults(cfg *model.Config) error {
	cfg.Target = strings.TrimSpace(cfg.Target)
	if cfg.Target == "" {
		cfg.Target = model.DefaultTarget
	}
	if strings.TrimSpace(cfg.ControlPath) == "" {
		cfg.ControlPath = filepath.Join("~", ".config", cfg.Target, "ctl")
	}
	if strings.TrimSpace(cfg.LogPath) == "" {
		cacheDir, err := helpers.GetCacheDir()
		if err != nil {
			return err
		}
		cfg.LogPath = filepath.Join(cacheDir, cfg.Target+".log")
	}

	var err error
	if cfg.ControlPath, err = helpers.ExpandHome(strings.TrimSpace(cfg.ControlPath)); err != nil {
		return err
	}
	if cfg.LogPath, err = helpers.ExpandHome(strings.TrimSpace(cfg.LogPath)); err != nil {
		return err
	}
	return nil
}

// Validate rejects settings the supervisor cannot work with.
func Validate(cfg *model.Config) error {
	if cfg.Target == "" || strings.ContainsAny(cfg.Target, "/\x00") {
		return fmt.Errorf("invalid target process name %q", cfg.Target)
	}
	if err := helpers.ValidatePath(cfg.ControlPath); err != nil {
		return fmt.Errorf("control path: %w", err)
	}
	if err := helpers.ValidatePath(cfg.LogPath); err != nil {
		return fmt.Errorf("log path: %w", err)
	}
	if cfg.ControlPath == cfg.LogPath {
		return errors.New("control path and log path must differ")
	}
	if cfg.Poll() <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", cfg.PollInterval)
	}
	if cfg.TailLines < 0 {
		return fmt.Errorf("tail lines must not be negative, got %d", cfg.TailLines)
	}
	if cfg.Grace() < 0 {
		return fmt.Errorf("launch grace must not be negative, got %s", cfg.LaunchGrace)
	}
	return nil
}

// ReadConfig returns the defaults overlaid with the first config file found.
// A missing config file is not an error.
func ReadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	LoadedConfigPath = ""

	configPaths, err := SearchPaths()
	if err != nil {
		return nil, err
	}

	var data []byte
	var configPath string
	for _, path := range configPaths {
		data, err = os.ReadFile(path)
		if err == nil {
			configPath = path
			break
		}
		if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config at %s: %w", path, err)
		}
	}
	if data == nil {
		return &cfg, nil
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config at %s: %w", configPath, err)
	}
	LoadedConfigPath = configPath

	// The file may carry a Gotify token.
	if cfg.GotifyToken != "" {
		checkPermissions(configPath)
	}
	return &cfg, nil
}

func checkPermissions(configPath string) {
	fileInfo, err := os.Stat(configPath)
	if err != nil {
		return
	}
	mode := fileInfo.Mode()
	if mode.Perm()&0077 == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%s WARNING: Config file has insecure permissions (%04o)\n", ui.ColorYellow+ui.SymbolWarning+ui.ColorReset, mode.Perm())
	fmt.Fprintf(os.Stderr, "   File: %s\n", configPath)
	fmt.Fprintf(os.Stderr, "   Risk: Config contains a notification token and should only be readable by you\n")
	if runtime.GOOS == "windows" {
		fmt.Fprintf(os.Stderr, "   Windows ACLs in use; skipping chmod auto-fix\n\n")
		return
	}
	if chmodErr := os.Chmod(configPath, 0600); chmodErr != nil {
		fmt.Fprintf(os.Stderr, "   Auto-fix failed: %v\n", chmodErr)
		fmt.Fprintf(os.Stderr, "   Fix manually: chmod 600 %s\n\n", configPath)
	} else {
		fmt.Fprintf(os.Stderr, "   Auto-fix applied: chmod 600 %s\n\n", configPath)
	}
}
