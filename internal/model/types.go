package model

import "time"

// Config holds the resolved configuration for one attach session.
type Config struct {
	Target         string   `json:"target"`
	TargetArgs     []string `json:"targetArgs,omitempty"`
	ControlPath    string   `json:"controlPath,omitempty"`
	LogPath        string   `json:"logPath,omitempty"`
	PollInterval   Duration `json:"pollInterval,omitempty"`
	TailLines      int      `json:"tailLines"`
	LaunchGrace    Duration `json:"launchGrace,omitempty"`
	GotifyURL      string   `json:"gotifyUrl,omitempty"`
	GotifyToken    string   `json:"gotifyToken,omitempty"`
	GotifyPriority int      `json:"gotifyPriority,omitempty"`

	// Runtime-only switches taken from the command line.
	AssumeYes bool `json:"-"`
	NoLaunch  bool `json:"-"`
	Verbose   bool `json:"-"`
}

// DefaultConfig returns the built-in settings used when no config file is found.
func DefaultConfig() Config {
	return Config{
		Target:         DefaultTarget,
		PollInterval:   Duration(DefaultPollInterval),
		TailLines:      DefaultTailLines,
		LaunchGrace:    Duration(DefaultLaunchGrace),
		GotifyPriority: 5,
	}
}

// Poll returns the liveness poll interval.
func (c *Config) Poll() time.Duration { return time.Duration(c.PollInterval) }

// Grace returns how long to wait for the output log after launching the target.
func (c *Config) Grace() time.Duration { return time.Duration(c.LaunchGrace) }

// ArgsDescriptionFunc is set by cmd/fifoattach to provide colored help text.
// If nil, Description() returns an empty string (go-arg will use default help).
var ArgsDescriptionFunc func() string

// Args holds CLI arguments parsed by go-arg.
type Args struct {
	TargetArgs []string  `arg:"positional" help:"arguments passed to the target when it has to be launched"`
	Target     string    `arg:"-t,--target" help:"process name of the target program"`
	Control    string    `arg:"-c,--control" help:"path of the control FIFO"`
	Log        string    `arg:"-l,--log" help:"path of the target's output log"`
	Poll       *Duration `arg:"--poll" help:"liveness poll interval (e.g. 1s, 500ms)"`
	Tail       *int      `arg:"-n,--tail" help:"number of log lines shown on attach"`
	Grace      *Duration `arg:"--grace" help:"how long to wait for the output log after launch"`
	Yes        bool      `arg:"-y,--yes" help:"create a missing control FIFO without asking"`
	NoLaunch   bool      `arg:"--no-launch" help:"only attach to an already running target"`
	Verbose    bool      `arg:"-v,--verbose" help:"print diagnostic logging to stderr"`
	Completion string    `arg:"--completion" placeholder:"SHELL" help:"print a completion script (bash, zsh, fish) and exit"`
}

// Description provides custom help text for go-arg.
func (Args) Description() string {
	if ArgsDescriptionFunc != nil {
		return ArgsDescriptionFunc()
	}
	return ""
}
