// Package supervisor runs an attach session: it makes sure the control FIFO
// and the target exist, then relays output, forwards keystrokes and watches
// the target until the session is torn down.
package supervisor

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/dustin/go-humanize"
	"github.com/jmagar/fifoattach/internal/bridge"
	"github.com/jmagar/fifoattach/internal/fifo"
	"github.com/jmagar/fifoattach/internal/helpers"
	"github.com/jmagar/fifoattach/internal/liveness"
	"github.com/jmagar/fifoattach/internal/lock"
	"github.com/jmagar/fifoattach/internal/logging"
	"github.com/jmagar/fifoattach/internal/model"
	"github.com/jmagar/fifoattach/internal/notify"
	"github.com/jmagar/fifoattach/internal/relay"
	"github.com/jmagar/fifoattach/internal/runtime"
	"github.com/jmagar/fifoattach/internal/ui"
	"github.com/oklog/run"
)

const notifyTimeout = 5 * time.Second

// Supervisor owns one attach session.
type Supervisor struct {
	cfg      *model.Config
	finder   runtime.ProcessFinder
	launcher runtime.Launcher
	sink     bridge.Sink
	stdin    io.Reader
	stdout   io.Writer
	confirm  fifo.Confirmer
	signals  <-chan os.Signal
	notifier notify.Notifier
	logger   *log.Logger
	lockPath string

	input *bufio.Reader

	startOnce   sync.Once
	startErr    error
	attachedAt  time.Time
	mu          sync.Mutex
	launchedPID int
	lock        *lock.FileLock
	tasks       []*TaskHandle

	teardownOnce sync.Once
	teardownCh   chan struct{}
	cause        error
}

// Option customizes a Supervisor.
type Option func(*Supervisor)

// WithFinder sets the process lookup used for startup and liveness.
func WithFinder(f runtime.ProcessFinder) Option { return func(s *Supervisor) { s.finder = f } }

// WithLauncher sets how the target is started when it is not running.
func WithLauncher(l runtime.Launcher) Option { return func(s *Supervisor) { s.launcher = l } }

// WithSink replaces the control FIFO as the keystroke destination.
func WithSink(sink bridge.Sink) Option { return func(s *Supervisor) { s.sink = sink } }

// WithStdin sets the keystroke source.
func WithStdin(r io.Reader) Option { return func(s *Supervisor) { s.stdin = r } }

// WithStdout sets where the target's output is relayed.
func WithStdout(w io.Writer) Option { return func(s *Supervisor) { s.stdout = w } }

// WithConfirm sets the yes/no prompt used before creating the FIFO.
func WithConfirm(c fifo.Confirmer) Option { return func(s *Supervisor) { s.confirm = c } }

// WithSignals replaces OS signal registration with ch.
func WithSignals(ch <-chan os.Signal) Option { return func(s *Supervisor) { s.signals = ch } }

// WithNotifier sets the notification sent when the target terminates.
func WithNotifier(n notify.Notifier) Option { return func(s *Supervisor) { s.notifier = n } }

// WithLogger sets the diagnostic logger.
func WithLogger(l *log.Logger) Option { return func(s *Supervisor) { s.logger = l } }

// WithLockPath overrides the attach lock location.
func WithLockPath(path string) Option { return func(s *Supervisor) { s.lockPath = path } }

// New builds a Supervisor for cfg. Unset collaborators default to the real
// process table, a detached launcher, the control FIFO and the terminal.
func New(cfg *model.Config, opts ...Option) *Supervisor {
	s := &Supervisor{
		cfg:        cfg,
		stdin:      os.Stdin,
		stdout:     os.Stdout,
		teardownCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.finder == nil {
		s.finder = runtime.NewUserProcessFinder()
	}
	if s.launcher == nil {
		s.launcher = runtime.DetachedLauncher{}
	}
	if s.sink == nil {
		s.sink = fifo.NewChannel(cfg.ControlPath)
	}
	s.input = bufio.NewReader(s.stdin)
	if s.confirm == nil {
		s.confirm = func(question string) bool { return ui.Confirm(s.input, question) }
	}
	if cfg.AssumeYes {
		s.confirm = func(string) bool { return true }
	}
	if s.notifier == nil {
		s.notifier = notify.BuildNotifier(cfg.GotifyURL, cfg.GotifyToken, cfg.GotifyPriority)
	}
	s.logger = logging.OrDiscard(s.logger)
	return s
}

// Start prepares the session: control FIFO, attach lock, target process and
// output log, in that order. Nothing is launched when the FIFO is missing.
// Only the first call does any work; later calls return its result.
func (s *Supervisor) Start(ctx context.Context) error {
	s.startOnce.Do(func() {
		s.startErr = s.start(ctx)
	})
	return s.startErr
}

func (s *Supervisor) start(ctx context.Context) error {
	created, err := fifo.Ensure(s.cfg.ControlPath, s.confirm)
	if err != nil {
		return err
	}
	if created {
		ui.PrintSuccess(fmt.Sprintf("Created control FIFO %s", s.cfg.ControlPath))
	}

	lockPath, err := s.resolveLockPath()
	if err != nil {
		return err
	}
	fl, err := lock.Acquire(lockPath, 0)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.lock = fl
	s.mu.Unlock()

	if err := s.ensureTarget(ctx); err != nil {
		s.release()
		return err
	}
	if err := s.waitForLog(ctx); err != nil {
		s.release()
		return err
	}
	s.mu.Lock()
	s.attachedAt = time.Now()
	s.mu.Unlock()
	s.printBanner()
	return nil
}

func (s *Supervisor) resolveLockPath() (string, error) {
	if s.lockPath != "" {
		return s.lockPath, nil
	}
	cacheDir, err := helpers.GetCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, s.cfg.Target+".lock"), nil
}

func (s *Supervisor) ensureTarget(ctx context.Context) error {
	running, err := s.finder.Running(ctx, s.cfg.Target)
	if err != nil {
		return fmt.Errorf("failed to look up %s: %w", s.cfg.Target, err)
	}
	if running {
		s.logger.Debug("target already running", "target", s.cfg.Target)
		return nil
	}
	if s.cfg.NoLaunch {
		return fmt.Errorf("%w: %s", model.ErrTargetNotRunning, s.cfg.Target)
	}

	pid, err := s.launcher.Launch(s.cfg.Target, s.cfg.TargetArgs, s.cfg.LogPath)
	if err != nil {
		return fmt.Errorf("failed to launch %s: %w", s.cfg.Target, err)
	}
	s.mu.Lock()
	s.launchedPID = pid
	s.mu.Unlock()
	ui.PrintLaunch(fmt.Sprintf("Started %s (pid %d)", s.cfg.Target, pid))
	return nil
}

// waitForLog polls for the output log until the launch grace period runs
// out. A launched target is left running on failure.
func (s *Supervisor) waitForLog(ctx context.Context) error {
	deadline := time.Now().Add(s.cfg.Grace())
	for {
		exists, err := helpers.FileExists(s.cfg.LogPath)
		if err != nil {
			return fmt.Errorf("%w: %w", model.ErrStartupObservability, err)
		}
		if exists {
			return nil
		}
		if !time.Now().Before(deadline) {
			if pid := s.LaunchedPID(); pid > 0 && !runtime.IsProcessAlive(pid) {
				return fmt.Errorf("%w: %s exited (pid %d) before %s appeared", model.ErrStartupObservability, s.cfg.Target, pid, s.cfg.LogPath)
			}
			return fmt.Errorf("%w: %s did not appear within %s", model.ErrStartupObservability, s.cfg.LogPath, s.cfg.Grace())
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(model.LogWaitStep):
		}
	}
}

func (s *Supervisor) printBanner() {
	ui.PrintHeader("fifoattach: " + s.cfg.Target)
	ui.PrintKeyValue("Control", s.cfg.ControlPath, ui.ColorGreen)
	logValue := s.cfg.LogPath
	if info, err := os.Stat(s.cfg.LogPath); err == nil {
		logValue = fmt.Sprintf("%s (%s)", s.cfg.LogPath, humanize.Bytes(uint64(info.Size())))
	}
	ui.PrintKeyValue("Log", logValue, ui.ColorGreen)
	ui.PrintKeyValue("Liveness poll", s.cfg.Poll().String(), ui.ColorYellow)
	ui.PrintInfo(fmt.Sprintf("Press Ctrl-C to detach; %s keeps running", s.cfg.Target))
	ui.PrintDivider()
}

// Run starts the session and blocks until it is torn down. The returned
// error is the teardown cause.
func (s *Supervisor) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	defer s.release()

	signals, stopSignals := s.notifySignals()
	defer stopSignals()
	restore := s.enableRawInput()
	defer restore()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.forwardInput(ctx)

	var g run.Group
	g.Add(func() error {
		select {
		case <-s.teardownCh:
		case <-ctx.Done():
			s.Teardown(model.ErrInterrupted)
		}
		return s.Cause()
	}, func(error) {
		cancel()
	})

	sigCtx, sigCancel := context.WithCancel(ctx)
	g.Add(s.actor(func() error {
		select {
		case sig := <-signals:
			return run.SignalError{Signal: sig}
		case <-sigCtx.Done():
			return sigCtx.Err()
		}
	}), func(error) {
		sigCancel()
	})

	checker := &liveness.Checker{
		Name:     s.cfg.Target,
		Interval: s.cfg.Poll(),
		Finder:   s.finder,
		Notice:   ui.PrintWarning,
		Logger:   s.logger,
	}
	live := s.addTask(ctx, "liveness", checker.Run)
	g.Add(s.actor(live.execute), func(error) { live.Stop() })

	out := &relay.Relay{
		Path:      s.cfg.LogPath,
		TailLines: s.cfg.TailLines,
		Out:       s.stdout,
		Logger:    s.logger,
	}
	follow := s.addTask(ctx, "relay", func(ctx context.Context) error {
		err := out.Run(ctx)
		if err != nil && ctx.Err() == nil {
			s.logger.Warn("output relay stopped", "log", s.cfg.LogPath, "err", err)
			<-ctx.Done()
		}
		return nil
	})
	g.Add(s.actor(follow.execute), func(error) { follow.Stop() })

	_ = g.Run()

	cause := s.Cause()
	for _, task := range s.Tasks() {
		s.logger.Debug("task ended", "task", task.Name, "stopped", task.Stopped(), "err", task.Err())
	}
	s.logger.Debug("session torn down", "cause", cause)
	if errors.Is(cause, model.ErrTargetTerminated) {
		s.sendNotification()
	}
	return cause
}

// notifySignals returns the channel termination signals arrive on. OS
// signals are already registered when it returns, so a signal sent after
// raw input is enabled is always handled.
func (s *Supervisor) notifySignals() (<-chan os.Signal, func()) {
	if s.signals != nil {
		return s.signals, func() {}
	}
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, runtime.TerminationSignals()...)
	return ch, func() { signal.Stop(ch) }
}

// actor wraps a group member so that its result becomes the teardown cause
// when it is the first to finish.
func (s *Supervisor) actor(execute func() error) func() error {
	return func() error {
		err := execute()
		var sigErr run.SignalError
		switch {
		case errors.As(err, &sigErr):
			s.logger.Debug("signal received", "signal", sigErr.Signal)
			s.Teardown(model.ErrInterrupted)
		case err != nil && !errors.Is(err, context.Canceled):
			s.Teardown(err)
		}
		return err
	}
}

func (s *Supervisor) addTask(ctx context.Context, name string, fn func(context.Context) error) *TaskHandle {
	h := newTask(ctx, name, fn)
	s.mu.Lock()
	s.tasks = append(s.tasks, h)
	s.mu.Unlock()
	return h
}

// forwardInput runs the input bridge outside the group: a terminal read
// cannot be interrupted, so the goroutine ends with the process.
func (s *Supervisor) forwardInput(ctx context.Context) {
	err := bridge.New(s.input, s.sink, s.logger).Run(ctx)
	switch {
	case errors.Is(err, model.ErrInterrupted):
		s.Teardown(err)
	case err != nil && ctx.Err() == nil:
		s.logger.Debug("keystroke input closed", "err", err)
	}
}

func (s *Supervisor) enableRawInput() func() {
	f, ok := s.stdin.(*os.File)
	if !ok || !runtime.IsTerminal(int(f.Fd())) {
		return func() {}
	}
	restore, err := runtime.EnableRawInput(int(f.Fd()))
	if err != nil {
		s.logger.Warn("raw input unavailable, keystrokes are line buffered", "err", err)
		return func() {}
	}
	return restore
}

func (s *Supervisor) sendNotification() {
	if s.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()
	title := "fifoattach: " + s.cfg.Target
	if err := s.notifier(ctx, title, s.stopMessage()); err != nil {
		s.logger.Warn("notification failed", "err", err)
	}
}

func (s *Supervisor) stopMessage() string {
	s.mu.Lock()
	attachedAt, pid := s.attachedAt, s.launchedPID
	s.mu.Unlock()

	msg := fmt.Sprintf("%s stopped. Session attached %s.", s.cfg.Target, humanize.Time(attachedAt))
	if pid > 0 {
		msg += fmt.Sprintf(" It was started by this session as pid %d.", pid)
	}
	return msg
}

func (s *Supervisor) release() {
	s.mu.Lock()
	fl := s.lock
	s.lock = nil
	s.mu.Unlock()
	if err := fl.Release(); err != nil {
		s.logger.Warn("failed to release attach lock", "err", err)
	}
}

// Teardown ends the session. It may be called from any goroutine, any
// number of times; the first cause is kept.
func (s *Supervisor) Teardown(cause error) {
	s.teardownOnce.Do(func() {
		s.mu.Lock()
		s.cause = cause
		s.mu.Unlock()
		close(s.teardownCh)
	})
}

// Cause returns the teardown cause, or nil while the session is live.
func (s *Supervisor) Cause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cause
}

// Tasks returns the background task handles started by Run.
func (s *Supervisor) Tasks() []*TaskHandle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*TaskHandle(nil), s.tasks...)
}

// LaunchedPID returns the pid of the target started by this session, or 0.
func (s *Supervisor) LaunchedPID() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.launchedPID
}
