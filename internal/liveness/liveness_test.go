package liveness

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jmagar/fifoattach/internal/model"
)

// fakeFinder reports the target as running until Kill is called.
type fakeFinder struct {
	mu     sync.Mutex
	dead   bool
	diedAt time.Time
	calls  atomic.Int32
	err    error
}

func (f *fakeFinder) Running(context.Context, string) (bool, error) {
	f.calls.Add(1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	return !f.dead, nil
}

func (f *fakeFinder) Kill() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.dead = true
	f.diedAt = time.Now()
}

func (f *fakeFinder) setErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.err = err
}

func TestRun_DetectsTerminationWithinOneInterval(t *testing.T) {
	const interval = 100 * time.Millisecond
	finder := &fakeFinder{}
	var notices []string
	c := &Checker{
		Name:     "pianobar",
		Interval: interval,
		Finder:   finder,
		Notice:   func(msg string) { notices = append(notices, msg) },
	}

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()

	time.Sleep(3*interval + interval/2)
	finder.Kill()

	select {
	case err := <-done:
		if !errors.Is(err, model.ErrTargetTerminated) {
			t.Fatalf("expected ErrTargetTerminated, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("checker did not notice termination")
	}

	finder.mu.Lock()
	lag := time.Since(finder.diedAt)
	finder.mu.Unlock()
	if lag > 2*interval {
		t.Fatalf("termination noticed after %s, expected within %s", lag, 2*interval)
	}
	if len(notices) != 1 || notices[0] != "pianobar is no longer running" {
		t.Fatalf("expected exactly one notice, got %q", notices)
	}
}

func TestRun_FirstPollWaitsOneInterval(t *testing.T) {
	const interval = 150 * time.Millisecond
	finder := &fakeFinder{}
	finder.Kill()
	c := &Checker{Name: "pianobar", Interval: interval, Finder: finder}

	start := time.Now()
	if err := c.Run(context.Background()); !errors.Is(err, model.ErrTargetTerminated) {
		t.Fatalf("expected ErrTargetTerminated, got %v", err)
	}
	if elapsed := time.Since(start); elapsed < interval {
		t.Fatalf("absence reported after %s, before one poll interval (%s)", elapsed, interval)
	}
	if got := finder.calls.Load(); got != 1 {
		t.Fatalf("expected a single poll, got %d", got)
	}
}

func TestRun_CancelReturnsNil(t *testing.T) {
	finder := &fakeFinder{}
	ctx, cancel := context.WithCancel(context.Background())
	c := &Checker{Name: "pianobar", Interval: 10 * time.Millisecond, Finder: finder}

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil on cancel, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("checker did not stop on cancel")
	}
	if finder.calls.Load() == 0 {
		t.Fatalf("expected the checker to have polled before cancel")
	}
}

func TestRun_LookupErrorIsNotAbsence(t *testing.T) {
	finder := &fakeFinder{}
	finder.setErr(errors.New("permission denied"))
	ctx, cancel := context.WithCancel(context.Background())
	c := &Checker{Name: "pianobar", Interval: 10 * time.Millisecond, Finder: finder}

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()

	for finder.calls.Load() < 3 {
		time.Sleep(5 * time.Millisecond)
	}
	select {
	case err := <-done:
		t.Fatalf("checker stopped on lookup errors: %v", err)
	default:
	}

	finder.setErr(nil)
	finder.Kill()
	select {
	case err := <-done:
		if !errors.Is(err, model.ErrTargetTerminated) {
			t.Fatalf("expected ErrTargetTerminated, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("checker did not notice termination")
	}
	cancel()
}
