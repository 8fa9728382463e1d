package supervisor

import (
	"context"
	"sync"
)

// TaskHandle tracks one background task of an attach session.
type TaskHandle struct {
	Name string

	fn       func(context.Context) error
	ctx      context.Context
	cancel   context.CancelFunc
	done     chan struct{}
	err      error
	stopped  bool
	stopOnce sync.Once
}

func newTask(parent context.Context, name string, fn func(context.Context) error) *TaskHandle {
	ctx, cancel := context.WithCancel(parent)
	return &TaskHandle{
		Name:   name,
		fn:     fn,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// execute runs the task on the calling goroutine.
func (h *TaskHandle) execute() error {
	defer close(h.done)
	h.err = h.fn(h.ctx)
	h.stopped = h.ctx.Err() != nil
	return h.err
}

// Stop cancels the task. Only the first call has an effect and Stop never
// waits, so stopping a task that already returned is harmless.
func (h *TaskHandle) Stop() {
	h.stopOnce.Do(h.cancel)
}

// Done is closed once the task has returned.
func (h *TaskHandle) Done() <-chan struct{} { return h.done }

// Err returns the task's result, or nil while it is running.
func (h *TaskHandle) Err() error {
	select {
	case <-h.done:
		return h.err
	default:
		return nil
	}
}

// Stopped reports whether the task returned because it was cancelled rather
// than finishing on its own. False while it is running.
func (h *TaskHandle) Stopped() bool {
	select {
	case <-h.done:
		return h.stopped
	default:
		return false
	}
}
