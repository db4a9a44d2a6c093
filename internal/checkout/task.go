package checkout

import (
	"context"
	"sync"

	"github.com/go-faster/errors"
	"github.com/jonboulle/clockwork"
)

// ErrCancelled is returned by Wait for a cancelled task.
var ErrCancelled = errors.New("checkout cancelled")

type taskState int

const (
	taskPending taskState = iota
	taskCompleted
	taskCancelled
)

// Task is a pending order. It either completes after the processing delay
// or is cancelled before that, in which case the cart is left untouched.
type Task struct {
	done     chan struct{}
	timer    clockwork.Timer
	onCancel func()

	mu    sync.Mutex
	state taskState
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

// Done is closed once the task completed or was cancelled.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes or ctx is done.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == taskCancelled {
		return ErrCancelled
	}
	return nil
}

// Cancel stops a pending task. It reports false if the task already
// finished.
func (t *Task) Cancel() bool {
	t.mu.Lock()
	if t.state != taskPending {
		t.mu.Unlock()
		return false
	}
	t.state = taskCancelled
	if t.timer != nil {
		t.timer.Stop()
	}
	t.mu.Unlock()

	if t.onCancel != nil {
		t.onCancel()
	}
	close(t.done)
	return true
}

func (t *Task) setTimer(timer clockwork.Timer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = timer
}

// complete runs fn unless the task was cancelled.
func (t *Task) complete(fn func()) bool {
	t.mu.Lock()
	if t.state != taskPending {
		t.mu.Unlock()
		return false
	}
	t.state = taskCompleted
	t.mu.Unlock()

	fn()
	close(t.done)
	return true
}
