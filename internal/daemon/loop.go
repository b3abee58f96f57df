package daemon

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// DefaultQueueSize bounds the number of pending loop tasks.
const DefaultQueueSize = 64

// ErrLoopStopped is returned by Do once the loop has exited.
var ErrLoopStopped = errors.New("event loop stopped")

// Loop runs posted functions one at a time on a single goroutine.
type Loop struct {
	logger *slog.Logger
	tasks  chan func()

	mu      sync.Mutex
	running bool
	doneCh  chan struct{}
}

// NewLoop creates a Loop with a queue of size entries.
func NewLoop(size int, logger *slog.Logger) *Loop {
	if logger == nil {
		logger = slog.Default()
	}
	if size <= 0 {
		size = DefaultQueueSize
	}
	return &Loop{
		logger: logger,
		tasks:  make(chan func(), size),
		doneCh: make(chan struct{}),
	}
}

// Run processes tasks until ctx is cancelled. Pending tasks are dropped.
func (l *Loop) Run(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.mu.Unlock()

	defer close(l.doneCh)
	l.logger.Debug("event loop started")

	for {
		select {
		case <-ctx.Done():
			l.logger.Debug("event loop stopped")
			return
		case fn := <-l.tasks:
			l.run(fn)
		}
	}
}

func (l *Loop) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("event loop task panicked", "panic", r)
		}
	}()
	fn()
}

// Post queues fn without waiting. It returns false if the queue is full or
// the loop has exited, in which case fn is dropped.
func (l *Loop) Post(fn func()) bool {
	select {
	case <-l.doneCh:
		return false
	default:
	}

	select {
	case l.tasks <- fn:
		return true
	default:
		l.logger.Warn("event loop queue full, dropping task")
		return false
	}
}

// Do runs fn on the loop and waits for it to finish.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	task := func() {
		defer close(done)
		fn()
	}

	select {
	case l.tasks <- task:
	case <-l.doneCh:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}

	select {
	case <-done:
		return nil
	case <-l.doneCh:
		return ErrLoopStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done is closed when Run returns.
func (l *Loop) Done() <-chan struct{} {
	return l.doneCh
}
