// Package loop is the single-threaded cooperative event loop the engine runs
// on. Timer callbacks, DOM mutation and click deliveries, and external
// requests are all serialised through one goroutine, so engine state needs
// no locking.
package loop

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// Loop executes posted callbacks one at a time in FIFO order.
type Loop struct {
	clock  Clock
	logger *slog.Logger

	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// New creates a Loop. A nil clock means the wall clock.
func New(clock Clock, logger *slog.Logger) *Loop {
	if clock == nil {
		clock = Real()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loop{
		clock:  clock,
		logger: logger,
		wake:   make(chan struct{}, 1),
	}
}

// Clock returns the clock timers are scheduled on.
func (l *Loop) Clock() Clock { return l.clock }

// Post queues fn. Never blocks; safe from any goroutine.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// After queues fn once d has elapsed. The timer cannot be cancelled.
func (l *Loop) After(d time.Duration, fn func()) {
	l.clock.AfterFunc(d, func() { l.Post(fn) })
}

// Run processes callbacks until ctx is done.
func (l *Loop) Run(ctx context.Context) error {
	for {
		l.Drain()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}

// Drain runs queued callbacks on the calling goroutine until the queue is
// empty, including callbacks queued meanwhile. Returns how many ran.
func (l *Loop) Drain() int {
	n := 0
	for {
		l.mu.Lock()
		if len(l.queue) == 0 {
			l.mu.Unlock()
			return n
		}
		fn := l.queue[0]
		l.queue[0] = nil
		l.queue = l.queue[1:]
		l.mu.Unlock()

		l.runOne(fn)
		n++
	}
}

// Call runs fn on the loop and waits for it to finish.
func (l *Loop) Call(ctx context.Context, fn func()) error {
	done := make(chan struct{})
	l.Post(func() {
		defer close(done)
		fn()
	})
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("loop: call: %w", ctx.Err())
	}
}

func (l *Loop) runOne(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("loop: callback panicked", "panic", r)
		}
	}()
	fn()
}
