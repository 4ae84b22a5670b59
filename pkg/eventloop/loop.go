// Package eventloop provides the single-consumer mailbox that serializes
// all control-plane work.
//
// The compositor drives one processing loop: state mutation, source
// registry updates, subscription changes, event fan-out and method
// dispatch all execute on it. Connection goroutines never touch shared
// state directly; they post closures and the loop runs them one at a
// time, which yields a total order over everything an external client
// can observe without any locking in the core packages.
package eventloop

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
)

// DefaultMailboxSize is the default capacity of the loop's mailbox.
const DefaultMailboxSize = 256

// ErrStopped is returned when posting to a loop that is not running.
var ErrStopped = errors.New("event loop stopped")

// Loop is a single-goroutine executor. All closures posted to it run
// sequentially on one goroutine, in post order.
type Loop struct {
	mailbox chan func()
	quit    chan struct{}
	done    chan struct{}

	started  atomic.Bool
	stopOnce sync.Once
}

// New creates a loop with the default mailbox capacity.
func New() *Loop {
	return NewWithSize(DefaultMailboxSize)
}

// NewWithSize creates a loop with a custom mailbox capacity.
func NewWithSize(size int) *Loop {
	return &Loop{
		mailbox: make(chan func(), size),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start begins processing the mailbox. It returns immediately; the loop
// runs until Stop is called or the context is cancelled.
func (l *Loop) Start(ctx context.Context) {
	if l.started.Swap(true) {
		return // Already running
	}

	go l.run(ctx)
}

// Stop stops the loop. Closures already in the mailbox are drained and
// executed before Stop returns; later posts fail with ErrStopped.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.quit)
		if l.started.Load() {
			<-l.done
		}
	})
}

// Post queues fn for execution on the loop. Safe to call from any
// goroutine, including from a closure already running on the loop.
func (l *Loop) Post(fn func()) error {
	select {
	case <-l.quit:
		return ErrStopped
	default:
	}

	select {
	case l.mailbox <- fn:
		return nil
	case <-l.quit:
		return ErrStopped
	}
}

// Call runs fn on the loop and blocks until it has executed.
// Must not be called from the loop goroutine itself; that would deadlock.
func (l *Loop) Call(fn func()) error {
	doneCh := make(chan struct{})
	err := l.Post(func() {
		defer close(doneCh)
		fn()
	})
	if err != nil {
		return err
	}

	select {
	case <-doneCh:
		return nil
	case <-l.done:
		// Loop stopped before draining our closure.
		select {
		case <-doneCh:
			return nil
		default:
			return ErrStopped
		}
	}
}

func (l *Loop) run(ctx context.Context) {
	defer close(l.done)

	for {
		select {
		case <-ctx.Done():
			l.drain()
			return
		case <-l.quit:
			l.drain()
			return
		case fn := <-l.mailbox:
			fn()
		}
	}
}

// drain executes everything already queued, without blocking.
func (l *Loop) drain() {
	for {
		select {
		case fn := <-l.mailbox:
			fn()
		default:
			return
		}
	}
}
