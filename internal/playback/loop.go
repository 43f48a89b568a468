package playback

import (
	"context"
	"errors"
	"sync"
)

// Loop is a single-goroutine FIFO task runner. Post is safe from any
// goroutine; tasks run one at a time on the goroutine that called Run, so
// they may touch session state without locking.
type Loop struct {
	mu     sync.Mutex
	tasks  []func()
	closed bool
	signal chan struct{} // buffered, size 1; closed on Stop
	done   chan struct{}
}

func NewLoop() *Loop {
	return &Loop{
		tasks:  make([]func(), 0, 16),
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
}

// Post queues task and reports false if the loop has been stopped.
func (l *Loop) Post(task func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return false
	}
	l.tasks = append(l.tasks, task)

	select {
	case l.signal <- struct{}{}:
	default:
	}
	return true
}

func (l *Loop) next() (func(), bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.tasks) == 0 {
		return nil, false
	}
	task := l.tasks[0]
	l.tasks[0] = nil
	if len(l.tasks) == 1 {
		l.tasks = l.tasks[:0]
	} else {
		l.tasks = l.tasks[1:]
	}
	return task, true
}

// Run executes tasks until ctx is cancelled or Stop is called; tasks queued
// before Stop still run. A task that panics with *InvariantError stops the
// loop and the error is returned. Run must be called from exactly one
// goroutine.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer close(l.done)
	defer func() {
		if r := recover(); r != nil {
			inv, ok := r.(*InvariantError)
			if !ok {
				panic(r)
			}
			l.Stop()
			err = inv
		}
	}()

	for {
		if task, ok := l.next(); ok {
			task()
			continue
		}

		select {
		case <-ctx.Done():
			l.Stop()
			return ctx.Err()
		case <-l.signal:
			l.mu.Lock()
			finished := l.closed && len(l.tasks) == 0
			l.mu.Unlock()
			if finished {
				return nil
			}
		}
	}
}

// Do runs fn on the loop and waits for it. It must not be called from a
// task, which would deadlock.
func (l *Loop) Do(ctx context.Context, fn func()) error {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return ErrSessionClosed
	}

	select {
	case <-finished:
		return nil
	case <-l.done:
		select {
		case <-finished:
			return nil
		default:
			return ErrSessionClosed
		}
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop closes the queue. Safe to call more than once and from a task.
func (l *Loop) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}
	l.closed = true
	close(l.signal)
}

// Done is closed once Run has returned.
func (l *Loop) Done() <-chan struct{} {
	return l.done
}

func isClosed(err error) bool {
	return errors.Is(err, ErrSessionClosed)
}
