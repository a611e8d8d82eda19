// Package request ties asynchronous fetches to the scope that issued them.
// Results are delivered on a single Loop goroutine and are dropped when the
// issuing scope was cancelled, superseded or closed in the meantime.
package request

import (
	"sync"

	"github.com/deemkeen/postbox/util"
)

// Loop is the one logical thread that applies dispatched actions and request
// continuations in FIFO order. Posted funcs must not block.
type Loop struct {
	mu      sync.Mutex
	pending []func()
	wake    chan struct{}
	done    chan struct{}
	closed  bool
}

func NewLoop() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post enqueues fn. It returns false once the loop is closed.
func (l *Loop) Post(fn func()) bool {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return false
	}
	l.pending = append(l.pending, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	return true
}

// Do runs fn on the loop and waits for it. It must not be called from the
// loop itself.
func (l *Loop) Do(fn func()) bool {
	finished := make(chan struct{})
	if !l.Post(func() {
		defer close(finished)
		fn()
	}) {
		return false
	}
	<-finished
	return true
}

// Close stops accepting work, runs what is already queued and waits for the
// loop goroutine to exit.
func (l *Loop) Close() {
	l.mu.Lock()
	alreadyClosed := l.closed
	l.closed = true
	l.mu.Unlock()

	if !alreadyClosed {
		select {
		case l.wake <- struct{}{}:
		default:
		}
	}
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	log := util.NewLogger("loop")

	for range l.wake {
		for {
			l.mu.Lock()
			batch := l.pending
			l.pending = nil
			closed := l.closed
			l.mu.Unlock()

			if len(batch) == 0 {
				if closed {
					return
				}
				break
			}
			for _, fn := range batch {
				exec(log, fn)
			}
		}
	}
}

func exec(log interface{ Errorf(string, ...interface{}) }, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Errorf("recovered from panic on loop: %v", r)
		}
	}()
	fn()
}
