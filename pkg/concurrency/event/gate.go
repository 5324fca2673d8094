package event

import (
	"time"

	"github.com/gammazero/deque"

	"synckit/pkg/concurrency/mutex"
)

// waiter is one blocked Wait call. The buffered token channel lets Set hand
// the signal over without blocking; abandoned marks timed-out waiters.
type waiter struct {
	token     chan struct{}
	abandoned bool
}

func newWaiter() *waiter {
	return &waiter{token: make(chan struct{}, 1)}
}

// SignalGate is an auto-resetting wake notification with a single pending
// slot. Set wakes at most one blocked waiter; if nobody is waiting the signal
// is remembered for exactly one future Wait. Multiple Sets before a Wait
// coalesce — the gate counts nothing.
//
// The check-and-block sequence in Wait runs under the gate's internal
// ExclusiveLock, so a Set that races with a Wait is never lost.
type SignalGate struct {
	lock     *mutex.ExclusiveLock
	signaled bool
	waiters  deque.Deque[*waiter]
}

// New creates an unsignaled gate.
func New(name string) *SignalGate {
	return &SignalGate{
		lock: mutex.New(name + "-gate"),
	}
}

// Set signals the gate: the longest-waiting blocked Wait is released, or, if
// none is blocked, the signal is latched for the next Wait. Set while a
// signal is already pending is a no-op.
func (g *SignalGate) Set() {
	g.lock.Acquire()
	g.setLocked()
	g.lock.Release()
}

// setLocked delivers the signal to the head waiter or latches it.
// Callers must hold g.lock.
func (g *SignalGate) setLocked() {
	for g.waiters.Len() > 0 {
		w := g.waiters.PopFront()
		if w.abandoned {
			continue
		}
		// The waiter consumes the signal directly; signaled stays false.
		w.token <- struct{}{}
		return
	}
	g.signaled = true
}

// Wait blocks the calling unit until the gate is signaled, consuming the
// signal before returning.
func (g *SignalGate) Wait() {
	g.lock.Acquire()
	if g.signaled {
		g.signaled = false
		g.lock.Release()
		return
	}

	w := newWaiter()
	g.waiters.PushBack(w)
	g.lock.Release()

	<-w.token
}

// WaitTimeout waits for a signal for at most the given duration. It returns
// true if a signal was consumed. On timeout it returns false and consumes
// nothing; a signal delivered in the race window between timer and token is
// forwarded as if Set had just been called.
//
// A non-positive timeout degenerates to a single non-blocking check.
func (g *SignalGate) WaitTimeout(timeout time.Duration) bool {
	g.lock.Acquire()
	if g.signaled {
		g.signaled = false
		g.lock.Release()
		return true
	}
	if timeout <= 0 {
		g.lock.Release()
		return false
	}

	w := newWaiter()
	g.waiters.PushBack(w)
	g.lock.Release()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.token:
		return true
	case <-timer.C:
	}

	g.lock.Acquire()
	select {
	case <-w.token:
		g.setLocked()
	default:
		w.abandoned = true
	}
	g.lock.Release()
	return false
}

// IsSet reports whether a signal is currently latched. The answer can be
// stale by the time the caller observes it; it exists for diagnostics and
// tests.
func (g *SignalGate) IsSet() bool {
	g.lock.Acquire()
	defer g.lock.Release()
	return g.signaled
}
