package mutex

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"synckit/pkg/logging"
	"synckit/pkg/syncerr"
)

var lockCounter int64

// waiter is one blocked acquirer. The grant channel is buffered so a release
// can hand the lock over without blocking; abandoned marks waiters that timed
// out and must be skipped when the queue is drained.
type waiter struct {
	grant     chan struct{}
	abandoned bool
}

func newWaiter() *waiter {
	return &waiter{grant: make(chan struct{}, 1)}
}

// ExclusiveLock is a non-reentrant binary mutual-exclusion primitive with
// FIFO handoff: a release passes ownership directly to the longest-waiting
// acquirer, so no acquirer can starve under contention.
//
// Non-reentrancy is deliberate — a unit that acquires a lock it already holds
// deadlocks. Release by a unit that does not hold the lock is a usage error
// and panics.
//
// Every lock carries a process-unique creation sequence number. The sequence
// defines the global acquisition order that OrderedLockSet enforces when
// several locks must be held together.
type ExclusiveLock struct {
	name string
	seq  int64

	mu      sync.Mutex
	held    bool
	waiters deque.Deque[*waiter]

	log *logrus.Entry
}

// New creates an unlocked ExclusiveLock. The name only appears in logs and
// error detail; the sequence number is assigned here and never changes.
func New(name string) *ExclusiveLock {
	seq := atomic.AddInt64(&lockCounter, 1)
	return &ExclusiveLock{
		name: name,
		seq:  seq,
		log:  logging.WithLock(name, seq),
	}
}

// Name returns the diagnostic name the lock was created with.
func (l *ExclusiveLock) Name() string {
	return l.name
}

// Seq returns the lock's creation sequence number, the basis of the global
// acquisition order.
func (l *ExclusiveLock) Seq() int64 {
	return l.seq
}

// Acquire blocks the calling unit until no other unit holds the lock, then
// marks it held by the caller.
func (l *ExclusiveLock) Acquire() {
	l.mu.Lock()
	if !l.held {
		l.held = true
		l.mu.Unlock()
		return
	}

	w := newWaiter()
	l.waiters.PushBack(w)
	l.mu.Unlock()

	l.log.Debug("lock contended, waiting")
	<-w.grant
}

// TryAcquire attempts to acquire the lock within the given timeout. It
// returns true on success. On timeout it returns false and leaves all state
// unchanged: the caller is removed from the wait queue, and a grant that
// races with the timeout is passed on to the next waiter.
//
// A non-positive timeout degenerates to a single non-blocking attempt.
func (l *ExclusiveLock) TryAcquire(timeout time.Duration) bool {
	l.mu.Lock()
	if !l.held {
		l.held = true
		l.mu.Unlock()
		return true
	}
	if timeout <= 0 {
		l.mu.Unlock()
		return false
	}

	w := newWaiter()
	l.waiters.PushBack(w)
	l.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.grant:
		return true
	case <-timer.C:
	}

	l.mu.Lock()
	select {
	case <-w.grant:
		// A release handed us the lock while the timer was firing. Pass
		// ownership along so the timeout leaves no trace.
		l.releaseLocked()
	default:
		w.abandoned = true
	}
	l.mu.Unlock()

	l.log.Debug("lock acquire timed out")
	return false
}

// Release transitions the lock to unlocked, waking exactly one blocked
// acquirer if any is queued. Calling Release without holding the lock is a
// usage error and panics.
func (l *ExclusiveLock) Release() {
	l.mu.Lock()
	if !l.held {
		l.mu.Unlock()
		err := syncerr.New(syncerr.CategoryUsage, "RELEASE_NOT_HELD", "release of unheld lock")
		err.Detail = l.name
		err.Operation = "Release"
		err.Component = "ExclusiveLock"
		panic(err)
	}
	l.releaseLocked()
	l.mu.Unlock()
}

// releaseLocked hands the lock to the longest-waiting live acquirer, or marks
// it unlocked when the queue is empty. Callers must hold l.mu and the lock
// itself.
func (l *ExclusiveLock) releaseLocked() {
	for l.waiters.Len() > 0 {
		w := l.waiters.PopFront()
		if w.abandoned {
			continue
		}
		// Direct handoff: held stays true, ownership moves to w.
		w.grant <- struct{}{}
		return
	}
	l.held = false
}

// IsHeld reports whether the lock is currently held. The answer can be stale
// by the time the caller observes it; it exists for diagnostics and tests.
func (l *ExclusiveLock) IsHeld() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}
