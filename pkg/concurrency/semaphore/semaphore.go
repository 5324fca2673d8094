package semaphore

import (
	"time"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"synckit/pkg/concurrency/mutex"
	"synckit/pkg/logging"
	"synckit/pkg/syncerr"
)

// waiter is one blocked acquirer. A release hands a permit straight to the
// head of the queue through the buffered grant channel; abandoned marks
// waiters that timed out and must be skipped.
type waiter struct {
	grant     chan struct{}
	abandoned bool
}

func newWaiter() *waiter {
	return &waiter{grant: make(chan struct{}, 1)}
}

// CountingSemaphore is a bounded admission counter: at most max units hold a
// permit at any instant. Blocked acquirers are served in FIFO arrival order —
// an explicit wait queue, not whatever order the runtime happens to wake
// goroutines in — so no acquirer starves under contention.
type CountingSemaphore struct {
	name string
	max  int

	lock    *mutex.ExclusiveLock
	permits int
	waiters deque.Deque[*waiter]

	log *logrus.Entry
}

// New creates a semaphore with max permits, all initially available.
// A non-positive max is a usage error and panics.
func New(name string, max int) *CountingSemaphore {
	if max <= 0 {
		err := syncerr.New(syncerr.CategoryUsage, "INVALID_CAPACITY", "semaphore capacity must be positive")
		err.Component = "CountingSemaphore"
		panic(err)
	}

	return &CountingSemaphore{
		name:    name,
		max:     max,
		permits: max,
		lock:    mutex.New(name + "-sem"),
		log:     logging.WithComponent("semaphore").WithField("sem", name),
	}
}

// Acquire blocks the calling unit until a permit is available, then takes it.
func (s *CountingSemaphore) Acquire() {
	s.lock.Acquire()
	if s.permits > 0 {
		s.permits--
		s.lock.Release()
		return
	}

	w := newWaiter()
	s.waiters.PushBack(w)
	s.lock.Release()

	s.log.Debug("no permits available, waiting")
	<-w.grant
}

// TryAcquire attempts to take a permit within the given timeout, returning
// true on success. On timeout it returns false with all state unchanged; a
// permit granted in the race window between timer and grant is handed back.
//
// A non-positive timeout degenerates to a single non-blocking attempt.
func (s *CountingSemaphore) TryAcquire(timeout time.Duration) bool {
	s.lock.Acquire()
	if s.permits > 0 {
		s.permits--
		s.lock.Release()
		return true
	}
	if timeout <= 0 {
		s.lock.Release()
		return false
	}

	w := newWaiter()
	s.waiters.PushBack(w)
	s.lock.Release()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-w.grant:
		return true
	case <-timer.C:
	}

	s.lock.Acquire()
	select {
	case <-w.grant:
		// A release handed us a permit while the timer was firing.
		// Return it through the normal release path.
		s.releaseLocked()
	default:
		w.abandoned = true
	}
	s.lock.Release()

	s.log.Debug("acquire timed out")
	return false
}

// Release returns a permit, waking the longest-waiting acquirer if any is
// queued. Releasing when all max permits are already available is a usage
// error and panics: every release must correspond to a caller-held permit.
func (s *CountingSemaphore) Release() {
	s.lock.Acquire()
	if s.liveWaiters() == 0 && s.permits >= s.max {
		s.lock.Release()
		err := syncerr.New(syncerr.CategoryUsage, "SEMAPHORE_OVERFLOW", "release exceeds semaphore capacity")
		err.Detail = s.name
		err.Operation = "Release"
		err.Component = "CountingSemaphore"
		panic(err)
	}
	s.releaseLocked()
	s.lock.Release()
}

// releaseLocked hands the freed permit to the head of the wait queue, or
// returns it to the pool when no live waiter is queued. Callers must hold
// s.lock.
func (s *CountingSemaphore) releaseLocked() {
	for s.waiters.Len() > 0 {
		w := s.waiters.PopFront()
		if w.abandoned {
			continue
		}
		// Direct handoff: the permit count is unchanged, ownership of one
		// permit moves to w.
		w.grant <- struct{}{}
		return
	}
	s.permits++
}

// liveWaiters counts queued waiters that have not abandoned their request.
// Callers must hold s.lock.
func (s *CountingSemaphore) liveWaiters() int {
	n := 0
	for i := 0; i < s.waiters.Len(); i++ {
		if !s.waiters.At(i).abandoned {
			n++
		}
	}
	return n
}

// Available returns the number of permits currently free. The answer can be
// stale by the time the caller observes it.
func (s *CountingSemaphore) Available() int {
	s.lock.Acquire()
	defer s.lock.Release()
	return s.permits
}

// Limit returns the semaphore's maximum permit count.
func (s *CountingSemaphore) Limit() int {
	return s.max
}
