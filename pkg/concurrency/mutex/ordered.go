package mutex

import (
	"slices"
	"time"

	"synckit/pkg/logging"
	"synckit/pkg/primitives"
	"synckit/pkg/syncerr"
)

// OrderedLockSet enforces a global acquisition order over a fixed set of
// ExclusiveLocks. Deadlock requires a cycle in the wait-for graph; acquiring
// every multi-lock group through a single total order (the locks' creation
// sequence numbers) makes such a cycle impossible, as long as every call site
// goes through the set instead of acquiring the locks by hand.
//
// The set is immutable after construction: build it once from the locks that
// are used together, then reuse it at every call site.
type OrderedLockSet struct {
	locks []*ExclusiveLock
	clock primitives.Clock
}

// NewOrderedLockSet builds a set from the given locks, sorted into the global
// acquisition order. Passing no locks or the same lock twice is a usage error
// and panics: a duplicated entry means the caller would acquire a
// non-reentrant lock twice.
func NewOrderedLockSet(locks ...*ExclusiveLock) *OrderedLockSet {
	if len(locks) == 0 {
		panic(usageErr("EMPTY_LOCK_SET", "ordered lock set needs at least one lock", ""))
	}

	sorted := slices.Clone(locks)
	slices.SortFunc(sorted, func(a, b *ExclusiveLock) int {
		return int(a.Seq() - b.Seq())
	})

	for i := 1; i < len(sorted); i++ {
		if sorted[i].Seq() == sorted[i-1].Seq() {
			panic(usageErr("DUPLICATE_LOCK", "ordered lock set contains the same lock twice", sorted[i].Name()))
		}
	}

	return &OrderedLockSet{
		locks: sorted,
		clock: primitives.SystemClock{},
	}
}

// Locks returns the locks in the agreed acquisition order. Callers that
// iterate the set by hand must acquire strictly in this order and release in
// reverse.
func (s *OrderedLockSet) Locks() []*ExclusiveLock {
	return slices.Clone(s.locks)
}

// Len returns the number of locks in the set.
func (s *OrderedLockSet) Len() int {
	return len(s.locks)
}

// AcquireAll acquires every lock in the set in the global order, blocking at
// each step until that lock is available.
func (s *OrderedLockSet) AcquireAll() {
	for _, l := range s.locks {
		l.Acquire()
	}
}

// TryAcquireAll attempts the full ordered sequence within the given overall
// timeout. If any step times out, every lock already held by this call is
// released in reverse order and false is returned — the set never leaves a
// partial acquisition behind.
func (s *OrderedLockSet) TryAcquireAll(timeout time.Duration) bool {
	deadline := s.clock.Now().Add(timeout)

	for i, l := range s.locks {
		remaining := deadline.Sub(s.clock.Now())
		if !l.TryAcquire(remaining) {
			logging.WithLock(l.Name(), l.Seq()).Debug("ordered acquire timed out, rolling back")
			for j := i - 1; j >= 0; j-- {
				s.locks[j].Release()
			}
			return false
		}
	}
	return true
}

// ReleaseAll releases every lock in the set in reverse acquisition order.
// The caller must hold all of them.
func (s *OrderedLockSet) ReleaseAll() {
	for i := len(s.locks) - 1; i >= 0; i-- {
		s.locks[i].Release()
	}
}

func usageErr(code, message, detail string) error {
	err := syncerr.New(syncerr.CategoryUsage, code, message)
	err.Detail = detail
	err.Component = "OrderedLockSet"
	return err
}
