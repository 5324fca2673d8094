// Package mutex implements synckit's mutual-exclusion primitives:
// [ExclusiveLock], the toolkit's leaf lock, and [OrderedLockSet], the
// deadlock-avoidance protocol for holding several locks at once.
//
// # ExclusiveLock
//
// [ExclusiveLock] is a non-reentrant binary lock with three operations:
// [ExclusiveLock.Acquire], [ExclusiveLock.TryAcquire] (bounded wait) and
// [ExclusiveLock.Release]. Blocked acquirers are queued and served in FIFO
// arrival order; a release hands the lock directly to the head of the queue,
// so ownership never bounces through an unlocked state under contention and
// no acquirer can be starved by faster newcomers.
//
// Two behaviours are deliberate and worth restating:
//
//   - Non-reentrant: acquiring a lock the calling unit already holds
//     deadlocks. Correct scoping of critical sections is forced rather than
//     papered over.
//   - Release of an unheld lock panics with a usage error. The toolkit
//     cannot verify that the releasing goroutine is the holder (goroutines
//     carry no identity), but it always detects release of a lock nobody
//     holds.
//
// # OrderedLockSet
//
// Every ExclusiveLock is stamped with a process-unique creation sequence
// number. [OrderedLockSet] sorts a fixed group of locks by that sequence and
// only exposes whole-set operations — [OrderedLockSet.AcquireAll],
// [OrderedLockSet.TryAcquireAll] and [OrderedLockSet.ReleaseAll] — so the
// safe ordering convention is enforced by construction instead of documented
// and hoped for. TryAcquireAll is all-or-nothing: if any step times out,
// locks already taken by that call are rolled back in reverse order.
//
// # Invariants
//
//   - At most one holder at any instant.
//   - A unit that does not hold the lock may never release it.
//   - Waiters are granted the lock in arrival order.
//   - A timed-out TryAcquire leaves all shared state unchanged, even when
//     the grant races with the timer.
package mutex
