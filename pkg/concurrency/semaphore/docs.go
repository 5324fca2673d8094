// Package semaphore implements [CountingSemaphore], synckit's admission
// control primitive: a counter of permits in [0, max] with a FIFO queue of
// blocked acquirers.
//
// The semaphore is built on the toolkit's own [synckit/pkg/concurrency/mutex]
// lock plus an explicit wait queue. FIFO fairness is part of the contract,
// not an accident of scheduling: a release hands the freed permit directly to
// the longest-waiting acquirer, so permits cannot be snatched by newly
// arriving units while older ones wait.
//
// Releasing a permit nobody holds (all max permits already free) is a usage
// error and panics — releases must map one-to-one onto caller-held permits.
// Timed-out TryAcquire calls leave the permit count and queue exactly as if
// the caller had never asked.
package semaphore
