// Package pool implements [WorkerPool], a fixed-size set of long-lived
// execution units pulling tasks from a BoundedChannel.
//
// The pool owns nothing about how units are started, how time is read, or
// where failures go — [synckit/pkg/primitives.Spawner],
// [synckit/pkg/primitives.Clock] and [synckit/pkg/primitives.ErrorSink] are
// injected (with goroutine, system-clock and log-sink defaults), never
// hard-coded.
//
// # Lifecycle
//
// Running → Draining → Stopped. Submit blocks when the queue is full; that
// backpressure is the contract. Shutdown(drain=true) closes the queue and
// blocks until every queued task has been processed and all workers have
// exited — submitted work is never silently lost. Shutdown(drain=false)
// returns immediately: remaining queued tasks are discarded and only the
// item each worker is currently executing finishes (Draining is skipped).
//
// # Failure isolation
//
// A task that panics or returns an error is reported to the pool's ErrorSink
// with the task's id and name, and the worker that ran it moves on to the
// next item. One bad task never terminates the pool.
package pool
