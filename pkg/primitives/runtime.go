package primitives

import "time"

// Clock supplies the monotonic time source used for deadline arithmetic in
// the timed acquire/wait variants. Injected so tests can observe or replace
// the toolkit's notion of time.
type Clock interface {
	Now() time.Time
}

// SystemClock is the default Clock backed by the runtime's monotonic clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// Spawner starts a new execution unit running fn. The toolkit never calls
// `go` directly for long-lived units; the host application supplies the
// spawning primitive (GoSpawner by default).
type Spawner func(fn func())

// GoSpawner runs fn on a fresh goroutine.
func GoSpawner(fn func()) {
	go fn()
}

// ErrorSink receives failures the toolkit isolates rather than propagates,
// such as a panic raised by a worker-pool task. Report must be safe for
// concurrent use.
type ErrorSink interface {
	Report(err error)
}

// SinkFunc adapts a plain function to the ErrorSink interface.
type SinkFunc func(err error)

func (f SinkFunc) Report(err error) {
	f(err)
}
