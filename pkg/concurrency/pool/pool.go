package pool

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"synckit/pkg/concurrency/channel"
	"synckit/pkg/logging"
	"synckit/pkg/primitives"
	"synckit/pkg/syncerr"
)

// State is the pool's lifecycle phase.
type State int32

const (
	// Running accepts submissions and executes queued tasks.
	Running State = iota
	// Draining no longer accepts submissions; queued tasks are still run.
	// Only entered by Shutdown(drain=true).
	Draining
	// Stopped is terminal: every worker has observed the close and exited.
	Stopped
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case Draining:
		return "DRAINING"
	case Stopped:
		return "STOPPED"
	default:
		return fmt.Sprintf("STATE(%d)", int32(s))
	}
}

// WorkerPool runs submitted tasks on a fixed set of long-lived execution
// units fed from an internal BoundedChannel. Submit applies backpressure
// when the queue is full; Shutdown closes the queue and optionally drains it.
//
// A panic or error raised by a task is caught per item and forwarded to the
// pool's ErrorSink — one bad task never stops a worker or affects other items.
type WorkerPool struct {
	name    string
	workers int

	queue *channel.BoundedChannel[Task]

	spawn primitives.Spawner
	clock primitives.Clock
	sink  primitives.ErrorSink

	state   atomic.Int32
	shut    atomic.Bool
	discard atomic.Bool

	wg  sync.WaitGroup
	log *logrus.Entry
}

// Option configures a WorkerPool at construction.
type Option func(*WorkerPool)

// WithName sets the pool's diagnostic name used in logs and error reports.
func WithName(name string) Option {
	return func(p *WorkerPool) { p.name = name }
}

// WithSpawner replaces the primitive used to start worker execution units.
func WithSpawner(spawn primitives.Spawner) Option {
	return func(p *WorkerPool) { p.spawn = spawn }
}

// WithClock replaces the pool's time source.
func WithClock(clock primitives.Clock) Option {
	return func(p *WorkerPool) { p.clock = clock }
}

// WithErrorSink replaces the sink that receives isolated task failures.
func WithErrorSink(sink primitives.ErrorSink) Option {
	return func(p *WorkerPool) { p.sink = sink }
}

// New creates a pool with the given worker count and queue capacity and
// starts the workers immediately. Non-positive sizes are usage errors and
// panic. By default workers run on fresh goroutines, failures are logged
// through the toolkit logger, and the system clock is used.
func New(workers, queueCapacity int, opts ...Option) *WorkerPool {
	if workers <= 0 {
		panic(usageErr("INVALID_WORKERS", "worker count must be positive"))
	}
	if queueCapacity <= 0 {
		panic(usageErr("INVALID_CAPACITY", "queue capacity must be positive"))
	}

	p := &WorkerPool{
		name:    "pool",
		workers: workers,
		spawn:   primitives.GoSpawner,
		clock:   primitives.SystemClock{},
	}
	for _, opt := range opts {
		opt(p)
	}

	p.queue = channel.New[Task](p.name, queueCapacity)
	p.log = logging.WithPool(p.name, workers)
	if p.sink == nil {
		log := p.log
		p.sink = primitives.SinkFunc(func(err error) {
			log.WithField("error", err).Error("task failed")
		})
	}

	p.state.Store(int32(Running))
	for i := 0; i < workers; i++ {
		id := i
		p.wg.Add(1)
		p.spawn(func() { p.worker(id) })
	}

	p.log.Info("pool started")
	return p
}

// Submit enqueues a task for execution. It blocks while the queue is full —
// deliberate backpressure, not an error — and returns ErrShutdown once the
// pool has begun shutting down.
func (p *WorkerPool) Submit(t Task) error {
	if p.shut.Load() {
		return p.shutdownErr("Submit")
	}

	if err := p.queue.Send(t); err != nil {
		// The pool shut down while this submission was blocked on the queue.
		if errors.Is(err, syncerr.ErrClosed) {
			return p.shutdownErr("Submit")
		}
		return err
	}
	return nil
}

// SubmitFunc wraps fn as a task and submits it.
func (p *WorkerPool) SubmitFunc(name string, fn func() error) error {
	return p.Submit(NewTask(name, fn))
}

// Shutdown closes the pool's queue. With drain=true it blocks until every
// already-queued task has been processed and all workers have exited; with
// drain=false it returns immediately and remaining queued tasks are
// discarded, only the item each worker is currently executing finishes.
// Draining is entered only on the drain=true path; Stopped is reached once
// all workers have exited. A second Shutdown returns ErrShutdown.
func (p *WorkerPool) Shutdown(drain bool) error {
	if !p.shut.CompareAndSwap(false, true) {
		return p.shutdownErr("Shutdown")
	}

	if !drain {
		p.discard.Store(true)
	}

	p.log.WithField("drain", drain).Info("pool shutting down")
	if err := p.queue.Close(); err != nil {
		return err
	}

	if drain {
		p.state.Store(int32(Draining))
		p.wg.Wait()
		p.state.Store(int32(Stopped))
		p.log.Info("pool stopped")
		return nil
	}

	// Non-draining shutdown returns immediately; a watcher marks the pool
	// Stopped once the last worker has exited.
	p.spawn(func() {
		p.wg.Wait()
		p.state.Store(int32(Stopped))
		p.log.Info("pool stopped")
	})
	return nil
}

// State returns the pool's current lifecycle phase.
func (p *WorkerPool) State() State {
	return State(p.state.Load())
}

// Workers returns the configured worker count.
func (p *WorkerPool) Workers() int {
	return p.workers
}

// QueueDepth returns the number of tasks currently waiting in the queue.
func (p *WorkerPool) QueueDepth() int {
	return p.queue.Len()
}

// worker is the loop each execution unit runs: receive, execute, repeat,
// until the queue reports closed.
func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	log := p.log.WithField("worker", id)
	log.Debug("worker started")

	for {
		t, err := p.queue.Receive()
		if err != nil {
			log.Debug("worker exiting")
			return
		}
		if p.discard.Load() {
			log.WithField("task", t.Name()).Debug("discarding queued task")
			continue
		}
		p.runTask(t)
	}
}

// runTask executes one task, converting a panic or returned error into a
// report to the error sink. Failures never escape to the worker loop.
func (p *WorkerPool) runTask(t Task) {
	start := p.clock.Now()
	defer func() {
		p.log.WithFields(logrus.Fields{
			"task":    t.Name(),
			"elapsed": p.clock.Now().Sub(start),
		}).Debug("task finished")
	}()
	defer func() {
		if r := recover(); r != nil {
			err := syncerr.New(syncerr.CategoryTask, "TASK_PANIC", "task panicked")
			err.Detail = fmt.Sprintf("task %s (%s): %v", t.Name(), t.ID(), r)
			err.Operation = "runTask"
			err.Component = "WorkerPool"
			p.sink.Report(err)
		}
	}()

	if t.fn == nil {
		return
	}
	if err := t.fn(); err != nil {
		wrapped := syncerr.New(syncerr.CategoryTask, "TASK_FAILED", "task returned an error")
		wrapped.Detail = fmt.Sprintf("task %s (%s)", t.Name(), t.ID())
		wrapped.Operation = "runTask"
		wrapped.Component = "WorkerPool"
		wrapped.Cause = err
		p.sink.Report(wrapped)
	}
}

func (p *WorkerPool) shutdownErr(op string) error {
	err := syncerr.New(syncerr.CategoryClosed, "POOL_SHUTDOWN", "pool is shut down")
	err.Detail = p.name
	err.Operation = op
	err.Component = "WorkerPool"
	return err
}

func usageErr(code, message string) error {
	err := syncerr.New(syncerr.CategoryUsage, code, message)
	err.Component = "WorkerPool"
	return err
}
