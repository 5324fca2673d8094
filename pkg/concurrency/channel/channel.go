package channel

import (
	"time"

	"github.com/gammazero/deque"
	"github.com/sirupsen/logrus"

	"synckit/pkg/concurrency/event"
	"synckit/pkg/concurrency/mutex"
	"synckit/pkg/logging"
	"synckit/pkg/syncerr"
)

// BoundedChannel is a fixed-capacity FIFO queue for coordinating producers
// and consumers: Send blocks while the buffer is full (backpressure), Receive
// blocks while it is empty. Items are received in the order they were sent.
//
// The buffer is guarded by one ExclusiveLock; blocked producers and consumers
// park on two SignalGates (notFull, notEmpty). Every state check happens
// under the lock and every park happens after releasing it, with the gates'
// latched-signal semantics closing the missed-wakeup window in between.
type BoundedChannel[T any] struct {
	name     string
	capacity int

	lock *mutex.ExclusiveLock
	buf  deque.Deque[T]

	notEmpty *event.SignalGate
	notFull  *event.SignalGate

	closed bool

	log *logrus.Entry
}

// New creates an open channel with the given capacity. A non-positive
// capacity is a usage error and panics.
func New[T any](name string, capacity int) *BoundedChannel[T] {
	if capacity <= 0 {
		err := syncerr.New(syncerr.CategoryUsage, "INVALID_CAPACITY", "channel capacity must be positive")
		err.Component = "BoundedChannel"
		panic(err)
	}

	return &BoundedChannel[T]{
		name:     name,
		capacity: capacity,
		lock:     mutex.New(name + "-chan"),
		notEmpty: event.New(name + "-notempty"),
		notFull:  event.New(name + "-notfull"),
		log:      logging.WithComponent("channel").WithField("chan", name),
	}
}

// Send enqueues item, blocking while the channel is full. It returns
// ErrClosed if the channel is closed before the item could be enqueued.
func (c *BoundedChannel[T]) Send(item T) error {
	for {
		c.lock.Acquire()
		switch {
		case c.closed:
			c.lock.Release()
			// Cascade the wakeup so every other blocked sender also learns
			// about the close.
			c.notFull.Set()
			return c.closedErr("Send")
		case c.buf.Len() < c.capacity:
			c.insertLocked(item)
			return nil
		}
		c.lock.Release()
		c.notFull.Wait()
	}
}

// SendTimeout is Send with a bounded wait. It returns ErrTimeout if the
// channel stayed full for the whole duration, leaving the buffer unchanged.
func (c *BoundedChannel[T]) SendTimeout(item T, timeout time.Duration) error {
	deadline := time.Now().Add(timeout)

	for {
		c.lock.Acquire()
		switch {
		case c.closed:
			c.lock.Release()
			c.notFull.Set()
			return c.closedErr("SendTimeout")
		case c.buf.Len() < c.capacity:
			c.insertLocked(item)
			return nil
		}
		c.lock.Release()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return c.timeoutErr("SendTimeout")
		}
		c.notFull.WaitTimeout(remaining)
	}
}

// insertLocked appends the item, releases the lock, and signals the gates.
// Callers must hold c.lock; it is released on return.
func (c *BoundedChannel[T]) insertLocked(item T) {
	c.buf.PushBack(item)
	roomLeft := c.buf.Len() < c.capacity
	c.lock.Release()

	c.notEmpty.Set()
	if roomLeft {
		// Chain the wakeup to the next blocked sender; otherwise two sends
		// whose signals coalesced could leave a sender stranded while space
		// is free.
		c.notFull.Set()
	}
}

// Receive dequeues the oldest item, blocking while the channel is empty.
// Once the channel is closed and drained it returns the zero value and
// ErrClosed; pending receives never block forever on a closed channel.
func (c *BoundedChannel[T]) Receive() (T, error) {
	for {
		c.lock.Acquire()
		if c.buf.Len() > 0 {
			return c.removeLocked(), nil
		}
		if c.closed {
			c.lock.Release()
			c.notEmpty.Set()
			var zero T
			return zero, c.closedErr("Receive")
		}
		c.lock.Release()
		c.notEmpty.Wait()
	}
}

// ReceiveTimeout is Receive with a bounded wait. It returns ErrTimeout if the
// channel stayed empty for the whole duration.
func (c *BoundedChannel[T]) ReceiveTimeout(timeout time.Duration) (T, error) {
	deadline := time.Now().Add(timeout)

	for {
		c.lock.Acquire()
		if c.buf.Len() > 0 {
			return c.removeLocked(), nil
		}
		if c.closed {
			c.lock.Release()
			c.notEmpty.Set()
			var zero T
			return zero, c.closedErr("ReceiveTimeout")
		}
		c.lock.Release()

		remaining := time.Until(deadline)
		if remaining <= 0 {
			var zero T
			return zero, c.timeoutErr("ReceiveTimeout")
		}
		c.notEmpty.WaitTimeout(remaining)
	}
}

// removeLocked pops the head item, releases the lock, and signals the gates.
// Callers must hold c.lock; it is released on return.
func (c *BoundedChannel[T]) removeLocked() T {
	item := c.buf.PopFront()
	itemsLeft := c.buf.Len() > 0
	c.lock.Release()

	c.notFull.Set()
	if itemsLeft {
		// Chain the wakeup to the next blocked receiver.
		c.notEmpty.Set()
	}
	return item
}

// Close marks the channel closed. Blocked and future sends fail with
// ErrClosed; receives drain the remaining items and then fail with ErrClosed.
// Closing an already-closed channel returns ErrClosed.
func (c *BoundedChannel[T]) Close() error {
	c.lock.Acquire()
	if c.closed {
		c.lock.Release()
		return c.closedErr("Close")
	}
	c.closed = true
	remaining := c.buf.Len()
	c.lock.Release()

	c.log.WithField("remaining", remaining).Debug("channel closed")

	// Wake one waiter on each side; the woken waiters cascade the signal on.
	c.notEmpty.Set()
	c.notFull.Set()
	return nil
}

// IsClosed reports whether Close has been called.
func (c *BoundedChannel[T]) IsClosed() bool {
	c.lock.Acquire()
	defer c.lock.Release()
	return c.closed
}

// Len returns the number of items currently buffered.
func (c *BoundedChannel[T]) Len() int {
	c.lock.Acquire()
	defer c.lock.Release()
	return c.buf.Len()
}

// Cap returns the channel's fixed capacity.
func (c *BoundedChannel[T]) Cap() int {
	return c.capacity
}

func (c *BoundedChannel[T]) closedErr(op string) error {
	err := syncerr.New(syncerr.CategoryClosed, "CHANNEL_CLOSED", "channel is closed")
	err.Detail = c.name
	err.Operation = op
	err.Component = "BoundedChannel"
	return err
}

func (c *BoundedChannel[T]) timeoutErr(op string) error {
	err := syncerr.New(syncerr.CategoryTimeout, "CHANNEL_TIMEOUT", "wait timed out")
	err.Detail = c.name
	err.Operation = op
	err.Component = "BoundedChannel"
	return err
}
