// Package channel implements [BoundedChannel], a fixed-capacity FIFO
// producer/consumer queue with blocking Send and Receive, bounded-wait
// variants, and drain-then-fail close semantics.
//
// # Blocking model
//
// Send blocks while the buffer holds capacity items — backpressure is the
// contract, not an error. Receive blocks while the buffer is empty. Both
// check and mutate the buffer under the channel's single ExclusiveLock and
// park on a SignalGate (notFull / notEmpty) after releasing it; the gate's
// latched signal covers the gap, so no wakeup is ever missed.
//
// Because a gate wakes at most one waiter per signal, every state change
// chains the wakeup: a receiver that leaves items behind re-signals notEmpty
// for the next receiver, a sender that leaves room re-signals notFull, and a
// waiter that observes the channel closed re-signals its own gate so the
// close reaches every parked unit.
//
// # Close semantics
//
// After Close, sends fail with [synckit/pkg/syncerr.ErrClosed] while receives
// first drain the remaining items and only then fail — queued work is never
// silently dropped, and no receive blocks forever on a closed channel.
package channel
