// Package event implements [SignalGate], a single-slot auto-resetting wake
// notification.
//
// A gate is the toolkit's answer to the missed-wakeup problem: a Set with no
// waiter is latched for exactly one future Wait, and the check-and-block
// sequence in Wait happens under the gate's internal lock, so a signal can
// never fall between a waiter's check and its sleep. Pending signals
// coalesce — two Sets before a Wait release exactly one waiter.
//
// Gates make no ordering promise beyond "at most one waiter per signal";
// synckit's BoundedChannel builds its not-empty/not-full conditions from two
// of them.
package event
