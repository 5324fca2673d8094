package event

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSetBeforeWait_Latched(t *testing.T) {
	g := New("latch")

	g.Set()
	if !g.IsSet() {
		t.Fatal("signal should be latched when nobody waits")
	}

	// Wait consumes without blocking.
	done := make(chan struct{})
	go func() {
		g.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not consume a latched signal")
	}

	if g.IsSet() {
		t.Fatal("signal should be consumed by Wait (auto-reset)")
	}
}

func TestSet_Coalesces(t *testing.T) {
	g := New("coalesce")

	g.Set()
	g.Set()
	g.Set()

	if !g.WaitTimeout(time.Second) {
		t.Fatal("first Wait should consume the pending signal")
	}
	if g.WaitTimeout(10 * time.Millisecond) {
		t.Fatal("multiple Sets must coalesce into a single pending signal")
	}
}

func TestSet_WakesExactlyOneWaiter(t *testing.T) {
	g := New("one-waiter")

	var woken int32
	var wg sync.WaitGroup
	for i := 0; i < 3; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if g.WaitTimeout(200 * time.Millisecond) {
				atomic.AddInt32(&woken, 1)
			}
		}()
	}

	time.Sleep(20 * time.Millisecond) // let all three block
	g.Set()
	wg.Wait()

	if n := atomic.LoadInt32(&woken); n != 1 {
		t.Fatalf("expected exactly one waiter woken, got %d", n)
	}
}

func TestWaitTimeout_NoSignal(t *testing.T) {
	g := New("timeout")

	start := time.Now()
	if g.WaitTimeout(25 * time.Millisecond) {
		t.Fatal("WaitTimeout should fail with no signal")
	}
	if time.Since(start) < 25*time.Millisecond {
		t.Error("WaitTimeout returned before the timeout elapsed")
	}

	if g.WaitTimeout(0) {
		t.Fatal("non-blocking check should fail with no signal")
	}

	// A timed-out wait consumed nothing: a later Set still reaches a waiter.
	g.Set()
	if !g.WaitTimeout(time.Second) {
		t.Fatal("signal after timed-out wait was lost")
	}
}

func TestNoMissedWakeup(t *testing.T) {
	// A Set racing a Wait must always be observed. Tight loop, thousands of
	// iterations, zero lost signals.
	const iterations = 5000

	g := New("race")

	for i := 0; i < iterations; i++ {
		done := make(chan bool)
		go func() {
			done <- g.WaitTimeout(5 * time.Second)
		}()
		g.Set()

		if !<-done {
			t.Fatalf("iteration %d: signal lost in Set/Wait race", i)
		}
	}
}

func TestWaitTimeout_RaceForwardsSignal(t *testing.T) {
	// A signal that lands exactly as the timer fires must be forwarded, not
	// swallowed: after the race the gate must still deliver one signal.
	for i := 0; i < 300; i++ {
		g := New("forward")

		done := make(chan bool)
		go func() {
			done <- g.WaitTimeout(time.Millisecond)
		}()

		time.Sleep(time.Millisecond)
		g.Set()

		if <-done {
			// Waiter consumed it; nothing pending.
			if g.IsSet() {
				t.Fatalf("iteration %d: signal duplicated", i)
			}
			continue
		}

		// Waiter timed out; the signal must still be pending (or already
		// latched) for the next wait.
		if !g.WaitTimeout(time.Second) {
			t.Fatalf("iteration %d: racing signal swallowed by timed-out wait", i)
		}
	}
}

func BenchmarkSetWait(b *testing.B) {
	g := New("bench")
	for i := 0; i < b.N; i++ {
		g.Set()
		g.Wait()
	}
}
