package cpucore

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// TestStartExclusiveExcludesRunningCPU drives a CPU through a tight
// ExecStart/ExecEnd loop on its own goroutine while repeatedly entering
// and leaving an exclusive section from the test goroutine, and checks
// that the spinner is never observed running while the barrier holder
// is inside its critical section.
func TestStartExclusiveExcludesRunningCPU(t *testing.T) {
	c := NewCoordinator(NewBQL())
	cpu := newTestCPU(t, "spinner")
	c.Add(cpu)

	stop := make(chan struct{})
	done := make(chan struct{})
	var insideCritical atomic.Bool
	violation := make(chan struct{}, 1)

	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
			}
			cpu.ExecStart()
			for j := 0; j < 2000; j++ {
				_ = j * j
			}
			if insideCritical.Load() {
				select {
				case violation <- struct{}{}:
				default:
				}
			}
			cpu.ExecEnd()
		}
	}()

	for i := 0; i < 100; i++ {
		section := c.StartExclusive(nil)
		insideCritical.Store(true)
		insideCritical.Store(false)
		section.End()
	}

	close(stop)
	<-done

	select {
	case <-violation:
		t.Fatal("a CPU was observed running during an exclusive section")
	default:
	}
}

func TestTwoConcurrentStartExclusiveSerialize(t *testing.T) {
	c := NewCoordinator(NewBQL())

	var active atomic.Int32
	var sawOverlap atomic.Bool
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				section := c.StartExclusive(nil)
				if active.Add(1) > 1 {
					sawOverlap.Store(true)
				}
				time.Sleep(time.Millisecond)
				active.Add(-1)
				section.End()
			}
		}()
	}
	wg.Wait()

	if sawOverlap.Load() {
		t.Fatal("two start_exclusive sections overlapped; expected strict serialization")
	}
}

func TestAsyncSafeRunOnCPURunsInsideExclusiveBarrier(t *testing.T) {
	c := NewCoordinator(NewBQL())
	exec := startExecutor("C")
	c.Add(exec.cpu)
	defer exec.Stop()

	other := NewCPU("other", func() {})
	c.Add(other)

	stopOther := make(chan struct{})
	otherDone := make(chan struct{})
	var insideCritical atomic.Bool
	violation := make(chan struct{}, 1)

	go func() {
		defer close(otherDone)
		for {
			select {
			case <-stopOther:
				return
			default:
			}
			other.ExecStart()
			for j := 0; j < 2000; j++ {
				_ = j * j
			}
			if insideCritical.Load() {
				select {
				case violation <- struct{}{}:
				default:
				}
			}
			other.ExecEnd()
		}
	}()

	c.bql.Lock()

	bqlHeldDuringG := true
	gRan := make(chan struct{})
	c.AsyncSafeRunOnCPU(exec.cpu, func(*CPU, any) {
		bqlHeldDuringG = c.bql.IsHeld()
		insideCritical.Store(true)
		time.Sleep(2 * time.Millisecond)
		insideCritical.Store(false)
		close(gRan)
	}, nil)

	select {
	case <-gRan:
	case <-time.After(2 * time.Second):
		t.Fatal("async_safe_run_on_cpu's callback never ran")
	}

	close(stopOther)
	<-otherDone

	if bqlHeldDuringG {
		t.Fatal("async_safe_run_on_cpu's callback must run without the BQL held")
	}
	select {
	case <-violation:
		t.Fatal("other CPU was observed running during the exclusive section")
	default:
	}

	deadline := time.Now().Add(time.Second)
	for !c.bql.IsHeld() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if !c.bql.IsHeld() {
		t.Fatal("BQL must be restored to held after the exclusive item completes")
	}
	c.bql.Unlock()
}
