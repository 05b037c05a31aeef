// dispatcher.go - public work-dispatch operations and item execution rules

/*
 ██▓ ███▄    █ ▄▄▄█████▓ █    ██  ██▓▄▄▄█████▓ ██▓ ▒█████   ███▄    █    ▓█████  ███▄    █   ▄████  ██▓ ███▄    █ ▓█████
▓██▒ ██ ▀█   █ ▓  ██▒ ▓▒ ██  ▓██▒▓██▒▓  ██▒ ▓▒▓██▒▒██▒  ██▒ ██ ▀█   █    ▓█   ▀  ██ ▀█   █  ██▒ ▀█▒▓██▒ ██ ▀█   █ ▓█   ▀
▒██▒▓██  ▀█ ██▒▒ ▓██░ ▒░▓██  ▒██░▒██▒▒ ▓██░ ▒░▒██▒▒██░  ██▒▓██  ▀█ ██▒   ▒███   ▓██  ▀█ ██▒▒██░▄▄▄░▒██▒▓██  ▀█ ██▒▒███
░██░▓██▒  ▐▌██▒░ ▓██▓ ░ ▓▓█  ░██░░██░░ ▓██▓ ░ ░██░▒██   ██░▓██▒  ▐▌██▒   ▒▓█  ▄ ▓██▒  ▐▌██▒░▓█  ██▓░██░▓██▒  ▐▌██▒▒▓█  ▄
░██░▒██░   ▓██░  ▒██▒ ░ ▒▒█████▓ ░██░  ▒██▒ ░ ░██░░ ████▓▒░▒██░   ▓██░   ░▒████▒▒██░   ▓██░░▒▓███▀▒░██░▒██░   ▓██░░▒████▒
░▓  ░ ▒░   ▒ ▒   ▒ ░░   ░▒▓▒ ▒ ▒ ░▓    ▒ ░░   ░▓  ░ ▒░▒░▒░ ░ ▒░   ▒ ▒    ░░ ▒░ ░░ ▒░   ▒ ▒  ░▒   ▒ ░▓  ░ ▒░   ▒ ▒ ░░ ▒░ ░
 ▒ ░░ ░░   ░ ▒░    ░    ░░▒░ ░ ░  ▒ ░    ░     ▒ ░  ░ ▒ ▒░ ░ ░░   ░ ▒░    ░ ░  ░░ ░░   ░ ▒░  ░   ░  ▒ ░░ ░░   ░ ▒░ ░ ░  ░
 ▒ ░   ░   ░ ░   ░       ░░░ ░ ░  ▒ ░  ░       ▒ ░░ ░ ░ ▒     ░   ░ ░       ░      ░   ░ ░ ░ ░   ░  ▒ ░   ░   ░ ░    ░
 ░           ░             ░      ░            ░      ░ ░           ░       ░  ░         ░       ░  ░           ░    ░  ░

(c) 2024 - 2026 Zayn Otley
https://github.com/IntuitionAmiga/IntuitionEngine
License: GPLv3 or later
*/

package cpucore

// RunOnCPU blocks the calling goroutine until fn has run on target with
// the BQL held. caller identifies the CPU whose own executor goroutine
// is making the call, or nil if the caller is not a CPU's executor
// goroutine at all (Go has no implicit thread-local "current CPU"; the
// caller must say who it is). When caller == target, fn runs inline on
// the calling goroutine without going through the work queue at all.
//
// Precondition: the calling goroutine holds no per-CPU lock (it must be
// free to block on target's condition variable).
func (c *Coordinator) RunOnCPU(caller, target *CPU, fn WorkFunc, data any) {
	if caller != nil && caller == target {
		hadBQL := c.bql.IsHeld()
		if !hadBQL {
			c.bql.Lock()
		}
		fn(target, data)
		if !hadBQL {
			c.bql.Unlock()
		}
		return
	}

	item := &workItem{fn: fn, data: data, free: false, exclusive: false, bql: true}

	hadBQL := c.bql.IsHeld()
	if hadBQL {
		c.bql.Unlock()
	}

	enqueue(target, item)

	target.lock.Lock()
	for !item.done.Load() {
		target.cond.Wait()
	}
	target.lock.Unlock()

	if hadBQL {
		c.bql.Lock()
	}
}

// AsyncRunOnCPU fires fn onto target's work queue with the BQL held and
// returns immediately; the core owns the item and releases it after
// execution.
func (c *Coordinator) AsyncRunOnCPU(target *CPU, fn WorkFunc, data any) {
	enqueue(target, &workItem{fn: fn, data: data, free: true, exclusive: false, bql: true})
}

// AsyncRunOnCPUNoBQL is AsyncRunOnCPU without the BQL held while fn runs.
func (c *Coordinator) AsyncRunOnCPUNoBQL(target *CPU, fn WorkFunc, data any) {
	enqueue(target, &workItem{fn: fn, data: data, free: true, exclusive: false, bql: false})
}

// AsyncSafeRunOnCPU fires fn onto target's work queue to run inside an
// exclusive barrier (every other CPU halted) without the BQL held.
func (c *Coordinator) AsyncSafeRunOnCPU(target *CPU, fn WorkFunc, data any) {
	enqueue(target, &workItem{fn: fn, data: data, free: true, exclusive: true, bql: false})
}

// executeItem runs a dequeued item per the execution-rule table: exclusive
// items enter the barrier (and must not also require the BQL); otherwise
// the BQL is acquired, released, or left alone to match item.bql against
// hasBQL, the state Drain observed on entry.
func (c *Coordinator) executeItem(cpu *CPU, item *workItem, hasBQL bool) {
	switch {
	case item.exclusive:
		if item.bql {
			fatalf("cpucore: work item cannot require both exclusive execution and the BQL")
		}
		if hasBQL {
			c.bql.Unlock()
		}
		section := c.StartExclusive(cpu)
		item.fn(cpu, item.data)
		section.End()
		if hasBQL {
			c.bql.Lock()
		}

	case item.bql && hasBQL:
		item.fn(cpu, item.data)

	case item.bql && !hasBQL:
		c.bql.Lock()
		item.fn(cpu, item.data)
		c.bql.Unlock()

	case !item.bql && hasBQL:
		c.bql.Unlock()
		item.fn(cpu, item.data)
		c.bql.Lock()

	default: // !item.bql && !hasBQL
		item.fn(cpu, item.data)
	}

	// Go is garbage collected, so "free" only controls whether anyone is
	// waiting to observe completion - there is nothing to deallocate.
	if !item.free {
		item.done.Store(true)
	}
}
