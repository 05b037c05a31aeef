// coordinator.go - the Coordinator type binding registry, dispatcher and
// exclusive-barrier state for a set of guest CPUs

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

// Package cpucore implements the CPU coordination core of the Intuition
// Engine: the registry of live guest CPU execution contexts, each CPU's
// work queue, the work dispatcher that posts synchronous/asynchronous/
// exclusive work onto a target CPU, and the exclusive-execution barrier
// that briefly halts every other CPU so a caller can mutate shared
// emulator state safely.
//
// cpucore owns none of the CPUs themselves - the host (main package)
// creates a *CPU per emulated processor, supplies a non-blocking kick
// callback, and registers it with a Coordinator. Guest instruction
// decoding, device emulation and the outer BQL-owning event loop all
// live outside this package and are reached only through the Host-
// supplied callbacks and the BQL type.
package cpucore

import (
	"sync"
	"sync/atomic"
)

// Coordinator holds the process-wide state shared by every guest CPU:
// the registry of live CPUs, the exclusive-barrier counters and
// condition variables, and a reference to the host's BQL. A process
// normally has exactly one Coordinator; (*Coordinator).Init re-resets
// it, which callers must do in a post-fork child exactly once.
type Coordinator struct {
	mu   sync.Mutex
	cpus []*CPU

	// snapshot is an RCU-style published copy of cpus, swapped under mu
	// so that registry readers outside the lock (the exclusive barrier's
	// own scan excepted, which already holds mu) never observe a torn
	// slice while add/remove is in progress.
	snapshot atomic.Pointer[[]*CPU]

	// pending is QEMU's pending_cpus: zero when no barrier is active;
	// during a barrier, 1 plus the count of CPUs the initiator is
	// waiting on. Always written under mu; read with an atomic load for
	// the unlocked peeks in ExecStart/ExecEnd.
	pending atomic.Int32

	exclusiveCond *sync.Cond
	resumeCond    *sync.Cond

	indexAutoAssigned bool
	anyAutoAssigned   bool
	anyExplicit       bool

	bql *BQL
}

// NewCoordinator creates a Coordinator bound to the host's BQL.
func NewCoordinator(bql *BQL) *Coordinator {
	c := &Coordinator{bql: bql}
	c.Init()
	return c
}

func (c *Coordinator) publishLocked() {
	snap := append([]*CPU(nil), c.cpus...)
	c.snapshot.Store(&snap)
}

// Snapshot returns the current registry membership as an immutable
// slice, safe to iterate without holding the registry lock. Concurrent
// Add/Remove calls publish a fresh slice rather than mutating this one.
func (c *Coordinator) Snapshot() []*CPU {
	p := c.snapshot.Load()
	if p == nil {
		return nil
	}
	return *p
}
