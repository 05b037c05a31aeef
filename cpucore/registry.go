// registry.go - CPU registry operations: init, membership, index assignment

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

import "sync"

// Init (re)initializes all Coordinator state: the registry is emptied,
// pending_cpus unconditionally drops to zero, and the two barrier
// condition variables are rebuilt. Callers running in a child process
// after fork must call Init exactly once before using the Coordinator;
// a parent's in-progress exclusive barrier never carries over.
func (c *Coordinator) Init() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cpus = nil
	c.publishLocked()
	c.pending.Store(0)
	c.exclusiveCond = sync.NewCond(&c.mu)
	c.resumeCond = sync.NewCond(&c.mu)
	c.indexAutoAssigned = false
	c.anyAutoAssigned = false
	c.anyExplicit = false
}

// Lock acquires the registry mutex so external iteration can be
// serialized against membership changes.
func (c *Coordinator) Lock() {
	c.mu.Lock()
}

// Unlock releases the registry mutex.
func (c *Coordinator) Unlock() {
	c.mu.Unlock()
}

// Add registers cpu. If cpu has no index yet, the smallest integer
// strictly greater than every currently live index is assigned
// (max+1, never gap-filling, never reused); otherwise cpu's existing
// index is kept as-is. Mixing auto-assigned and caller-supplied indices
// across the lifetime of a Coordinator is a programmer error and panics,
// since the host would otherwise risk colliding indices.
func (c *Coordinator) Add(cpu *CPU) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cpu.index.Load() == UnassignedIndex {
		if c.anyExplicit {
			fatalf("cpucore: cannot auto-assign a CPU index after an explicit index was registered")
		}
		var max int32 = -1
		for _, existing := range c.cpus {
			if idx := existing.index.Load(); idx > max {
				max = idx
			}
		}
		cpu.index.Store(max + 1)
		c.anyAutoAssigned = true
		c.indexAutoAssigned = true
	} else {
		if c.anyAutoAssigned {
			fatalf("cpucore: cannot register an explicit CPU index after an index was auto-assigned")
		}
		c.anyExplicit = true
	}

	cpu.coordinator = c
	c.cpus = append(c.cpus, cpu)
	c.publishLocked()
}

// Remove unregisters cpu. It is idempotent: removing a CPU that is not
// (or no longer) a member is a no-op.
func (c *Coordinator) Remove(cpu *CPU) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for i, existing := range c.cpus {
		if existing == cpu {
			c.cpus = append(c.cpus[:i:i], c.cpus[i+1:]...)
			c.publishLocked()
			cpu.index.Store(UnassignedIndex)
			return
		}
	}
}
