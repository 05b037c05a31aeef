// cpu.go - CPU execution context and work item types for cpucore

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

import (
	"sync"
	"sync/atomic"
)

// UnassignedIndex is the sentinel index value a CPU carries before
// registration and after removal from the registry.
const UnassignedIndex int32 = -1

// WorkFunc is a unit of work dispatched onto a CPU's executor goroutine.
// data is an opaque payload owned by the submitter.
type WorkFunc func(cpu *CPU, data any)

// CPU is a guest execution context tracked by a Coordinator. The host
// creates one CPU per emulated processor and registers it with
// (*Coordinator).Add; cpucore never constructs a CPU on its own.
//
// Owner lets the host stash a back-reference (e.g. the concrete
// *CPU_X86 or *CPU_Z80) so debug tooling can recover it from a
// registry snapshot without a side table.
type CPU struct {
	coordinator *Coordinator

	index   atomic.Int32
	running atomic.Bool

	// hasWaiter and inExclusiveContext are accessed only while holding
	// coordinator.mu (hasWaiter) or only from the goroutine that holds
	// the barrier (inExclusiveContext) - see exclusive.go.
	hasWaiter          bool
	inExclusiveContext bool

	lock     sync.Mutex
	cond     *sync.Cond
	workList []*workItem

	kick func()

	Name  string
	Owner any
}

// NewCPU creates a CPU execution context not yet registered with any
// Coordinator. kick is invoked by cpucore whenever it needs this CPU's
// executor goroutine to notice new work or a pending exclusive barrier;
// it must be non-blocking and safe to call from any goroutine, including
// one already holding the coordinator's registry lock.
func NewCPU(name string, kick func()) *CPU {
	cpu := &CPU{
		Name: name,
		kick: kick,
	}
	cpu.index.Store(UnassignedIndex)
	cpu.cond = sync.NewCond(&cpu.lock)
	return cpu
}

// Index returns the CPU's registry index, or UnassignedIndex if it is
// not currently registered.
func (c *CPU) Index() int32 {
	return c.index.Load()
}

// Running reports whether the CPU is currently between ExecStart and
// ExecEnd, i.e. executing guest code.
func (c *CPU) Running() bool {
	return c.running.Load()
}

// workItem is a queued callback with flags controlling BQL and
// exclusivity, per the dispatch table in (*Coordinator) execution rules.
type workItem struct {
	fn        WorkFunc
	data      any
	free      bool
	exclusive bool
	bql       bool
	done      atomic.Bool
}
