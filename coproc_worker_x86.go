package main

import (
	"fmt"

	"github.com/retroforge/ie-machine/cpucore"
)

func createX86Worker(bus *MachineBus, data []byte, coord *cpucore.Coordinator) (*CoprocWorker, error) {
	if len(data) > int(WORKER_X86_SIZE) {
		return nil, fmt.Errorf("x86 service binary too large: %d > %d", len(data), WORKER_X86_SIZE)
	}

	// Zero the worker's dedicated memory region
	mem := bus.GetMemory()
	for i := range uint32(WORKER_X86_SIZE) {
		mem[WORKER_X86_BASE+i] = 0
	}

	// Copy service binary to worker region
	copy(mem[WORKER_X86_BASE:], data)

	// Create x86 bus adapter (32-bit addressing, no VGA/Voodoo for workers)
	adapter := NewX86BusAdapter(bus)

	// Create x86 CPU with the adapter
	cpu := NewCPU_X86(adapter)
	cpu.EIP = WORKER_X86_BASE
	cpu.ESP = WORKER_X86_END - 0xFF // Stack at top of worker region

	coreCPU := cpucore.NewCPU("coproc:x86", func() {})
	coord.Add(coreCPU)

	stopFn := func() {
		coord.AsyncRunOnCPUNoBQL(coreCPU, func(*cpucore.CPU, any) { cpu.SetRunning(false) }, nil)
	}
	execFn := func() {
		cpu.SetRunning(true)
		for cpu.Running() {
			coreCPU.ExecStart()
			cpu.Step()
			coreCPU.ExecEnd()
			coreCPU.Drain()
		}
	}

	dbg := NewDebugX86(cpu, nil)
	var excl *cpucore.ExclusiveSection
	dbg.workerFreeze = func() { excl = coord.StartExclusive(nil) }
	dbg.workerResume = func() {
		if excl != nil {
			excl.End()
			excl = nil
		}
	}

	done := make(chan struct{})
	worker := &CoprocWorker{
		cpuType:  EXEC_TYPE_X86,
		coreCPU:  coreCPU,
		stop:     stopFn,
		done:     done,
		loadBase: WORKER_X86_BASE,
		loadEnd:  WORKER_X86_END,
		debugCPU: dbg,
	}

	go func() {
		defer close(done)
		defer coord.Remove(coreCPU)
		execFn()
	}()

	return worker, nil
}
