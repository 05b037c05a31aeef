package main

import (
	"fmt"

	"github.com/retroforge/ie-machine/cpucore"
)

func createM68KWorker(bus *MachineBus, data []byte, coord *cpucore.Coordinator) (*CoprocWorker, error) {
	if len(data) > int(WORKER_M68K_SIZE) {
		return nil, fmt.Errorf("M68K service binary too large: %d > %d", len(data), WORKER_M68K_SIZE)
	}

	// Zero the worker's dedicated memory region
	mem := bus.GetMemory()
	for i := range uint32(WORKER_M68K_SIZE) {
		mem[WORKER_M68K_BASE+i] = 0
	}

	// Copy service binary to worker region (raw bytes — M68K fetch handles byte ordering)
	copy(mem[WORKER_M68K_BASE:], data)

	// Create M68K CPU using the shared bus (M68K uses 32-bit addressing directly)
	cpu := NewM68KCPU(bus)
	cpu.CoprocMode = true // Skip byte-swap for shared data regions (mailbox + user data)
	cpu.PC = WORKER_M68K_BASE
	cpu.AddrRegs[7] = WORKER_M68K_END - 0xFF // Stack at top of worker region

	coreCPU := cpucore.NewCPU("coproc:m68k", func() {})
	coord.Add(coreCPU)
	cpu.coprocExecStart = coreCPU.ExecStart
	cpu.coprocExecEnd = coreCPU.ExecEnd
	cpu.coprocDrain = coreCPU.Drain

	stopFn := func() {
		coord.AsyncRunOnCPUNoBQL(coreCPU, func(*cpucore.CPU, any) { cpu.SetRunning(false) }, nil)
	}

	dbg := NewDebugM68K(cpu, nil)
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
		cpuType:  EXEC_TYPE_M68K,
		coreCPU:  coreCPU,
		stop:     stopFn,
		done:     done,
		loadBase: WORKER_M68K_BASE,
		loadEnd:  WORKER_M68K_END,
		debugCPU: dbg,
	}

	go func() {
		defer close(done)
		defer coord.Remove(coreCPU)
		cpu.SetRunning(true)
		cpu.ExecuteInstruction()
	}()

	return worker, nil
}
