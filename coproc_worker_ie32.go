package main

import (
	"fmt"

	"github.com/retroforge/ie-machine/cpucore"
)

func createIE32Worker(bus *MachineBus, data []byte, coord *cpucore.Coordinator) (*CoprocWorker, error) {
	if len(data) > int(WORKER_IE32_SIZE) {
		return nil, fmt.Errorf("IE32 service binary too large: %d > %d", len(data), WORKER_IE32_SIZE)
	}

	// Zero the worker's dedicated memory region
	mem := bus.GetMemory()
	for i := range uint32(WORKER_IE32_SIZE) {
		mem[WORKER_IE32_BASE+i] = 0
	}

	// Copy service binary to worker region
	copy(mem[WORKER_IE32_BASE:], data)

	// Create IE32 CPU using the shared bus
	cpu := NewCPU(bus)
	cpu.PC = WORKER_IE32_BASE
	cpu.SP = WORKER_IE32_END - 0xFF // Stack at top of worker region
	cpu.CoprocMode = true           // Skip PC range check in Execute()

	coreCPU := cpucore.NewCPU("coproc:ie32", func() {})
	coord.Add(coreCPU)
	cpu.coprocExecStart = coreCPU.ExecStart
	cpu.coprocExecEnd = coreCPU.ExecEnd
	cpu.coprocDrain = coreCPU.Drain

	stopFn := func() {
		coord.AsyncRunOnCPUNoBQL(coreCPU, func(*cpucore.CPU, any) { cpu.Running = false }, nil)
	}

	adapter := NewDebugIE32(cpu)
	var excl *cpucore.ExclusiveSection
	adapter.workerFreeze = func() { excl = coord.StartExclusive(nil) }
	adapter.workerResume = func() {
		if excl != nil {
			excl.End()
			excl = nil
		}
	}

	done := make(chan struct{})
	worker := &CoprocWorker{
		cpuType:  EXEC_TYPE_IE32,
		coreCPU:  coreCPU,
		stop:     stopFn,
		done:     done,
		loadBase: WORKER_IE32_BASE,
		loadEnd:  WORKER_IE32_END,
		debugCPU: adapter,
	}

	go func() {
		defer close(done)
		defer coord.Remove(coreCPU)
		cpu.Running = true
		cpu.Execute()
	}()

	return worker, nil
}
